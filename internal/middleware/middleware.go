package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/carhive/server/internal/auth"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(500, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}
	}
}

// RequireRole gates a route group on a role marker in the session. A missing
// marker redirects to that role's login page; a present one is resolved into
// a request-scoped identity for the handlers downstream.
func RequireRole(role auth.Role, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		ident := auth.FromSession(session, role)
		if ident == nil {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		auth.SetIdentity(c, ident)
		c.Next()
	}
}

// LoginRateLimiter throttles credential and registration endpoints per client
// IP using an in-memory store. Rate strings use the limiter format, e.g.
// "10-M" for ten requests per minute.
func LoginRateLimiter(logger *slog.Logger, rateStr string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		logger.Error("Invalid rate limit format, rate limiting disabled", "rate", rateStr, "error", err)
		return func(c *gin.Context) {
			c.Next()
		}
	}

	store := memorystore.NewStore()
	instance := limiter.New(store, rate)

	return ginmiddleware.NewMiddleware(instance)
}
