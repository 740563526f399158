package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("no request id was assigned")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("request id = %q, want upstream-id", got)
	}
}

func TestRequireRoleRedirectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/owner_home", RequireRole(auth.RoleOwner, "/owner_login"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owner_home", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/owner_login" {
		t.Errorf("redirect target = %q, want /owner_login", loc)
	}
}

func TestRequireRoleResolvesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ownerId := primitive.NewObjectID()

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/login", func(c *gin.Context) {
		_ = auth.SignIn(sessions.Default(c), auth.Identity{Role: auth.RoleOwner, Username: "kwame", ID: ownerId})
		c.Status(http.StatusOK)
	})
	r.GET("/owner_home", RequireRole(auth.RoleOwner, "/owner_login"), func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, ident.Username)
	})

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))

	req := httptest.NewRequest(http.MethodGet, "/owner_home", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "kwame" {
		t.Errorf("identity username = %q, want kwame", w.Body.String())
	}
}

func TestLoginRateLimiterBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/owner_login", LoginRateLimiter(testLogger(), "2-M"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/owner_login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/owner_login", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("request over the limit = %d, want 429", w.Code)
	}
}

func TestLoginRateLimiterBadRateFallsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/owner_login", LoginRateLimiter(testLogger(), "not-a-rate"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/owner_login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when rate limiting is disabled", w.Code)
	}
}
