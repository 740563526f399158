package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/carhive/server/internal/auth"
	"github.com/carhive/server/internal/services"
)

// Index lists every car currently available for rent.
func Index(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := rs.AvailableCars(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"cars":    cars,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func Associate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "associate.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// IsLoggedIn reports whether a customer session marker is present. Always
// HTTP 200; this is the only JSON endpoint the frontend polls.
func IsLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		ident := auth.FromSession(session, auth.RoleCustomer)
		c.JSON(http.StatusOK, gin.H{"logged_in": ident != nil})
	}
}
