package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/auth"
	"github.com/carhive/server/internal/models"
	"github.com/carhive/server/internal/services"
)

func AdminLanding() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func AdminRegisterForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin_register.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// AdminRegister is single-use: once an admin record exists, every further
// attempt redirects to the login page.
func AdminRegister(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if _, err := as.RegisterAdmin(c.Request.Context(), username, password); err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				auth.Flash(c, auth.FlashError, "Admin already exists")
				c.Redirect(http.StatusFound, "/admin_login")
				return
			}
			if errors.Is(err, models.ErrInvalidInput) {
				auth.Flash(c, auth.FlashError, "Please provide a valid username and password")
				c.Redirect(http.StatusFound, "/admin_register")
				return
			}
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			c.Redirect(http.StatusFound, "/admin_register")
			return
		}

		c.Redirect(http.StatusFound, "/admin_login")
	}
}

func AdminLoginForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin_login.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func AdminLogin(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		admin, err := as.LoginAdmin(c.Request.Context(), username, password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				auth.Flash(c, auth.FlashError, "Invalid username or password.")
			} else {
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			}
			c.Redirect(http.StatusFound, "/admin_login")
			return
		}

		session := sessions.Default(c)
		if err := auth.SignIn(session, auth.Identity{
			Role:     auth.RoleAdmin,
			Username: admin.Username,
			ID:       admin.ID,
		}); err != nil {
			c.Error(err)
			c.Redirect(http.StatusFound, "/admin_login")
			return
		}

		c.Redirect(http.StatusFound, "/admin_home")
	}
}

func AdminLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		_ = auth.SignOut(session, auth.RoleAdmin)
		c.Redirect(http.StatusFound, "/admin_login")
	}
}

// AdminHome renders the dashboard. All totals are recomputed per request.
func AdminHome(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := ads.Dashboard(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load the dashboard")
			c.Redirect(http.StatusFound, "/admin")
			return
		}

		c.HTML(http.StatusOK, "admin_home.html", gin.H{
			"owners":             stats.Owners,
			"customers":          stats.Customers,
			"owners_count":       stats.OwnersCount,
			"owners_balance":     stats.OwnersBalance,
			"customers_count":    stats.CustomersCount,
			"total_bookings":     stats.TotalBookings,
			"cancelled_bookings": stats.CancelledBookings,
			"completed_total":    stats.CompletedTotal,
			"pending_total":      stats.PendingTotal,
			"flashes":            auth.TakeFlashes(c),
		})
	}
}

func AdminViewCars(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := ads.CarsWithOwners(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load cars")
			c.Redirect(http.StatusFound, "/admin_home")
			return
		}

		c.HTML(http.StatusOK, "admin_cars.html", gin.H{
			"cars":    cars,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func AdminOwners(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owners, err := ads.ListOwners(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load owners")
			c.Redirect(http.StatusFound, "/admin_home")
			return
		}

		c.HTML(http.StatusOK, "admin_owners.html", gin.H{
			"owners":  owners,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// UpdateOwnerStatus applies the approve/disapprove action posted from the
// owners listing. The transition only succeeds while the owner is still
// pending.
func UpdateOwnerStatus(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid owner id")
			c.Redirect(http.StatusFound, "/admin_owners")
			return
		}

		status, err := ads.SetOwnerStatus(c.Request.Context(), ownerId, c.PostForm("action"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidInput):
				auth.Flash(c, auth.FlashError, "Invalid action!")
			case errors.Is(err, models.ErrNotFound):
				auth.Flash(c, auth.FlashError, "Owner not found")
			case errors.Is(err, models.ErrConflict):
				auth.Flash(c, auth.FlashError, "Owner has already been reviewed")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "An error occurred while updating owner status")
			}
			c.Redirect(http.StatusFound, "/admin_owners")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Owner status updated to '"+string(status)+"'!")
		c.Redirect(http.StatusFound, "/admin_owners")
	}
}

// ApproveOwner is the one-click approval variant of UpdateOwnerStatus.
func ApproveOwner(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid owner id")
			c.Redirect(http.StatusFound, "/admin_owners")
			return
		}

		if _, err := ads.SetOwnerStatus(c.Request.Context(), ownerId, "approve"); err != nil {
			if !errors.Is(err, models.ErrConflict) && !errors.Is(err, models.ErrNotFound) {
				c.Error(err)
			}
		}

		c.Redirect(http.StatusFound, "/admin_owners")
	}
}

func AdminCustomers(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := ads.ListCustomers(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load customers")
			c.Redirect(http.StatusFound, "/admin_home")
			return
		}

		c.HTML(http.StatusOK, "admin_customers.html", gin.H{
			"customers": customers,
			"flashes":   auth.TakeFlashes(c),
		})
	}
}

func AdminPayments(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payments, err := ads.ListPayments(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load payments")
			c.Redirect(http.StatusFound, "/admin_home")
			return
		}

		c.HTML(http.StatusOK, "admin_payments.html", gin.H{
			"payments": payments,
			"flashes":  auth.TakeFlashes(c),
		})
	}
}

func AdminBookings(ads *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings, err := ads.BookingsOverview(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load bookings")
			c.Redirect(http.StatusFound, "/admin_home")
			return
		}

		c.HTML(http.StatusOK, "admin_bookings.html", gin.H{
			"bookings": bookings,
			"flashes":  auth.TakeFlashes(c),
		})
	}
}
