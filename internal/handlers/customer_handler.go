package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/auth"
	"github.com/carhive/server/internal/models"
	"github.com/carhive/server/internal/services"
)

func CustomerRegisterForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "customer_register.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func CustomerRegister(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := &services.CustomerRegistration{
			FirstName:      c.PostForm("firstname"),
			LastName:       c.PostForm("lastname"),
			Username:       c.PostForm("username"),
			Email:          c.PostForm("email"),
			Password:       c.PostForm("password"),
			PhoneNumber:    c.PostForm("phone_number"),
			DrivingLicense: c.PostForm("driving_license"),
		}

		if _, err := as.RegisterCustomer(c.Request.Context(), reg); err != nil {
			switch {
			case errors.Is(err, models.ErrDuplicate):
				auth.Flash(c, auth.FlashError, "Username is already taken")
			case errors.Is(err, models.ErrInvalidInput):
				auth.Flash(c, auth.FlashError, "Please fill in all required fields correctly")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			}
			c.Redirect(http.StatusFound, "/customer_register")
			return
		}

		c.Redirect(http.StatusFound, "/customer_login")
	}
}

func CustomerLoginForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "customer_login.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func CustomerLogin(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		customer, err := as.LoginCustomer(c.Request.Context(), username, password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				auth.Flash(c, auth.FlashError, "Invalid username or password.")
			} else {
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			}
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		session := sessions.Default(c)
		if err := auth.SignIn(session, auth.Identity{
			Role:     auth.RoleCustomer,
			Username: customer.Username,
			ID:       customer.ID,
		}); err != nil {
			c.Error(err)
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		c.Redirect(http.StatusFound, "/customer_home")
	}
}

func CustomerLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		_ = auth.SignOut(session, auth.RoleCustomer)
		c.Redirect(http.StatusFound, "/customer_login")
	}
}

func CustomerHome() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		c.HTML(http.StatusOK, "customer_home.html", gin.H{
			"username": ident.Username,
			"flashes":  auth.TakeFlashes(c),
		})
	}
}

func CustomerViewCars(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := rs.AvailableCars(c.Request.Context())
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load available cars")
			c.Redirect(http.StatusFound, "/customer_home")
			return
		}

		c.HTML(http.StatusOK, "customer_cars.html", gin.H{
			"cars":    cars,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func CustomerBookCarForm(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid car id")
			c.Redirect(http.StatusFound, "/customer_view_cars")
			return
		}

		car, err := rs.GetCar(c.Request.Context(), carId)
		if err != nil {
			auth.Flash(c, auth.FlashError, "Car not found")
			c.Redirect(http.StatusFound, "/customer_view_cars")
			return
		}

		c.HTML(http.StatusOK, "customer_book_car.html", gin.H{
			"car":     car,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// CustomerBookCar places a reservation: the car is claimed, the booking is
// created with its computed total and a pending payment is recorded.
func CustomerBookCar(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid car id")
			c.Redirect(http.StatusFound, "/customer_view_cars")
			return
		}

		start, err := services.ParseDate(c.PostForm("start_date"))
		if err == nil {
			var end time.Time
			end, err = services.ParseDate(c.PostForm("end_date"))
			if err == nil {
				withInsurance := c.PostForm("with_insurance") == "true"
				_, err = rs.BookCar(c.Request.Context(), ident.ID, carId, start, end, withInsurance)
			}
		}

		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidInput):
				auth.Flash(c, auth.FlashError, "Invalid input: "+err.Error())
				c.Redirect(http.StatusFound, "/customer_book_car/"+carId.Hex())
			case errors.Is(err, models.ErrConflict):
				auth.Flash(c, auth.FlashError, "This car was just booked by someone else.")
				c.Redirect(http.StatusFound, "/customer_view_cars")
			case errors.Is(err, models.ErrNotFound):
				auth.Flash(c, auth.FlashError, "Car not found")
				c.Redirect(http.StatusFound, "/customer_view_cars")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Failed to place the booking, please try again")
				c.Redirect(http.StatusFound, "/customer_view_cars")
			}
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Booking confirmed!")
		c.Redirect(http.StatusFound, "/customer_view_bookings")
	}
}

func CustomerViewBookings(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		bookings, err := rs.CustomerBookings(c.Request.Context(), ident.ID)
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load your bookings")
			c.Redirect(http.StatusFound, "/customer_home")
			return
		}

		c.HTML(http.StatusOK, "customer_bookings.html", gin.H{
			"bookings": bookings,
			"flashes":  auth.TakeFlashes(c),
		})
	}
}

func CustomerCancelBooking(rs *services.RentalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/customer_login")
			return
		}

		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid booking id")
			c.Redirect(http.StatusFound, "/customer_view_bookings")
			return
		}

		if err := rs.CancelBooking(c.Request.Context(), bookingId, ident.ID); err != nil {
			switch {
			case errors.Is(err, models.ErrNotFound):
				auth.Flash(c, auth.FlashError, "Booking not found")
			case errors.Is(err, models.ErrConflict):
				auth.Flash(c, auth.FlashError, "This booking can no longer be cancelled.")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Failed to cancel the booking")
			}
			c.Redirect(http.StatusFound, "/customer_view_bookings")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Booking cancelled.")
		c.Redirect(http.StatusFound, "/customer_view_bookings")
	}
}
