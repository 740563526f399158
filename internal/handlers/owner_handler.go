package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/auth"
	"github.com/carhive/server/internal/helpers"
	"github.com/carhive/server/internal/models"
	"github.com/carhive/server/internal/services"
)

func OwnerRegisterForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "owner_register.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func OwnerRegister(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := &services.OwnerRegistration{
			FirstName:      c.PostForm("firstname"),
			LastName:       c.PostForm("lastname"),
			Username:       c.PostForm("username"),
			Email:          c.PostForm("email"),
			Password:       c.PostForm("password"),
			PhoneNumber:    c.PostForm("phone_number"),
			Address:        c.PostForm("address"),
			City:           c.PostForm("city"),
			State:          c.PostForm("state"),
			Zipcode:        c.PostForm("zipcode"),
			DOB:            c.PostForm("dob"),
			SSN:            c.PostForm("ssn"),
			DrivingLicense: c.PostForm("driving_license"),
		}

		if _, err := as.RegisterOwner(c.Request.Context(), reg); err != nil {
			switch {
			case errors.Is(err, models.ErrDuplicate):
				auth.Flash(c, auth.FlashError, "Username is already taken")
			case errors.Is(err, models.ErrInvalidInput):
				auth.Flash(c, auth.FlashError, "Please fill in all required fields correctly")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			}
			c.Redirect(http.StatusFound, "/owner_register")
			return
		}

		auth.Flash(c, auth.FlashInfo, "Registration received. Please wait for admin approval before logging in.")
		c.Redirect(http.StatusFound, "/owner_login")
	}
}

func OwnerLoginForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "owner_login.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func OwnerLogin(as *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		owner, err := as.LoginOwner(c.Request.Context(), username, password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPendingApproval):
				auth.Flash(c, auth.FlashError, "Your account is pending approval. Please wait for admin approval.")
			case errors.Is(err, services.ErrAccountDisapproved):
				auth.Flash(c, auth.FlashError, "Your application was not approved.")
			case errors.Is(err, services.ErrInvalidCredentials):
				auth.Flash(c, auth.FlashError, "Invalid username or password.")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Something went wrong, please try again")
			}
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		session := sessions.Default(c)
		if err := auth.SignIn(session, auth.Identity{
			Role:     auth.RoleOwner,
			Username: owner.Username,
			ID:       owner.ID,
		}); err != nil {
			c.Error(err)
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Login successful!")
		c.Redirect(http.StatusFound, "/owner_home")
	}
}

func OwnerHome(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		balance, err := fs.OwnerBalance(c.Request.Context(), ident.ID)
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load your account")
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		c.HTML(http.StatusOK, "owner_home.html", gin.H{
			"username":      ident.Username,
			"total_balance": balance,
			"flashes":       auth.TakeFlashes(c),
		})
	}
}

func OwnerLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		_ = auth.SignOut(session, auth.RoleOwner)
		c.Redirect(http.StatusFound, "/owner_login")
	}
}

func OwnerAddCarForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "owner_add_car.html", gin.H{
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// OwnerAddCar creates a car for the logged-in owner. Numeric fields are
// parsed up front; malformed input flashes a message instead of failing the
// request.
func OwnerAddCar(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		odometer, err := helpers.FloatField(c, "current_odometer")
		if err == nil {
			var price, insuranceCost float64
			price, err = helpers.FloatField(c, "rental_price_per_day")
			if err == nil {
				insuranceCost, err = helpers.OptionalFloatField(c, "insurance_cost")
			}
			if err == nil {
				_, err = fs.AddCar(c.Request.Context(), ident.ID, &services.CarInput{
					Make:               c.PostForm("make"),
					Model:              c.PostForm("model"),
					Type:               c.PostForm("type"),
					LicensePlate:       c.PostForm("license_plate"),
					CurrentOdometer:    odometer,
					RentalPricePerDay:  price,
					AvailabilityStatus: c.PostForm("availability_status"),
					InsuranceAvailable: helpers.BoolField(c, "insurance_available"),
					InsuranceCost:      insuranceCost,
					State:              c.PostForm("state"),
					ImageSource:        c.PostForm("image"),
				})
			}
		}

		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				auth.Flash(c, auth.FlashError, "Invalid input: "+err.Error())
			} else {
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Failed to add the car, please try again")
			}
			c.Redirect(http.StatusFound, "/owner_add_car")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Car added successfully!")
		c.Redirect(http.StatusFound, "/owner_view_cars")
	}
}

func OwnerViewCars(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		cars, err := fs.OwnerCars(c.Request.Context(), ident.ID)
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "Failed to load your cars")
			c.Redirect(http.StatusFound, "/owner_home")
			return
		}

		c.HTML(http.StatusOK, "owner_view_cars.html", gin.H{
			"cars":    cars,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func OwnerEditCarForm(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid car id")
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		car, err := fs.OwnerCar(c.Request.Context(), carId, ident.ID)
		if err != nil {
			auth.Flash(c, auth.FlashError, "Car not found")
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		c.HTML(http.StatusOK, "owner_edit_car.html", gin.H{
			"car":     car,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

func OwnerEditCar(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid car id")
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		update, parseErr := carUpdateFromForm(c)
		if parseErr != nil {
			auth.Flash(c, auth.FlashError, "Invalid input: "+parseErr.Error())
			c.Redirect(http.StatusFound, "/owner_edit_car/"+carId.Hex())
			return
		}

		if err := fs.EditCar(c.Request.Context(), carId, ident.ID, update, c.PostForm("image")); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				auth.Flash(c, auth.FlashError, "Car not found")
			} else {
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Failed to update the car")
			}
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Car details updated successfully!")
		c.Redirect(http.StatusFound, "/owner_view_cars")
	}
}

// carUpdateFromForm builds a partial update from the submitted fields only,
// validating every numeric value.
func carUpdateFromForm(c *gin.Context) (*models.CarUpdate, error) {
	update := &models.CarUpdate{}

	if v, ok := c.GetPostForm("make"); ok {
		update.Make = &v
	}
	if v, ok := c.GetPostForm("model"); ok {
		update.Model = &v
	}
	if v, ok := c.GetPostForm("type"); ok {
		update.Type = &v
	}
	if v, ok := c.GetPostForm("license_plate"); ok {
		update.LicensePlate = &v
	}
	if v, ok := c.GetPostForm("availability_status"); ok {
		update.AvailabilityStatus = &v
	}
	if _, ok := c.GetPostForm("current_odometer"); ok {
		v, err := helpers.FloatField(c, "current_odometer")
		if err != nil {
			return nil, err
		}
		update.CurrentOdometer = &v
	}
	if _, ok := c.GetPostForm("rental_price_per_day"); ok {
		v, err := helpers.FloatField(c, "rental_price_per_day")
		if err != nil {
			return nil, err
		}
		update.RentalPricePerDay = &v
	}
	if _, ok := c.GetPostForm("insurance_cost"); ok {
		v, err := helpers.FloatField(c, "insurance_cost")
		if err != nil {
			return nil, err
		}
		update.InsuranceCost = &v
	}
	if _, ok := c.GetPostForm("insurance_available"); ok {
		v := helpers.BoolField(c, "insurance_available")
		update.InsuranceAvailable = &v
	}

	return update, nil
}

func OwnerDeleteCar(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		carId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid car id")
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		if err := fs.DeleteCar(c.Request.Context(), carId, ident.ID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				auth.Flash(c, auth.FlashError, "Car not found")
			} else {
				c.Error(err)
				auth.Flash(c, auth.FlashError, "Failed to delete the car")
			}
			c.Redirect(http.StatusFound, "/owner_view_cars")
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Car deleted successfully!")
		c.Redirect(http.StatusFound, "/owner_view_cars")
	}
}

func OwnerViewBookings(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		bookings, err := fs.OwnerBookings(c.Request.Context(), ident.ID)
		if err != nil {
			c.Error(err)
			auth.Flash(c, auth.FlashError, "An error occurred while fetching bookings.")
			c.Redirect(http.StatusFound, "/owner_home")
			return
		}

		c.HTML(http.StatusOK, "owner_view_bookings.html", gin.H{
			"bookings": bookings,
			"flashes":  auth.TakeFlashes(c),
		})
	}
}

func OwnerManageBookingForm(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid booking id")
			c.Redirect(http.StatusFound, "/owner_view_bookings")
			return
		}

		booking, car, err := fs.OwnerBooking(c.Request.Context(), bookingId, ident.ID)
		if err != nil {
			auth.Flash(c, auth.FlashError, "Booking not found!")
			c.Redirect(http.StatusFound, "/owner_view_bookings")
			return
		}

		c.HTML(http.StatusOK, "owner_manage_booking.html", gin.H{
			"booking": booking,
			"car":     car,
			"flashes": auth.TakeFlashes(c),
		})
	}
}

// OwnerManageBooking records the return details; the "checkout" action also
// returns the booking and writes the mileage onto the car's odometer.
func OwnerManageBooking(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := auth.CurrentIdentity(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/owner_login")
			return
		}

		bookingId, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			auth.Flash(c, auth.FlashError, "Invalid booking id")
			c.Redirect(http.StatusFound, "/owner_view_bookings")
			return
		}

		if missing := helpers.RequiredFields(c, "current_mileage", "gas_level", "pickup_location", "dropoff_location"); missing != "" {
			auth.Flash(c, auth.FlashError, "Please provide all required fields.")
			c.Redirect(http.StatusFound, "/owner_manage_booking/"+bookingId.Hex())
			return
		}

		mileage, err := helpers.FloatField(c, "current_mileage")
		if err == nil {
			var penalty float64
			penalty, err = helpers.OptionalFloatField(c, "penalty")
			if err == nil {
				action := c.PostForm("action")
				err = fs.HandleReturn(c.Request.Context(), bookingId, ident.ID, &models.BookingReturn{
					CurrentMileage:  mileage,
					GasLevel:        c.PostForm("gas_level"),
					PickupLocation:  c.PostForm("pickup_location"),
					DropoffLocation: c.PostForm("dropoff_location"),
					Penalty:         penalty,
				}, action == "checkout")
			}
		}

		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidInput):
				auth.Flash(c, auth.FlashError, "Invalid input: "+err.Error())
				c.Redirect(http.StatusFound, "/owner_manage_booking/"+bookingId.Hex())
			case errors.Is(err, models.ErrNotFound):
				auth.Flash(c, auth.FlashError, "Booking not found!")
				c.Redirect(http.StatusFound, "/owner_view_bookings")
			case errors.Is(err, models.ErrConflict):
				auth.Flash(c, auth.FlashError, "This booking was updated by someone else, please review it again.")
				c.Redirect(http.StatusFound, "/owner_view_bookings")
			default:
				c.Error(err)
				auth.Flash(c, auth.FlashError, "An error occurred while managing the booking.")
				c.Redirect(http.StatusFound, "/owner_view_bookings")
			}
			return
		}

		auth.Flash(c, auth.FlashSuccess, "Booking updated successfully!")
		c.Redirect(http.StatusFound, "/owner_view_bookings")
	}
}
