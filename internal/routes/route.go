package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/carhive/server/internal/auth"
	"github.com/carhive/server/internal/container"
	"github.com/carhive/server/internal/handlers"
	"github.com/carhive/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Server-side sessions hold the role markers and flash messages.
	store := cookie.NewStore([]byte(container.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 8,
		HttpOnly: true,
		Secure:   container.Config.IsProduction(),
	})
	r.Use(sessions.Sessions("carhive_session", store))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.LoadHTMLGlob("templates/*.html")

	loginLimiter := middleware.LoginRateLimiter(container.Logger, "10-M")

	// Public routes
	r.GET("/", handlers.Index(container.RentalService))
	r.GET("/associate", handlers.Associate())
	r.GET("/is_logged_in", handlers.IsLoggedIn())

	// Owner account routes
	r.GET("/owner_register", handlers.OwnerRegisterForm())
	r.POST("/owner_register", loginLimiter, handlers.OwnerRegister(container.AccountService))
	r.GET("/owner_login", handlers.OwnerLoginForm())
	r.POST("/owner_login", loginLimiter, handlers.OwnerLogin(container.AccountService))
	r.GET("/owner_logout", handlers.OwnerLogout())

	owner := r.Group("/")
	owner.Use(middleware.RequireRole(auth.RoleOwner, "/owner_login"))
	{
		owner.GET("/owner_home", handlers.OwnerHome(container.FleetService))
		owner.GET("/owner_add_car", handlers.OwnerAddCarForm())
		owner.POST("/owner_add_car", handlers.OwnerAddCar(container.FleetService))
		owner.GET("/owner_view_cars", handlers.OwnerViewCars(container.FleetService))
		owner.GET("/owner_edit_car/:id", handlers.OwnerEditCarForm(container.FleetService))
		owner.POST("/owner_edit_car/:id", handlers.OwnerEditCar(container.FleetService))
		owner.POST("/owner_delete_car/:id", handlers.OwnerDeleteCar(container.FleetService))
		owner.GET("/owner_view_bookings", handlers.OwnerViewBookings(container.FleetService))
		owner.GET("/owner_manage_booking/:id", handlers.OwnerManageBookingForm(container.FleetService))
		owner.POST("/owner_manage_booking/:id", handlers.OwnerManageBooking(container.FleetService))
	}

	// Admin account routes
	r.GET("/admin", handlers.AdminLanding())
	r.GET("/admin_register", handlers.AdminRegisterForm())
	r.POST("/admin_register", loginLimiter, handlers.AdminRegister(container.AccountService))
	r.GET("/admin_login", handlers.AdminLoginForm())
	r.POST("/admin_login", loginLimiter, handlers.AdminLogin(container.AccountService))
	r.GET("/admin_logout", handlers.AdminLogout())

	admin := r.Group("/")
	admin.Use(middleware.RequireRole(auth.RoleAdmin, "/admin_login"))
	{
		admin.GET("/admin_home", handlers.AdminHome(container.AdminService))
		admin.GET("/admin_view_cars", handlers.AdminViewCars(container.AdminService))
		admin.GET("/admin_owners", handlers.AdminOwners(container.AdminService))
		admin.POST("/update_owner_status/:id", handlers.UpdateOwnerStatus(container.AdminService))
		admin.POST("/approve_owner/:id", handlers.ApproveOwner(container.AdminService))
		admin.GET("/admin_customers", handlers.AdminCustomers(container.AdminService))
		admin.GET("/admin_payments", handlers.AdminPayments(container.AdminService))
		admin.GET("/admin_bookings", handlers.AdminBookings(container.AdminService))
	}

	// Customer account routes
	r.GET("/customer_register", handlers.CustomerRegisterForm())
	r.POST("/customer_register", loginLimiter, handlers.CustomerRegister(container.AccountService))
	r.GET("/customer_login", handlers.CustomerLoginForm())
	r.POST("/customer_login", loginLimiter, handlers.CustomerLogin(container.AccountService))
	r.GET("/customer_logout", handlers.CustomerLogout())

	customer := r.Group("/")
	customer.Use(middleware.RequireRole(auth.RoleCustomer, "/customer_login"))
	{
		customer.GET("/customer_home", handlers.CustomerHome())
		customer.GET("/customer_view_cars", handlers.CustomerViewCars(container.RentalService))
		customer.GET("/customer_book_car/:id", handlers.CustomerBookCarForm(container.RentalService))
		customer.POST("/customer_book_car/:id", handlers.CustomerBookCar(container.RentalService))
		customer.GET("/customer_view_bookings", handlers.CustomerViewBookings(container.RentalService))
		customer.POST("/customer_cancel_booking/:id", handlers.CustomerCancelBooking(container.RentalService))
	}

	return r
}
