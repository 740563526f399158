package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carhive/server/internal/config"
	"github.com/carhive/server/internal/models"
	"github.com/carhive/server/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Config     *config.Config
	Cloudinary *cloudinary.Cloudinary
	// Database client
	MongoDBClient  *mongo.Client
	AccountService *services.AccountService
	FleetService   *services.FleetService
	AdminService   *services.AdminService
	RentalService  *services.RentalService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)

	accountService := services.NewAccountService(repo, repo, repo)
	fleetService := services.NewFleetService(repo, repo, repo, repo, repo, cld)
	adminService := services.NewAdminService(repo, repo, repo, repo, repo)
	rentalService := services.NewRentalService(repo, repo, repo)

	return &Container{
		Logger:         logger,
		Config:         cfg,
		Cloudinary:     cld,
		MongoDBClient:  mongoDBClient,
		AccountService: accountService,
		FleetService:   fleetService,
		AdminService:   adminService,
		RentalService:  rentalService,
	}
}
