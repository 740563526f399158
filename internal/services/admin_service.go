package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/models"
)

// DashboardStats are the aggregate totals shown on the admin home page.
// Every field is recomputed from the underlying collections on each request.
type DashboardStats struct {
	Owners            []*models.Owner
	Customers         []*models.Customer
	OwnersCount       int
	OwnersBalance     float64
	CustomersCount    int
	TotalBookings     int64
	CancelledBookings int64
	CompletedTotal    float64
	PendingTotal      float64
}

// CarView is a car enriched with its owner's display name for the admin
// listing.
type CarView struct {
	Car       *models.Car
	OwnerName string
}

type AdminService struct {
	ownerRepo    models.OwnerRepo
	customerRepo models.CustomerRepo
	carRepo      models.CarRepo
	bookingRepo  models.BookingRepo
	paymentRepo  models.PaymentRepo
}

func NewAdminService(
	ownerRepo models.OwnerRepo,
	customerRepo models.CustomerRepo,
	carRepo models.CarRepo,
	bookingRepo models.BookingRepo,
	paymentRepo models.PaymentRepo,
) *AdminService {
	return &AdminService{
		ownerRepo:    ownerRepo,
		customerRepo: customerRepo,
		carRepo:      carRepo,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
	}
}

func (ads *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	owners, err := ads.ownerRepo.ListOwners(ctx)
	if err != nil {
		return nil, err
	}

	var ownersBalance float64
	for _, owner := range owners {
		ownersBalance += owner.Balance
	}

	customers, err := ads.customerRepo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	totalBookings, err := ads.bookingRepo.CountBookings(ctx)
	if err != nil {
		return nil, err
	}
	cancelledBookings, err := ads.bookingRepo.CountBookingsByStatus(ctx, models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	completedTotal, err := ads.paymentRepo.SumPaymentsByStatus(ctx, models.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	pendingTotal, err := ads.paymentRepo.SumPaymentsByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Owners:            owners,
		Customers:         customers,
		OwnersCount:       len(owners),
		OwnersBalance:     ownersBalance,
		CustomersCount:    len(customers),
		TotalBookings:     totalBookings,
		CancelledBookings: cancelledBookings,
		CompletedTotal:    completedTotal,
		PendingTotal:      pendingTotal,
	}, nil
}

func (ads *AdminService) ListOwners(ctx context.Context) ([]*models.Owner, error) {
	return ads.ownerRepo.ListOwners(ctx)
}

// SetOwnerStatus maps the posted form action onto an owner status transition.
// Both admin routes funnel through here, so the pending guard applies
// uniformly.
func (ads *AdminService) SetOwnerStatus(ctx context.Context, ownerId primitive.ObjectID, action string) (models.OwnerStatus, error) {
	var status models.OwnerStatus
	switch action {
	case "approve":
		status = models.OwnerStatusApproved
	case "disapprove":
		status = models.OwnerStatusDisapproved
	default:
		return "", fmt.Errorf("unsupported action %q: %w", action, models.ErrInvalidInput)
	}

	if err := ads.ownerRepo.UpdateOwnerStatus(ctx, ownerId, status); err != nil {
		return "", err
	}
	return status, nil
}

func (ads *AdminService) CarsWithOwners(ctx context.Context) ([]*CarView, error) {
	cars, err := ads.carRepo.ListCars(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*CarView, 0, len(cars))
	for _, car := range cars {
		view := &CarView{Car: car, OwnerName: unknownDisplay}
		if owner, err := ads.ownerRepo.GetOwnerByID(ctx, car.OwnerID); err == nil {
			view.OwnerName = owner.Username
		}
		views = append(views, view)
	}
	return views, nil
}

func (ads *AdminService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return ads.customerRepo.ListCustomers(ctx)
}

func (ads *AdminService) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return ads.paymentRepo.ListPayments(ctx)
}

// BookingsOverview lists every booking enriched with its car model and
// customer name, substituting "Unknown" for references that fail to resolve.
func (ads *AdminService) BookingsOverview(ctx context.Context) ([]*BookingView, error) {
	bookings, err := ads.bookingRepo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*BookingView, 0, len(bookings))
	for _, booking := range bookings {
		view := &BookingView{
			Booking:      booking,
			CarModel:     unknownDisplay,
			CustomerName: unknownDisplay,
		}
		if car, err := ads.carRepo.GetCarByID(ctx, booking.CarID); err == nil {
			view.CarModel = car.Model
		}
		if customer, err := ads.customerRepo.GetCustomerByID(ctx, booking.CustomerID); err == nil {
			view.CustomerName = customer.Username
		}
		views = append(views, view)
	}
	return views, nil
}
