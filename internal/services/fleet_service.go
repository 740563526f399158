package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/helpers"
	"github.com/carhive/server/internal/models"
)

const unknownDisplay = "Unknown"

// BookingView is a booking enriched for display with the referenced car and
// customer. Dangling references degrade to "Unknown" instead of failing the
// request.
type BookingView struct {
	Booking      *models.Booking
	CarModel     string
	CustomerName string
}

// FleetService covers the owner's car inventory and the bookings against it.
type FleetService struct {
	carRepo     models.CarRepo
	bookingRepo models.BookingRepo
	customers   models.CustomerRepo
	owners      models.OwnerRepo
	payments    models.PaymentRepo
	cld         *cloudinary.Cloudinary
}

func NewFleetService(
	carRepo models.CarRepo,
	bookingRepo models.BookingRepo,
	customers models.CustomerRepo,
	owners models.OwnerRepo,
	payments models.PaymentRepo,
	cld *cloudinary.Cloudinary,
) *FleetService {
	return &FleetService{
		carRepo:     carRepo,
		bookingRepo: bookingRepo,
		customers:   customers,
		owners:      owners,
		payments:    payments,
		cld:         cld,
	}
}

// CarInput is the validated add-car form.
type CarInput struct {
	Make               string `validate:"required"`
	Model              string `validate:"required"`
	Type               string `validate:"required"`
	LicensePlate       string `validate:"required"`
	CurrentOdometer    float64
	RentalPricePerDay  float64 `validate:"gt=0"`
	AvailabilityStatus string
	InsuranceAvailable bool
	InsuranceCost      float64
	State              string
	ImageSource        string
}

func (fs *FleetService) AddCar(ctx context.Context, ownerId primitive.ObjectID, input *CarInput) (*models.Car, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid car data: %w", models.ErrInvalidInput)
	}

	imageURL, err := helpers.UploadCarImage(ctx, fs.cld, input.ImageSource)
	if err != nil {
		return nil, err
	}

	return fs.carRepo.CreateCar(ctx, &models.Car{
		OwnerID:            ownerId,
		Make:               input.Make,
		Model:              input.Model,
		Type:               input.Type,
		LicensePlate:       input.LicensePlate,
		CurrentOdometer:    input.CurrentOdometer,
		RentalPricePerDay:  input.RentalPricePerDay,
		AvailabilityStatus: input.AvailabilityStatus,
		InsuranceAvailable: input.InsuranceAvailable,
		InsuranceCost:      input.InsuranceCost,
		State:              input.State,
		Status:             models.CarStatusAvailable,
		ImageURL:           imageURL,
	})
}

func (fs *FleetService) OwnerCars(ctx context.Context, ownerId primitive.ObjectID) ([]*models.Car, error) {
	return fs.carRepo.GetCarsByOwnerID(ctx, ownerId)
}

// OwnerCar fetches one car and verifies it belongs to the owner.
func (fs *FleetService) OwnerCar(ctx context.Context, carId, ownerId primitive.ObjectID) (*models.Car, error) {
	car, err := fs.carRepo.GetCarByID(ctx, carId)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != ownerId {
		return nil, fmt.Errorf("car %s for owner %s: %w", carId.Hex(), ownerId.Hex(), models.ErrNotFound)
	}
	return car, nil
}

func (fs *FleetService) EditCar(ctx context.Context, carId, ownerId primitive.ObjectID, update *models.CarUpdate, imageSource string) error {
	if imageSource != "" {
		imageURL, err := helpers.UploadCarImage(ctx, fs.cld, imageSource)
		if err != nil {
			return err
		}
		update.ImageURL = &imageURL
	}
	return fs.carRepo.UpdateCar(ctx, carId, ownerId, update)
}

func (fs *FleetService) DeleteCar(ctx context.Context, carId, ownerId primitive.ObjectID) error {
	return fs.carRepo.DeleteCar(ctx, carId, ownerId)
}

func (fs *FleetService) OwnerBalance(ctx context.Context, ownerId primitive.ObjectID) (float64, error) {
	owner, err := fs.owners.GetOwnerByID(ctx, ownerId)
	if err != nil {
		return 0, err
	}
	return owner.Balance, nil
}

// OwnerBookings lists bookings whose car belongs to the owner's fleet: first
// collect the owner's car ids, then query bookings with car_id in that set.
func (fs *FleetService) OwnerBookings(ctx context.Context, ownerId primitive.ObjectID) ([]*BookingView, error) {
	cars, err := fs.carRepo.GetCarsByOwnerID(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	if len(cars) == 0 {
		return []*BookingView{}, nil
	}

	carModels := make(map[primitive.ObjectID]string, len(cars))
	carIds := make([]primitive.ObjectID, 0, len(cars))
	for _, car := range cars {
		carModels[car.ID] = car.Model
		carIds = append(carIds, car.ID)
	}

	bookings, err := fs.bookingRepo.GetBookingsByCarIDs(ctx, carIds)
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
		if model, ok := carModels[booking.CarID]; ok {
			view.CarModel = model
		}
		if customer, err := fs.customers.GetCustomerByID(ctx, booking.CustomerID); err == nil {
			view.CustomerName = customer.Username
		}
		views = append(views, view)
	}
	return views, nil
}

// OwnerBooking fetches one booking plus its car and verifies the car belongs
// to the owner.
func (fs *FleetService) OwnerBooking(ctx context.Context, bookingId, ownerId primitive.ObjectID) (*models.Booking, *models.Car, error) {
	booking, err := fs.bookingRepo.GetBookingByID(ctx, bookingId)
	if err != nil {
		return nil, nil, err
	}

	car, err := fs.carRepo.GetCarByID(ctx, booking.CarID)
	if err != nil {
		return nil, nil, err
	}
	if car.OwnerID != ownerId {
		return nil, nil, fmt.Errorf("booking %s for owner %s: %w", bookingId.Hex(), ownerId.Hex(), models.ErrNotFound)
	}
	return booking, car, nil
}

// HandleReturn records the return details on a booking. With checkout set the
// booking transitions to "returned", the submitted mileage is written back
// onto the car's odometer under an optimistic guard, the car is released, any
// pending payment is settled and the owner is credited.
func (fs *FleetService) HandleReturn(ctx context.Context, bookingId, ownerId primitive.ObjectID, ret *models.BookingReturn, checkout bool) error {
	booking, car, err := fs.OwnerBooking(ctx, bookingId, ownerId)
	if err != nil {
		return err
	}

	if ret.CurrentMileage < car.CurrentOdometer {
		return fmt.Errorf("returned mileage %.0f is below the recorded odometer %.0f: %w",
			ret.CurrentMileage, car.CurrentOdometer, models.ErrInvalidInput)
	}

	if err := fs.bookingRepo.RecordBookingReturn(ctx, bookingId, ret, checkout); err != nil {
		return err
	}
	if !checkout {
		return nil
	}

	if err := fs.carRepo.UpdateCarOdometer(ctx, car.ID, car.CurrentOdometer, ret.CurrentMileage); err != nil {
		return err
	}
	if err := fs.carRepo.SetCarStatus(ctx, car.ID, models.CarStatusRented, models.CarStatusAvailable); err != nil {
		// The car may already be available when the booking never marked it
		// rented; that is not a checkout failure.
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
	}

	settled, err := fs.payments.CompletePaymentsForBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	if settled > 0 {
		if err := fs.owners.CreditOwnerBalance(ctx, ownerId, settled); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate reads the yyyy-mm-dd value posted by date form fields.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, models.ErrInvalidInput)
	}
	return t, nil
}
