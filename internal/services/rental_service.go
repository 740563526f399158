package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/models"
)

// RentalService covers the customer's side: browsing available cars, placing
// a reservation and cancelling it.
type RentalService struct {
	carRepo     models.CarRepo
	bookingRepo models.BookingRepo
	paymentRepo models.PaymentRepo
}

func NewRentalService(carRepo models.CarRepo, bookingRepo models.BookingRepo, paymentRepo models.PaymentRepo) *RentalService {
	return &RentalService{
		carRepo:     carRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
	}
}

func (rs *RentalService) AvailableCars(ctx context.Context) ([]*models.Car, error) {
	return rs.carRepo.ListAvailableCars(ctx)
}

func (rs *RentalService) GetCar(ctx context.Context, carId primitive.ObjectID) (*models.Car, error) {
	return rs.carRepo.GetCarByID(ctx, carId)
}

// BookingQuote computes the rental total for a date range: whole days times
// the daily price, plus the insurance cost when taken. Partial days round up.
func BookingQuote(car *models.Car, start, end time.Time, withInsurance bool) (float64, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("end date must be after start date: %w", models.ErrInvalidInput)
	}

	days := math.Ceil(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}

	total := days * car.RentalPricePerDay
	if withInsurance {
		if !car.InsuranceAvailable {
			return 0, fmt.Errorf("insurance is not offered for this car: %w", models.ErrInvalidInput)
		}
		total += car.InsuranceCost
	}
	return total, nil
}

// BookCar reserves a car for a customer. The car is claimed first with a
// conditional available -> rented transition so two customers cannot book the
// same car; the booking and its pending payment follow. If booking creation
// fails the car is released again.
func (rs *RentalService) BookCar(ctx context.Context, customerId, carId primitive.ObjectID, start, end time.Time, withInsurance bool) (*models.Booking, error) {
	car, err := rs.carRepo.GetCarByID(ctx, carId)
	if err != nil {
		return nil, err
	}

	total, err := BookingQuote(car, start, end, withInsurance)
	if err != nil {
		return nil, err
	}

	if err := rs.carRepo.SetCarStatus(ctx, carId, models.CarStatusAvailable, models.CarStatusRented); err != nil {
		return nil, err
	}

	booking, err := rs.bookingRepo.CreateBooking(ctx, &models.Booking{
		CarID:      carId,
		CustomerID: customerId,
		StartDate:  start,
		EndDate:    end,
		TotalCost:  total,
		Status:     models.BookingStatusActive,
	})
	if err != nil {
		_ = rs.carRepo.SetCarStatus(ctx, carId, models.CarStatusRented, models.CarStatusAvailable)
		return nil, err
	}

	if _, err := rs.paymentRepo.CreatePayment(ctx, &models.Payment{
		BookingID: booking.ID,
		Amount:    total,
		Status:    models.PaymentStatusPending,
	}); err != nil {
		// No payment record, no reservation: undo the booking and free the car.
		_ = rs.bookingRepo.CancelBooking(ctx, booking.ID, customerId)
		_ = rs.carRepo.SetCarStatus(ctx, carId, models.CarStatusRented, models.CarStatusAvailable)
		return nil, err
	}

	return booking, nil
}

// CustomerBookings lists a customer's bookings enriched with the car's make
// and model, "Unknown" when the car no longer resolves.
func (rs *RentalService) CustomerBookings(ctx context.Context, customerId primitive.ObjectID) ([]*BookingView, error) {
	bookings, err := rs.bookingRepo.GetBookingsByCustomerID(ctx, customerId)
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
		if car, err := rs.carRepo.GetCarByID(ctx, booking.CarID); err == nil {
			view.CarModel = car.Make + " " + car.Model
		}
		views = append(views, view)
	}
	return views, nil
}

// CancelBooking moves an active booking to "cancelled" and releases the car.
func (rs *RentalService) CancelBooking(ctx context.Context, bookingId, customerId primitive.ObjectID) error {
	booking, err := rs.bookingRepo.GetBookingByID(ctx, bookingId)
	if err != nil {
		return err
	}

	if err := rs.bookingRepo.CancelBooking(ctx, bookingId, customerId); err != nil {
		return err
	}

	// Releasing a car that was never marked rented is fine to skip.
	_ = rs.carRepo.SetCarStatus(ctx, booking.CarID, models.CarStatusRented, models.CarStatusAvailable)
	return nil
}
