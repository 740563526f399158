package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/models"
)

func testCar(status models.CarStatus) *models.Car {
	return &models.Car{
		ID:                 primitive.NewObjectID(),
		OwnerID:            primitive.NewObjectID(),
		Make:               "Chevrolet",
		Model:              "Malibu",
		Type:               "Sedan",
		LicensePlate:       "GR-1234-20",
		CurrentOdometer:    42000,
		RentalPricePerDay:  50,
		InsuranceAvailable: true,
		InsuranceCost:      25,
		Status:             status,
	}
}

func TestBookingQuote(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		end           time.Time
		withInsurance bool
		want          float64
		wantErr       bool
	}{
		{"three days", start.AddDate(0, 0, 3), false, 150, false},
		{"three days with insurance", start.AddDate(0, 0, 3), true, 175, false},
		{"partial day rounds up", start.Add(36 * time.Hour), false, 100, false},
		{"end equals start", start, false, 0, true},
		{"end before start", start.AddDate(0, 0, -1), false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BookingQuote(car, start, tt.end, tt.withInsurance)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidInput) {
					t.Fatalf("got %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("total = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingQuoteInsuranceNotOffered(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	car.InsuranceAvailable = false
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := BookingQuote(car, start, start.AddDate(0, 0, 2), true)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestBookCarClaimsCarAndCreatesPendingPayment(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	cars := &fakeCarRepo{cars: []*models.Car{car}}
	bookings := &fakeBookingRepo{}
	payments := &fakePaymentRepo{}
	svc := NewRentalService(cars, bookings, payments)

	ctx := context.Background()
	customerId := primitive.NewObjectID()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.BookCar(ctx, customerId, car.ID, start, start.AddDate(0, 0, 2), false)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if booking.Status != models.BookingStatusActive {
		t.Errorf("booking status = %q, want %q", booking.Status, models.BookingStatusActive)
	}
	if booking.TotalCost != 100 {
		t.Errorf("total cost = %v, want 100", booking.TotalCost)
	}
	if car.Status != models.CarStatusRented {
		t.Errorf("car status = %q, want %q", car.Status, models.CarStatusRented)
	}
	if len(payments.payments) != 1 {
		t.Fatalf("payment count = %d, want 1", len(payments.payments))
	}
	payment := payments.payments[0]
	if payment.BookingID != booking.ID || payment.Amount != 100 || payment.Status != models.PaymentStatusPending {
		t.Errorf("payment = %+v, want pending 100 for booking %s", payment, booking.ID.Hex())
	}
}

func TestBookCarRejectsSecondCustomer(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	cars := &fakeCarRepo{cars: []*models.Car{car}}
	svc := NewRentalService(cars, &fakeBookingRepo{}, &fakePaymentRepo{})

	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	if _, err := svc.BookCar(ctx, primitive.NewObjectID(), car.ID, start, end, false); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	_, err := svc.BookCar(ctx, primitive.NewObjectID(), car.ID, start, end, false)
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("second booking: got %v, want ErrConflict", err)
	}
}

func TestBookCarCompensatesWhenPaymentFails(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	cars := &fakeCarRepo{cars: []*models.Car{car}}
	bookings := &fakeBookingRepo{}
	payments := &fakePaymentRepo{createErr: errors.New("payments store down")}
	svc := NewRentalService(cars, bookings, payments)

	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.BookCar(ctx, primitive.NewObjectID(), car.ID, start, start.AddDate(0, 0, 2), false); err == nil {
		t.Fatal("expected the booking to fail when the payment cannot be recorded")
	}

	if car.Status != models.CarStatusAvailable {
		t.Errorf("car status = %q, want it released to %q", car.Status, models.CarStatusAvailable)
	}
	if len(bookings.bookings) != 1 || bookings.bookings[0].Status != models.BookingStatusCancelled {
		t.Errorf("booking was not cancelled: %+v", bookings.bookings)
	}
	if len(payments.payments) != 0 {
		t.Errorf("payment count = %d, want 0", len(payments.payments))
	}
}

func TestCancelBookingReleasesCar(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	cars := &fakeCarRepo{cars: []*models.Car{car}}
	bookings := &fakeBookingRepo{}
	svc := NewRentalService(cars, bookings, &fakePaymentRepo{})

	ctx := context.Background()
	customerId := primitive.NewObjectID()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.BookCar(ctx, customerId, car.ID, start, start.AddDate(0, 0, 2), false)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if err := svc.CancelBooking(ctx, booking.ID, customerId); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if booking.Status != models.BookingStatusCancelled {
		t.Errorf("booking status = %q, want %q", booking.Status, models.BookingStatusCancelled)
	}
	if car.Status != models.CarStatusAvailable {
		t.Errorf("car status = %q, want %q", car.Status, models.CarStatusAvailable)
	}

	// A second cancel must fail: the booking already left "active".
	if err := svc.CancelBooking(ctx, booking.ID, customerId); !errors.Is(err, models.ErrConflict) {
		t.Errorf("second cancel: got %v, want ErrConflict", err)
	}
}

func TestCancelBookingScopedToCustomer(t *testing.T) {
	car := testCar(models.CarStatusAvailable)
	cars := &fakeCarRepo{cars: []*models.Car{car}}
	svc := NewRentalService(cars, &fakeBookingRepo{}, &fakePaymentRepo{})

	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	booking, err := svc.BookCar(ctx, primitive.NewObjectID(), car.ID, start, start.AddDate(0, 0, 2), false)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	err = svc.CancelBooking(ctx, booking.ID, primitive.NewObjectID())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("cancel by another customer: got %v, want ErrNotFound", err)
	}
	if booking.Status != models.BookingStatusActive {
		t.Errorf("booking status = %q, want it to stay %q", booking.Status, models.BookingStatusActive)
	}
}

func TestCustomerBookingsFallsBackToUnknownCar(t *testing.T) {
	customerId := primitive.NewObjectID()
	booking := &models.Booking{
		ID:         primitive.NewObjectID(),
		CarID:      primitive.NewObjectID(), // never stored
		CustomerID: customerId,
		Status:     models.BookingStatusActive,
	}
	svc := NewRentalService(&fakeCarRepo{}, &fakeBookingRepo{bookings: []*models.Booking{booking}}, &fakePaymentRepo{})

	views, err := svc.CustomerBookings(context.Background(), customerId)
	if err != nil {
		t.Fatalf("listing bookings failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("view count = %d, want 1", len(views))
	}
	if views[0].CarModel != "Unknown" {
		t.Errorf("car model = %q, want Unknown", views[0].CarModel)
	}
}
