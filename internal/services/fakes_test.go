package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carhive/server/internal/models"
)

// In-memory repository fakes mirroring the Mongo implementations' error
// contracts, so the services can be exercised without a database.

type fakeAdminRepo struct {
	admins []*models.Admin
}

func (f *fakeAdminRepo) CreateAdmin(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if len(f.admins) >= 1 {
		return nil, fmt.Errorf("admin already exists: %w", models.ErrDuplicate)
	}
	admin.ID = primitive.NewObjectID()
	f.admins = append(f.admins, admin)
	return admin, nil
}

func (f *fakeAdminRepo) CountAdmins(ctx context.Context) (int64, error) {
	return int64(len(f.admins)), nil
}

func (f *fakeAdminRepo) AdminExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, admin := range f.admins {
		if admin.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAdminRepo) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return nil, fmt.Errorf("admin %q: %w", username, models.ErrNotFound)
}

type fakeOwnerRepo struct {
	owners []*models.Owner
}

func (f *fakeOwnerRepo) CreateOwner(ctx context.Context, owner *models.Owner) (*models.Owner, error) {
	for _, existing := range f.owners {
		if existing.Username == owner.Username {
			return nil, fmt.Errorf("username %q is taken: %w", owner.Username, models.ErrDuplicate)
		}
	}
	owner.ID = primitive.NewObjectID()
	f.owners = append(f.owners, owner)
	return owner, nil
}

func (f *fakeOwnerRepo) OwnerExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, owner := range f.owners {
		if owner.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOwnerRepo) GetOwnerByUsername(ctx context.Context, username string) (*models.Owner, error) {
	for _, owner := range f.owners {
		if owner.Username == username {
			return owner, nil
		}
	}
	return nil, fmt.Errorf("owner %q: %w", username, models.ErrNotFound)
}

func (f *fakeOwnerRepo) GetOwnerByID(ctx context.Context, id primitive.ObjectID) (*models.Owner, error) {
	for _, owner := range f.owners {
		if owner.ID == id {
			return owner, nil
		}
	}
	return nil, fmt.Errorf("owner %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeOwnerRepo) ListOwners(ctx context.Context) ([]*models.Owner, error) {
	return f.owners, nil
}

func (f *fakeOwnerRepo) UpdateOwnerStatus(ctx context.Context, id primitive.ObjectID, status models.OwnerStatus) error {
	for _, owner := range f.owners {
		if owner.ID != id {
			continue
		}
		if owner.Status != models.OwnerStatusPending {
			return fmt.Errorf("owner %s is no longer pending: %w", id.Hex(), models.ErrConflict)
		}
		owner.Status = status
		return nil
	}
	return fmt.Errorf("owner %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeOwnerRepo) CreditOwnerBalance(ctx context.Context, id primitive.ObjectID, amount float64) error {
	for _, owner := range f.owners {
		if owner.ID == id {
			owner.Balance += amount
			return nil
		}
	}
	return fmt.Errorf("owner %s: %w", id.Hex(), models.ErrNotFound)
}

type fakeCustomerRepo struct {
	customers []*models.Customer
}

func (f *fakeCustomerRepo) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	for _, existing := range f.customers {
		if existing.Username == customer.Username {
			return nil, fmt.Errorf("username %q is taken: %w", customer.Username, models.ErrDuplicate)
		}
	}
	customer.ID = primitive.NewObjectID()
	f.customers = append(f.customers, customer)
	return customer, nil
}

func (f *fakeCustomerRepo) CustomerExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, customer := range f.customers {
		if customer.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCustomerRepo) GetCustomerByUsername(ctx context.Context, username string) (*models.Customer, error) {
	for _, customer := range f.customers {
		if customer.Username == username {
			return customer, nil
		}
	}
	return nil, fmt.Errorf("customer %q: %w", username, models.ErrNotFound)
}

func (f *fakeCustomerRepo) GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	for _, customer := range f.customers {
		if customer.ID == id {
			return customer, nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeCustomerRepo) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return f.customers, nil
}

type fakeCarRepo struct {
	cars []*models.Car
}

func (f *fakeCarRepo) CreateCar(ctx context.Context, car *models.Car) (*models.Car, error) {
	car.ID = primitive.NewObjectID()
	if car.Status == "" {
		car.Status = models.CarStatusAvailable
	}
	f.cars = append(f.cars, car)
	return car, nil
}

func (f *fakeCarRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	for _, car := range f.cars {
		if car.ID == id {
			return car, nil
		}
	}
	return nil, fmt.Errorf("car %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeCarRepo) GetCarsByOwnerID(ctx context.Context, ownerId primitive.ObjectID) ([]*models.Car, error) {
	var owned []*models.Car
	for _, car := range f.cars {
		if car.OwnerID == ownerId {
			owned = append(owned, car)
		}
	}
	return owned, nil
}

func (f *fakeCarRepo) ListCars(ctx context.Context) ([]*models.Car, error) {
	return f.cars, nil
}

func (f *fakeCarRepo) ListAvailableCars(ctx context.Context) ([]*models.Car, error) {
	var available []*models.Car
	for _, car := range f.cars {
		if car.Status == models.CarStatusAvailable {
			available = append(available, car)
		}
	}
	return available, nil
}

func (f *fakeCarRepo) UpdateCar(ctx context.Context, id, ownerId primitive.ObjectID, update *models.CarUpdate) error {
	for _, car := range f.cars {
		if car.ID != id || car.OwnerID != ownerId {
			continue
		}
		if update.Make != nil {
			car.Make = *update.Make
		}
		if update.Model != nil {
			car.Model = *update.Model
		}
		if update.RentalPricePerDay != nil {
			car.RentalPricePerDay = *update.RentalPricePerDay
		}
		if update.ImageURL != nil {
			car.ImageURL = *update.ImageURL
		}
		return nil
	}
	return fmt.Errorf("car %s for owner %s: %w", id.Hex(), ownerId.Hex(), models.ErrNotFound)
}

func (f *fakeCarRepo) DeleteCar(ctx context.Context, id, ownerId primitive.ObjectID) error {
	for i, car := range f.cars {
		if car.ID == id && car.OwnerID == ownerId {
			f.cars = append(f.cars[:i], f.cars[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("car %s for owner %s: %w", id.Hex(), ownerId.Hex(), models.ErrNotFound)
}

func (f *fakeCarRepo) UpdateCarOdometer(ctx context.Context, id primitive.ObjectID, expected, odometer float64) error {
	for _, car := range f.cars {
		if car.ID != id {
			continue
		}
		if car.CurrentOdometer != expected {
			return fmt.Errorf("car %s odometer changed underneath us: %w", id.Hex(), models.ErrConflict)
		}
		car.CurrentOdometer = odometer
		return nil
	}
	return fmt.Errorf("car %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeCarRepo) SetCarStatus(ctx context.Context, id primitive.ObjectID, from, to models.CarStatus) error {
	for _, car := range f.cars {
		if car.ID != id {
			continue
		}
		if car.Status != from {
			return fmt.Errorf("car %s is not %s: %w", id.Hex(), from, models.ErrConflict)
		}
		car.Status = to
		return nil
	}
	return fmt.Errorf("car %s: %w", id.Hex(), models.ErrNotFound)
}

type fakeBookingRepo struct {
	bookings []*models.Booking
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	booking.ID = primitive.NewObjectID()
	if booking.Status == "" {
		booking.Status = models.BookingStatusActive
	}
	f.bookings = append(f.bookings, booking)
	return booking, nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	for _, booking := range f.bookings {
		if booking.ID == id {
			return booking, nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeBookingRepo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) GetBookingsByCarIDs(ctx context.Context, carIds []primitive.ObjectID) ([]*models.Booking, error) {
	wanted := make(map[primitive.ObjectID]bool, len(carIds))
	for _, id := range carIds {
		wanted[id] = true
	}
	matched := []*models.Booking{}
	for _, booking := range f.bookings {
		if wanted[booking.CarID] {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (f *fakeBookingRepo) GetBookingsByCustomerID(ctx context.Context, customerId primitive.ObjectID) ([]*models.Booking, error) {
	var matched []*models.Booking
	for _, booking := range f.bookings {
		if booking.CustomerID == customerId {
			matched = append(matched, booking)
		}
	}
	return matched, nil
}

func (f *fakeBookingRepo) RecordBookingReturn(ctx context.Context, id primitive.ObjectID, ret *models.BookingReturn, checkout bool) error {
	for _, booking := range f.bookings {
		if booking.ID != id {
			continue
		}
		if checkout && booking.Status == models.BookingStatusReturned {
			return fmt.Errorf("booking %s already returned: %w", id.Hex(), models.ErrConflict)
		}
		booking.CurrentMileage = ret.CurrentMileage
		booking.GasLevel = ret.GasLevel
		booking.PickupLocation = ret.PickupLocation
		booking.DropoffLocation = ret.DropoffLocation
		booking.Penalty = ret.Penalty
		if checkout {
			booking.Status = models.BookingStatusReturned
		}
		return nil
	}
	return fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeBookingRepo) CancelBooking(ctx context.Context, id, customerId primitive.ObjectID) error {
	for _, booking := range f.bookings {
		if booking.ID != id || booking.CustomerID != customerId {
			continue
		}
		if booking.Status != models.BookingStatusActive {
			return fmt.Errorf("booking %s is not active: %w", id.Hex(), models.ErrConflict)
		}
		booking.Status = models.BookingStatusCancelled
		return nil
	}
	return fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
}

func (f *fakeBookingRepo) CountBookings(ctx context.Context) (int64, error) {
	return int64(len(f.bookings)), nil
}

func (f *fakeBookingRepo) CountBookingsByStatus(ctx context.Context, status models.BookingStatus) (int64, error) {
	var count int64
	for _, booking := range f.bookings {
		if booking.Status == status {
			count++
		}
	}
	return count, nil
}

type fakePaymentRepo struct {
	payments  []*models.Payment
	createErr error
}

func (f *fakePaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	payment.ID = primitive.NewObjectID()
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	f.payments = append(f.payments, payment)
	return payment, nil
}

func (f *fakePaymentRepo) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return f.payments, nil
}

func (f *fakePaymentRepo) SumPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (float64, error) {
	var total float64
	for _, payment := range f.payments {
		if payment.Status == status {
			total += payment.Amount
		}
	}
	return total, nil
}

func (f *fakePaymentRepo) CompletePaymentsForBooking(ctx context.Context, bookingId primitive.ObjectID) (float64, error) {
	var settled float64
	for _, payment := range f.payments {
		if payment.BookingID == bookingId && payment.Status == models.PaymentStatusPending {
			payment.Status = models.PaymentStatusCompleted
			settled += payment.Amount
		}
	}
	return settled, nil
}
