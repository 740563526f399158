package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/carhive/server/internal/helpers"
	"github.com/carhive/server/internal/models"
)

// Login failures are classified so handlers can flash role-specific messages
// without inspecting error strings.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPendingApproval    = errors.New("account is pending approval")
	ErrAccountDisapproved = errors.New("account has been disapproved")
)

// AccountService covers registration and login for all three roles.
type AccountService struct {
	adminRepo    models.AdminRepo
	ownerRepo    models.OwnerRepo
	customerRepo models.CustomerRepo
}

func NewAccountService(adminRepo models.AdminRepo, ownerRepo models.OwnerRepo, customerRepo models.CustomerRepo) *AccountService {
	return &AccountService{
		adminRepo:    adminRepo,
		ownerRepo:    ownerRepo,
		customerRepo: customerRepo,
	}
}

// RegisterAdmin is a one-time operation: once one admin record exists every
// further attempt fails with ErrDuplicate.
func (as *AccountService) RegisterAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	count, err := as.adminRepo.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if count >= 1 {
		return nil, fmt.Errorf("admin already exists: %w", models.ErrDuplicate)
	}

	if !helpers.IsPasswordStrong(password) {
		return nil, fmt.Errorf("password is not strong enough: %w", models.ErrInvalidInput)
	}

	exists, err := as.adminRepo.AdminExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username %q is taken: %w", username, models.ErrDuplicate)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return as.adminRepo.CreateAdmin(ctx, &models.Admin{
		Username: username,
		Password: hash,
		Balance:  0,
	})
}

func (as *AccountService) LoginAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := as.adminRepo.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CheckPassword(admin.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// OwnerRegistration is the validated registration form for a vehicle owner.
type OwnerRegistration struct {
	FirstName      string `validate:"required"`
	LastName       string `validate:"required"`
	Username       string `validate:"required,min=3"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=8"`
	PhoneNumber    string `validate:"required"`
	Address        string
	City           string
	State          string
	Zipcode        string
	DOB            string
	SSN            string
	DrivingLicense string `validate:"required"`
}

// RegisterOwner creates an owner account. Status is always forced to
// "pending"; only an admin approval unlocks login.
func (as *AccountService) RegisterOwner(ctx context.Context, reg *OwnerRegistration) (*models.Owner, error) {
	if err := models.Validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", models.ErrInvalidInput)
	}
	if !helpers.IsPasswordStrong(reg.Password) {
		return nil, fmt.Errorf("password is not strong enough: %w", models.ErrInvalidInput)
	}

	hash, err := helpers.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	return as.ownerRepo.CreateOwner(ctx, &models.Owner{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Username:       reg.Username,
		Email:          reg.Email,
		Password:       hash,
		PhoneNumber:    reg.PhoneNumber,
		Address:        reg.Address,
		City:           reg.City,
		State:          reg.State,
		Zipcode:        reg.Zipcode,
		DOB:            reg.DOB,
		SSN:            reg.SSN,
		DrivingLicense: reg.DrivingLicense,
		Status:         models.OwnerStatusPending,
		Balance:        0,
	})
}

// LoginOwner rejects owners whose status never left "pending" or whose
// application was disapproved, before any password comparison.
func (as *AccountService) LoginOwner(ctx context.Context, username, password string) (*models.Owner, error) {
	owner, err := as.ownerRepo.GetOwnerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	switch owner.Status {
	case models.OwnerStatusPending:
		return nil, ErrPendingApproval
	case models.OwnerStatusDisapproved:
		return nil, ErrAccountDisapproved
	}

	if !helpers.CheckPassword(owner.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return owner, nil
}

// CustomerRegistration is the validated registration form for a customer.
type CustomerRegistration struct {
	FirstName      string `validate:"required"`
	LastName       string `validate:"required"`
	Username       string `validate:"required,min=3"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=8"`
	PhoneNumber    string
	DrivingLicense string
}

func (as *AccountService) RegisterCustomer(ctx context.Context, reg *CustomerRegistration) (*models.Customer, error) {
	if err := models.Validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", models.ErrInvalidInput)
	}
	if !helpers.IsPasswordStrong(reg.Password) {
		return nil, fmt.Errorf("password is not strong enough: %w", models.ErrInvalidInput)
	}

	hash, err := helpers.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	return as.customerRepo.CreateCustomer(ctx, &models.Customer{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Username:       reg.Username,
		Email:          reg.Email,
		Password:       hash,
		PhoneNumber:    reg.PhoneNumber,
		DrivingLicense: reg.DrivingLicense,
	})
}

func (as *AccountService) LoginCustomer(ctx context.Context, username, password string) (*models.Customer, error) {
	customer, err := as.customerRepo.GetCustomerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CheckPassword(customer.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}
