package helpers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/carhive/server/internal/models"
)

func formContext(t *testing.T, form url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Error("hash equals the plaintext password")
	}
	if !CheckPassword(hash, "Sup3rSecret") {
		t.Error("correct password did not verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password verified")
	}
}

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Sup3rSecret", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tt := range tests {
		if got := IsPasswordStrong(tt.password); got != tt.want {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestFloatField(t *testing.T) {
	c := formContext(t, url.Values{"current_odometer": {"42000.5"}})
	got, err := FloatField(c, "current_odometer")
	if err != nil {
		t.Fatalf("parsing failed: %v", err)
	}
	if got != 42000.5 {
		t.Errorf("got %v, want 42000.5", got)
	}
}

func TestFloatFieldMissing(t *testing.T) {
	c := formContext(t, url.Values{})
	_, err := FloatField(c, "current_odometer")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestFloatFieldMalformed(t *testing.T) {
	c := formContext(t, url.Values{"current_odometer": {"lots"}})
	_, err := FloatField(c, "current_odometer")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestOptionalFloatField(t *testing.T) {
	c := formContext(t, url.Values{"insurance_cost": {"25"}})
	got, err := OptionalFloatField(c, "insurance_cost")
	if err != nil || got != 25 {
		t.Errorf("got %v, %v, want 25, nil", got, err)
	}

	c = formContext(t, url.Values{})
	got, err = OptionalFloatField(c, "insurance_cost")
	if err != nil || got != 0 {
		t.Errorf("absent field: got %v, %v, want 0, nil", got, err)
	}

	c = formContext(t, url.Values{"insurance_cost": {"cheap"}})
	if _, err = OptionalFloatField(c, "insurance_cost"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("malformed field: got %v, want ErrInvalidInput", err)
	}
}

func TestBoolField(t *testing.T) {
	c := formContext(t, url.Values{"insurance_available": {"true"}, "with_insurance": {"on"}})
	if !BoolField(c, "insurance_available") {
		t.Error(`"true" should parse as true`)
	}
	if BoolField(c, "with_insurance") {
		t.Error(`"on" should not parse as true`)
	}
	if BoolField(c, "missing") {
		t.Error("absent field should parse as false")
	}
}

func TestRequiredFields(t *testing.T) {
	c := formContext(t, url.Values{
		"current_mileage": {"42350"},
		"gas_level":       {"3/4"},
		"penalty":         {"  "},
	})

	if missing := RequiredFields(c, "current_mileage", "gas_level"); missing != "" {
		t.Errorf("missing = %q, want none", missing)
	}
	if missing := RequiredFields(c, "current_mileage", "penalty"); missing != "penalty" {
		t.Errorf("missing = %q, want penalty (whitespace only)", missing)
	}
	if missing := RequiredFields(c, "pickup_location"); missing != "pickup_location" {
		t.Errorf("missing = %q, want pickup_location", missing)
	}
}
