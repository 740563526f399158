package helpers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/server/internal/models"
)

const CarImageFolder = "cars"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %v", err)
	}
	return string(hash), nil
}

// CheckPassword compares a submitted password against a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	return hasLower && hasUpper && hasNumber
}

// FloatField parses a required numeric form field. Malformed or missing input
// comes back as ErrInvalidInput so the handler can flash a message instead of
// failing the request.
func FloatField(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required: %w", name, models.ErrInvalidInput)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, models.ErrInvalidInput)
	}
	return value, nil
}

// OptionalFloatField parses an optional numeric form field, defaulting to 0
// when absent.
func OptionalFloatField(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, models.ErrInvalidInput)
	}
	return value, nil
}

func BoolField(c *gin.Context, name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.PostForm(name)), "true")
}

// RequiredFields returns the first missing field name, or "" when all are
// present.
func RequiredFields(c *gin.Context, names ...string) string {
	for _, name := range names {
		if strings.TrimSpace(c.PostForm(name)) == "" {
			return name
		}
	}
	return ""
}

// UploadCarImage pushes a car photo to Cloudinary and returns its secure URL.
// An empty source is skipped; a nil client means uploads are not configured.
func UploadCarImage(ctx context.Context, cld *cloudinary.Cloudinary, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	if cld == nil {
		return "", fmt.Errorf("image uploads are not configured")
	}

	uploadResult, err := cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: CarImageFolder,
		Tags:   []string{"carhive-app"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload car image: %v", err)
	}
	return uploadResult.SecureURL, nil
}
