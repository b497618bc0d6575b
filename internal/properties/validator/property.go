package validator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	propertieserrors "github.com/Lala-Rental/lala-rental-backend/internal/properties/errors"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/go-playground/validator/v10"
)

// imageTypes maps each accepted extension to the content type it is stored with.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type PropertyValidator struct {
	validate     *validator.Validate
	maxImageSize int64
	logger       *logger.Logger
}

func NewPropertyValidator(log *logger.Logger, maxImageSize int64) *PropertyValidator {
	log.Info("Property validator initialized successfully", "max_image_size", maxImageSize)
	return &PropertyValidator{
		validate:     validator.New(),
		maxImageSize: maxImageSize,
		logger:       log,
	}
}

func (v *PropertyValidator) Validate(property *model.Property) error {
	return v.structErrors(v.validate.Struct(property))
}

func (v *PropertyValidator) ValidateUpdate(update *model.PropertyUpdate) error {
	if update.Title == nil && update.Description == nil && update.Price == nil && update.Location == nil {
		return ValidationErrors{{Field: "body", Message: "at least one field must be provided"}}
	}
	return v.structErrors(v.validate.Struct(update))
}

// ValidateImage checks an upload by extension, sniffed content type and size,
// and returns the content type to store it with.
func (v *PropertyValidator) ValidateImage(filename, sniffedType string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: png, jpeg, jpg, svg, gif)", propertieserrors.ErrUnsupportedImage, filename)
	}
	// SVG is XML and never sniffs as image/*.
	if ext != ".svg" && !strings.HasPrefix(sniffedType, "image/") {
		return "", fmt.Errorf("%w: %q looks like %s", propertieserrors.ErrUnsupportedImage, filename, sniffedType)
	}
	if size > v.maxImageSize {
		return "", fmt.Errorf("%w: %q is %d bytes, limit %d", propertieserrors.ErrImageTooLarge, filename, size, v.maxImageSize)
	}
	return contentType, nil
}

func (v *PropertyValidator) structErrors(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: message})
	}
	return out
}
