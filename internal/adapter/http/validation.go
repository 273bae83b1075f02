package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/uzochukwuV/lendcore/internal/domain/asset"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// collateral kind from the closed set
	_ = v.RegisterValidation("assetkind", func(fl validator.FieldLevel) bool {
		return asset.Kind(fl.Field().String()).Valid()
	})
	// payment rail from the closed set
	_ = v.RegisterValidation("payrail", func(fl validator.FieldLevel) bool {
		return asset.PaymentMethod(fl.Field().String()).Valid()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "assetkind":
			out = append(out, FieldError{Field: field, Message: "unknown asset kind"})
		case "payrail":
			out = append(out, FieldError{Field: field, Message: "unknown payment method"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "needs at least " + e.Param() + " entries"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
