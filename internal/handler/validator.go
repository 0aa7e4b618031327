package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/property-reservation/internal/booking"
	"github.com/iliyamo/property-reservation/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator and adds the
// reservation_status and reservation_source tags.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("reservation_status", func(fl validator.FieldLevel) bool {
		_, err := model.ParseStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("reservation_source", func(fl validator.FieldLevel) bool {
		_, err := model.ParseSource(fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

// Validate returns a VALIDATION_FAILED error naming every failing field.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return booking.Validationf("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return booking.Validationf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "reservation_status":
		return fmt.Sprintf("%s must be one of pending, confirmed, checked-in, checked-out, cancelled", fe.Field())
	case "reservation_source":
		return fmt.Sprintf("%s must be one of direct, ota, walk-in, phone, other", fe.Field())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
