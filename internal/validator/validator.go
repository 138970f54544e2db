package validator

import (
	"github.com/go-playground/validator/v10"

	models "github.com/pawhaven/bookingsync/internal"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("valid_date", validateDate)
	v.RegisterValidation("valid_clock", validateClock)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := models.NormalizeDate(fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := models.NormalizeClock(fl.Field().String())
	return err == nil
}
