package validator

import (
	"time"

	"go-invoice-verify/pkg/timefmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
}

var validate = validator.New()

func init() {
	// uuid.UUID fields bind to the zero value when absent, which plain
	// "required" cannot distinguish from a real nil UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// ddmmyyyy checks the canonical DD-MM-YYYY form used on expiry and
	// mfg date fields
	validate.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(timefmt.DateLayout, fl.Field().String())
		return err == nil
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	if err := validate.Struct(data); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, &ErrorResponse{
				FailedField: fieldErr.StructNamespace(),
				Tag:         fieldErr.Tag(),
			})
		}
	}
	return errors
}
