package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"dormwash/pkg/logger"
	"dormwash/pkg/model"
)

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

type MachineValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMachineValidator(log *logger.Logger) *MachineValidator {
	return &MachineValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *MachineValidator) ValidateCreate(create *model.MachineCreate) error {
	if err := v.validate.Struct(create); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *MachineValidator) ValidateUpdate(update *model.MachineUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateMachine checks the merged document before it is written. The
// usage pair must be present exactly when the machine is in use.
func (v *MachineValidator) ValidateMachine(machine *model.Machine) error {
	if machine.InUse() {
		if machine.CurrentUser == nil || machine.TimeRemaining == nil {
			return ValidationErrors{
				ValidationError{
					Field:   "Status",
					Message: "status in_use requires both current_user and time_remaining",
				},
			}
		}
		return nil
	}

	if machine.CurrentUser != nil || machine.TimeRemaining != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "Status",
				Message: fmt.Sprintf("status %s forbids current_user and time_remaining", machine.Status),
			},
		}
	}

	return nil
}

func (v *MachineValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
