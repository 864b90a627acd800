package validations

import (
	"context"
	"regexp"

	"github.com/AzielCF/az-remind/domains/appointment"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	emailShape       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func ValidateAppointment(ctx context.Context, request appointment.Appointment) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PatientName, validation.Required),
		validation.Field(&request.Procedure, validation.Required),
		validation.Field(&request.PhoneNumber, validation.Required),
		validation.Field(&request.Date, validation.Required, validation.Date(appointment.DateLayout)),
		validation.Field(&request.Time, validation.Match(timeOfDayPattern)),
		validation.Field(&request.Email, validation.Match(emailShape)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
