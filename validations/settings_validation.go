package validations

import (
	"context"

	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateSettings(ctx context.Context, request reminder.SchedulerSettings) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.BusinessHoursStart, validation.Required, validation.Match(timeOfDayPattern)),
		validation.Field(&request.BusinessHoursEnd, validation.Required, validation.Match(timeOfDayPattern)),
		validation.Field(&request.CheckInterval, validation.Required, validation.Min(1)),
		validation.Field(&request.WhatsAppDelay, validation.Min(0)),
		validation.Field(&request.EmailDelay, validation.Min(0)),
		validation.Field(&request.ClinicName, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
