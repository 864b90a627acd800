package validations

import (
	"context"
	"testing"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/stretchr/testify/assert"
)

func validRequest() appointment.Appointment {
	return appointment.Appointment{
		PatientName: "Jane Roe",
		Procedure:   "Cleaning",
		PhoneNumber: "5551234567",
		Date:        "2026-04-01",
		Time:        "10:30",
		Email:       "jane@example.com",
	}
}

func TestValidateAppointment(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateAppointment(ctx, validRequest()))

	missingName := validRequest()
	missingName.PatientName = ""
	assert.Error(t, ValidateAppointment(ctx, missingName))

	missingPhone := validRequest()
	missingPhone.PhoneNumber = ""
	assert.Error(t, ValidateAppointment(ctx, missingPhone))

	badDate := validRequest()
	badDate.Date = "01/04/2026"
	assert.Error(t, ValidateAppointment(ctx, badDate))

	badTime := validRequest()
	badTime.Time = "25:00"
	assert.Error(t, ValidateAppointment(ctx, badTime))

	badEmail := validRequest()
	badEmail.Email = "not-an-address"
	assert.Error(t, ValidateAppointment(ctx, badEmail))

	optionalBlank := validRequest()
	optionalBlank.Time = ""
	optionalBlank.Email = ""
	assert.NoError(t, ValidateAppointment(ctx, optionalBlank))
}
