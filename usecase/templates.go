package usecase

import (
	"fmt"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
)

// ChatMessage renders the chat-channel body for a rule. The mapping is
// exhaustive over the known kinds; RuleManual gets the generic body.
func ChatMessage(apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) string {
	name := apt.PatientName
	procedure := apt.Procedure
	date := apt.Date
	tod := displayTime(apt)

	switch rule {
	case reminder.RuleThreeDays:
		return fmt.Sprintf("Hi %s! This is a friendly reminder about your %s appointment in 3 days on %s at %s. Please confirm your attendance by replying to this message. Thank you!",
			name, procedure, date, tod)
	case reminder.RuleOneDay:
		return fmt.Sprintf("Hello %s! Your %s appointment is tomorrow %s at %s. Please arrive 15 minutes early for check-in. Looking forward to seeing you!",
			name, procedure, date, tod)
	case reminder.RuleMorning:
		return fmt.Sprintf("Good morning %s! You have a %s appointment TODAY at %s. Please arrive 15 minutes early. Our clinic address: %s. See you soon!",
			name, procedure, tod, settings.ClinicAddress)
	case reminder.RuleOneHour:
		return fmt.Sprintf("Hi %s! Your %s appointment is in 1 HOUR at %s. Please make your way to our clinic now. Don't forget to bring your ID and insurance card. Thank you!",
			name, procedure, tod)
	case reminder.RuleManual:
		return fmt.Sprintf("Hi %s, reminder about your %s appointment on %s at %s.", name, procedure, date, tod)
	}
	return fmt.Sprintf("Hi %s, reminder about your %s appointment.", name, procedure)
}

// EmailSubject renders the email subject line for a rule.
func EmailSubject(apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) string {
	name := apt.PatientName
	clinic := settings.ClinicName

	switch rule {
	case reminder.RuleThreeDays:
		return fmt.Sprintf("Appointment Reminder - %s | %s", name, clinic)
	case reminder.RuleOneDay:
		return fmt.Sprintf("Tomorrow's Appointment - %s | %s", name, clinic)
	case reminder.RuleMorning:
		return fmt.Sprintf("Today's Appointment - %s | %s", name, clinic)
	case reminder.RuleOneHour:
		return fmt.Sprintf("Appointment in 1 Hour - %s | %s", name, clinic)
	case reminder.RuleManual:
		return fmt.Sprintf("Appointment Reminder - %s | %s", name, clinic)
	}
	return fmt.Sprintf("Appointment Reminder - %s | %s", name, clinic)
}

// EmailBody renders the email body for a rule.
func EmailBody(apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) string {
	name := apt.PatientName
	procedure := apt.Procedure
	date := apt.Date
	tod := displayTime(apt)

	switch rule {
	case reminder.RuleThreeDays:
		return fmt.Sprintf(`Dear %s,

This is a friendly reminder about your upcoming appointment:

Procedure: %s
Date: %s
Time: %s
Location: %s

Your appointment is in 3 days. Please mark your calendar and prepare any necessary documents.

If you need to reschedule or have any questions, please contact us at %s.

Best regards,
%s Team
`, name, procedure, date, tod, settings.ClinicAddress, settings.ClinicPhone, settings.ClinicName)

	case reminder.RuleOneDay:
		return fmt.Sprintf(`Dear %s,

Your appointment is tomorrow! Here are the details:

Procedure: %s
Date: %s (TOMORROW)
Time: %s
Location: %s

Please arrive 15 minutes early for check-in. Don't forget to bring:
- Photo ID
- Insurance card
- Any relevant medical records

Contact us at %s if you have any questions.

Best regards,
%s Team
`, name, procedure, date, tod, settings.ClinicAddress, settings.ClinicPhone, settings.ClinicName)

	case reminder.RuleMorning:
		return fmt.Sprintf(`Dear %s,

Good morning! You have an appointment TODAY:

Procedure: %s
Date: TODAY (%s)
Time: %s
Location: %s

Please arrive 15 minutes early. Our team is ready to assist you.

If you're running late or have any issues, please call us immediately at %s.

Best regards,
%s Team
`, name, procedure, date, tod, settings.ClinicAddress, settings.ClinicPhone, settings.ClinicName)

	case reminder.RuleOneHour:
		return fmt.Sprintf(`Dear %s,

Your appointment is in 1 HOUR:

Procedure: %s
Time: %s (in 1 hour)
Location: %s

Please make your way to our clinic now. Parking is available on-site.

If you're running late, please call us at %s.

Best regards,
%s Team
`, name, procedure, tod, settings.ClinicAddress, settings.ClinicPhone, settings.ClinicName)
	}

	return fmt.Sprintf(`Dear %s,

This is a reminder about your appointment:

Procedure: %s
Date: %s
Time: %s
Location: %s

Please contact us at %s if you have any questions.

Best regards,
%s Team
`, name, procedure, date, tod, settings.ClinicAddress, settings.ClinicPhone, settings.ClinicName)
}

func displayTime(apt appointment.Appointment) string {
	if apt.Time == "" {
		return appointment.DefaultTime
	}
	return apt.Time
}
