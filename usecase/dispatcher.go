package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
	"github.com/AzielCF/az-remind/pkg/phone"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatcher runs the per-channel send attempts for one due
// (appointment, rule) pair. Channels are independent: a failure on one
// never blocks the other, and the pair is marked sent when at least one
// channel got through. Post-send delays are synchronous so the poll loop
// bounds the outbound rate by construction.
type Dispatcher struct {
	chat        reminder.Notifier
	mail        reminder.Notifier
	ledger      reminder.ILedger
	log         reminder.IActivityLog
	countryCode string

	sleep func(time.Duration)
	clock func() time.Time
}

func NewDispatcher(chat, mail reminder.Notifier, ledger reminder.ILedger, log reminder.IActivityLog, countryCode string) *Dispatcher {
	return &Dispatcher{
		chat:        chat,
		mail:        mail,
		ledger:      ledger,
		log:         log,
		countryCode: countryCode,
		sleep:       time.Sleep,
		clock:       time.Now,
	}
}

// Attempt runs the channel sends without touching the ledger and reports
// each channel's outcome. Used directly for operator test sends.
func (d *Dispatcher) Attempt(ctx context.Context, apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) (chatOK, emailOK bool) {
	if apt.RemindersEnabled {
		chatOK = d.attemptChat(ctx, apt, rule, settings)
	}
	if apt.EmailEnabled && apt.Email != "" {
		emailOK = d.attemptEmail(ctx, apt, rule, settings)
	}
	return chatOK, emailOK
}

// Dispatch attempts every enabled channel and returns whether the pair
// was marked sent in the ledger.
func (d *Dispatcher) Dispatch(ctx context.Context, apt appointment.Appointment, rule reminder.RuleKind, key reminder.DedupKey, settings reminder.SchedulerSettings) bool {
	chatOK, emailOK := d.Attempt(ctx, apt, rule, settings)
	if !chatOK && !emailOK {
		return false
	}

	if err := d.ledger.MarkSent(ctx, key, d.clock()); err != nil {
		// Observable but non-fatal: a duplicate after restart beats a
		// crashed scheduler. Not a channel outcome, so no channel is
		// attributed.
		logrus.WithError(err).Errorf("[DISPATCH] Failed to persist dedup mark for appointment %d rule %s", apt.ID, rule)
		d.record(apt.ID, rule, "", apt.PatientName, "",
			fmt.Sprintf("Ledger write failed for %s reminder: %v", rule.Label(), err), reminder.StatusError)
	}
	return true
}

func (d *Dispatcher) attemptChat(ctx context.Context, apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) bool {
	address, ok := phone.Normalize(apt.PhoneNumber, d.countryCode)
	if !ok {
		d.record(apt.ID, rule, reminder.ChannelWhatsApp, apt.PatientName, apt.PhoneNumber,
			fmt.Sprintf("Invalid phone number for %s reminder", rule.Label()), reminder.StatusError)
		return false
	}

	if !settings.AutoSendWhatsApp {
		d.record(apt.ID, rule, reminder.ChannelWhatsApp, apt.PatientName, address,
			fmt.Sprintf("%s reminder (auto-send disabled)", rule.Label()), reminder.StatusLogged)
		return true
	}

	if d.chat == nil {
		d.record(apt.ID, rule, reminder.ChannelWhatsApp, apt.PatientName, address,
			fmt.Sprintf("Chat channel unavailable for %s reminder", rule.Label()), reminder.StatusFailed)
		return false
	}

	body := ChatMessage(apt, rule, settings)
	if err := d.chat.Send(ctx, address, "", body); err != nil {
		d.record(apt.ID, rule, reminder.ChannelWhatsApp, apt.PatientName, address,
			fmt.Sprintf("Failed to send %s reminder: %v", rule.Label(), err), reminder.StatusFailed)
		return false
	}

	d.record(apt.ID, rule, reminder.ChannelWhatsApp, apt.PatientName, address,
		fmt.Sprintf("%s reminder sent via WhatsApp", rule.Label()), reminder.StatusSent)
	d.sleep(time.Duration(settings.WhatsAppDelay) * time.Second)
	return true
}

func (d *Dispatcher) attemptEmail(ctx context.Context, apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) bool {
	// A malformed address excludes the channel for this attempt without
	// blocking the chat channel.
	if !phone.ValidEmail(apt.Email) {
		return false
	}

	if !settings.AutoSendEmail {
		d.record(apt.ID, rule, reminder.ChannelEmail, apt.PatientName, apt.Email,
			fmt.Sprintf("%s email reminder (auto-send disabled)", rule.Label()), reminder.StatusLogged)
		return true
	}

	if d.mail == nil {
		d.record(apt.ID, rule, reminder.ChannelEmail, apt.PatientName, apt.Email,
			fmt.Sprintf("Email channel unavailable for %s reminder", rule.Label()), reminder.StatusFailed)
		return false
	}

	subject := EmailSubject(apt, rule, settings)
	body := EmailBody(apt, rule, settings)
	if err := d.mail.Send(ctx, apt.Email, subject, body); err != nil {
		d.record(apt.ID, rule, reminder.ChannelEmail, apt.PatientName, apt.Email,
			fmt.Sprintf("Error sending %s email: %v", rule.Label(), err), reminder.StatusFailed)
		return false
	}

	d.record(apt.ID, rule, reminder.ChannelEmail, apt.PatientName, apt.Email,
		fmt.Sprintf("%s email reminder sent", rule.Label()), reminder.StatusSent)
	d.sleep(time.Duration(settings.EmailDelay) * time.Second)
	return true
}

func (d *Dispatcher) record(aptID int64, rule reminder.RuleKind, channel reminder.ChannelKind, patient, address, description string, status reminder.DispatchStatus) {
	d.log.Append(reminder.LogEntry{
		ID:            uuid.NewString(),
		AppointmentID: aptID,
		Rule:          rule,
		Channel:       channel,
		Timestamp:     d.clock(),
		Patient:       patient,
		Address:       address,
		Description:   description,
		Status:        status,
	})
}
