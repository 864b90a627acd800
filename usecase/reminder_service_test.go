package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
)

type serviceFixture struct {
	service *ReminderService
	source  *staticSource
	chat    *fakeNotifier
	mail    *fakeNotifier
	ledger  *memLedger
	store   *memStore
	log     *memLog
}

func newServiceFixture(at time.Time, appointments ...appointment.Appointment) *serviceFixture {
	f := &serviceFixture{
		source: &staticSource{appointments: appointments},
		chat:   &fakeNotifier{kind: reminder.ChannelWhatsApp},
		mail:   &fakeNotifier{kind: reminder.ChannelEmail},
		ledger: newMemLedger(),
		store:  &memStore{},
		log:    &memLog{},
	}
	dispatcher := newTestDispatcher(f.chat, f.mail, f.ledger, f.log, at)
	f.service = NewReminderService(f.source, f.ledger, f.store, f.log, dispatcher)
	f.service.clock = func() time.Time { return at }
	return f
}

func TestRunCycleDispatchesDueReminderExactlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)

	apt := aptAt(now.Add(24*time.Hour + time.Minute))
	apt.RemindersEnabled = true
	apt.PhoneNumber = "+1 (555) 123-4567"

	f := newServiceFixture(now, apt)
	ctx := context.Background()

	if err := f.service.runCycle(ctx); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	if len(f.chat.sent) != 1 {
		t.Fatalf("chat sends = %d, want 1", len(f.chat.sent))
	}
	if len(f.mail.sent) != 0 {
		t.Errorf("mail sends = %d, want 0 with email disabled", len(f.mail.sent))
	}
	key := reminder.DedupKey{AppointmentID: apt.ID, Rule: reminder.RuleOneDay}
	if ok, _ := f.ledger.HasSent(ctx, key); !ok {
		t.Error("ledger missing (id, 1_day) after dispatch")
	}
	attempts := f.log.attempts()
	if len(attempts) != 1 || attempts[0].Status != reminder.StatusSent {
		t.Errorf("log = %+v, want one SENT entry", attempts)
	}

	// A second cycle finds the mark and sends nothing.
	if err := f.service.runCycle(ctx); err != nil {
		t.Fatalf("second runCycle: %v", err)
	}
	if len(f.chat.sent) != 1 {
		t.Errorf("chat sends after second cycle = %d, want still 1", len(f.chat.sent))
	}

	status := f.service.Status(ctx)
	if status.LastCycleAt == nil || !status.LastCycleAt.Equal(now) {
		t.Errorf("LastCycleAt = %v, want %v", status.LastCycleAt, now)
	}
	if status.SentReminders != 1 {
		t.Errorf("SentReminders = %d, want 1", status.SentReminders)
	}
}

func TestRunCycleSkipsOutsideBusinessHours(t *testing.T) {
	now := time.Date(2026, 3, 31, 7, 0, 0, 0, time.Local)

	apt := aptAt(now.Add(24 * time.Hour))
	apt.RemindersEnabled = true
	apt.PhoneNumber = "5551234567"

	f := newServiceFixture(now, apt)
	if err := f.service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if len(f.chat.sent) != 0 {
		t.Errorf("chat sends = %d, want 0 before opening", len(f.chat.sent))
	}
}

func TestRunCycleSkipsFullyDisabledAppointments(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)

	apt := aptAt(now.Add(24 * time.Hour))
	apt.RemindersEnabled = false
	apt.EmailEnabled = false
	apt.PhoneNumber = "5551234567"

	f := newServiceFixture(now, apt)
	if err := f.service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if got := len(f.log.attempts()); got != 0 {
		t.Errorf("attempts = %d, want 0 for a disabled appointment", got)
	}
}

func TestRunCyclePropagatesSnapshotFailure(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)
	f.source.err = errors.New("database locked")

	if err := f.service.runCycle(context.Background()); err == nil {
		t.Fatal("runCycle swallowed the snapshot failure")
	}
}

func TestRunNowUsesManualNamespacePerDay(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)

	today := aptAt(now.Add(5 * time.Hour))
	today.RemindersEnabled = true
	today.PhoneNumber = "5551234567"

	tomorrow := aptAt(now.Add(26 * time.Hour))
	tomorrow.ID = 2
	tomorrow.RemindersEnabled = true
	tomorrow.PhoneNumber = "5559876543"

	f := newServiceFixture(now, today, tomorrow)
	ctx := context.Background()

	sent, err := f.service.RunNow(ctx)
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if sent != 1 {
		t.Fatalf("RunNow sent = %d, want 1 (today only)", sent)
	}

	key := reminder.DedupKey{
		AppointmentID: today.ID,
		Rule:          reminder.RuleManual,
		Instant:       now.Format(appointment.DateLayout),
	}
	if ok, _ := f.ledger.HasSent(ctx, key); !ok {
		t.Error("manual mark missing for today's appointment")
	}

	// Same day again: the manual mark holds.
	sent, err = f.service.RunNow(ctx)
	if err != nil {
		t.Fatalf("second RunNow: %v", err)
	}
	if sent != 0 {
		t.Errorf("second RunNow sent = %d, want 0", sent)
	}
}

func TestRunNowRejectedOutsideBusinessHours(t *testing.T) {
	now := time.Date(2026, 3, 31, 20, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	_, err := f.service.RunNow(context.Background())
	if _, ok := err.(pkgError.ValidationError); !ok {
		t.Fatalf("RunNow error = %v, want ValidationError", err)
	}
}

func TestTestSendBypassesGateAndLeavesNoMark(t *testing.T) {
	now := time.Date(2026, 3, 31, 22, 0, 0, 0, time.Local) // well past closing

	apt := aptAt(now.Add(48 * time.Hour))
	apt.RemindersEnabled = true
	apt.PhoneNumber = "5551234567"

	f := newServiceFixture(now, apt)
	ctx := context.Background()

	if err := f.service.TestSend(ctx, apt.ID); err != nil {
		t.Fatalf("TestSend: %v", err)
	}
	if len(f.chat.sent) != 1 {
		t.Errorf("chat sends = %d, want 1", len(f.chat.sent))
	}
	if count, _ := f.ledger.SentCount(ctx); count != 0 {
		t.Errorf("ledger entries = %d, want 0 after a test send", count)
	}
}

func TestTestSendUnknownAppointment(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	err := f.service.TestSend(context.Background(), 99)
	if _, ok := err.(pkgError.NotFoundError); !ok {
		t.Fatalf("TestSend error = %v, want NotFoundError", err)
	}
}

func TestTestSendReportsTotalFailure(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)

	apt := aptAt(now.Add(48 * time.Hour))
	apt.RemindersEnabled = true
	apt.PhoneNumber = "5551234567"

	f := newServiceFixture(now, apt)
	f.chat.fail = true

	err := f.service.TestSend(context.Background(), apt.ID)
	if _, ok := err.(pkgError.NotifierError); !ok {
		t.Fatalf("TestSend error = %v, want NotifierError", err)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	f.service.Start()
	f.service.Start()
	if !f.service.Running() {
		t.Fatal("service not running after Start")
	}

	f.service.Stop()
	f.service.Stop()
	if f.service.Running() {
		t.Fatal("service still running after Stop")
	}
}

func TestApplySettingsPersists(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	settings := reminder.DefaultSettings()
	settings.CheckInterval = 60
	settings.RemindMorning = false

	if err := f.service.ApplySettings(context.Background(), settings); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if got := f.service.Settings(); got.CheckInterval != 60 || got.RemindMorning {
		t.Errorf("Settings() = %+v, want the applied value", got)
	}
	if f.store.saved == nil || f.store.saved.CheckInterval != 60 {
		t.Error("settings were not written through to the store")
	}
}

func TestLoadPersistedOverridesDefaults(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	stored := reminder.DefaultSettings()
	stored.BusinessHoursStart = "08:00"
	f.store.saved = &stored

	f.service.LoadPersisted(context.Background())
	if got := f.service.Settings(); got.BusinessHoursStart != "08:00" {
		t.Errorf("BusinessHoursStart = %q, want the persisted value", got.BusinessHoursStart)
	}
}

func TestToggleChannel(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)
	ctx := context.Background()

	if err := f.service.ToggleChannel(ctx, reminder.ChannelWhatsApp, false); err != nil {
		t.Fatalf("ToggleChannel: %v", err)
	}
	if f.service.Settings().AutoSendWhatsApp {
		t.Error("AutoSendWhatsApp still on after toggle")
	}
	if f.service.Settings().AutoSendEmail != true {
		t.Error("email flag changed by a whatsapp toggle")
	}

	if err := f.service.ToggleChannel(ctx, "pigeon", true); err == nil {
		t.Error("unknown channel accepted")
	}
}

func TestConcurrentChannelTogglesBothApply(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := f.service.ToggleChannel(ctx, reminder.ChannelWhatsApp, false); err != nil {
			t.Errorf("whatsapp toggle: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := f.service.ToggleChannel(ctx, reminder.ChannelEmail, false); err != nil {
			t.Errorf("email toggle: %v", err)
		}
	}()
	wg.Wait()

	got := f.service.Settings()
	if got.AutoSendWhatsApp || got.AutoSendEmail {
		t.Errorf("settings after concurrent toggles = whatsapp %v email %v, want both off",
			got.AutoSendWhatsApp, got.AutoSendEmail)
	}
	if f.store.saved == nil || f.store.saved.AutoSendWhatsApp || f.store.saved.AutoSendEmail {
		t.Error("persisted settings lost one of the toggles")
	}
}

func TestDedupKeyWidensPerSchedule(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)

	apt := aptAt(now.Add(24 * time.Hour))
	settings := reminder.DefaultSettings()

	legacy := f.service.dedupKey(apt, reminder.RuleOneDay, settings)
	if legacy.Instant != "" {
		t.Errorf("legacy key carries instant %q", legacy.Instant)
	}

	settings.DedupPerSchedule = true
	widened := f.service.dedupKey(apt, reminder.RuleOneDay, settings)
	if widened.Instant == "" {
		t.Error("per-schedule key missing the appointment instant")
	}

	rescheduled := apt
	rescheduled.Time = "16:45"
	moved := f.service.dedupKey(rescheduled, reminder.RuleOneDay, settings)
	if moved == widened {
		t.Error("reschedule did not change the per-schedule key")
	}
}

func TestClearLogLeavesAuditEntry(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newServiceFixture(now)
	f.log.Append(reminder.LogEntry{Patient: "Jane Roe", Description: "old line"})

	if err := f.service.ClearLog(); err != nil {
		t.Fatalf("ClearLog: %v", err)
	}
	entries := f.service.SnapshotLog(0)
	if len(entries) != 1 || entries[0].Description != "Activity log cleared" {
		t.Errorf("log after clear = %+v, want only the audit line", entries)
	}
}
