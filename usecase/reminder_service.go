package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultInterval = 300 * time.Second
	errorBackoff    = 60 * time.Second
)

// SettingsStore persists SchedulerSettings across restarts.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (reminder.SchedulerSettings, bool, error)
	SaveSettings(ctx context.Context, settings reminder.SchedulerSettings) error
}

// ReminderService owns the poll loop. Exactly one background worker runs
// the loop; manual triggers share the cycle mutex with it, so at most one
// evaluation cycle is in flight at any time.
type ReminderService struct {
	source     appointment.ISource
	ledger     reminder.ILedger
	store      SettingsStore
	log        reminder.IActivityLog
	dispatcher *Dispatcher

	mu        sync.Mutex
	settings  reminder.SchedulerSettings
	running   bool
	stopCh    chan struct{}
	lastCycle *time.Time

	// Serializes evaluation cycles across the timer and manual triggers.
	cycleMu sync.Mutex

	clock func() time.Time
}

func NewReminderService(source appointment.ISource, ledger reminder.ILedger, store SettingsStore, log reminder.IActivityLog, dispatcher *Dispatcher) *ReminderService {
	return &ReminderService{
		source:     source,
		ledger:     ledger,
		store:      store,
		log:        log,
		dispatcher: dispatcher,
		settings:   reminder.DefaultSettings(),
		clock:      time.Now,
	}
}

// LoadPersisted merges previously saved settings over the defaults. A
// load failure keeps the defaults; the engine must come up regardless.
func (s *ReminderService) LoadPersisted(ctx context.Context) {
	stored, ok, err := s.store.LoadSettings(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[SCHEDULER] Failed to load persisted settings, using defaults")
		return
	}
	if ok {
		s.mu.Lock()
		s.settings = stored
		s.mu.Unlock()
	}
}

// Start moves the scheduler to Running. Idempotent.
func (s *ReminderService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	go s.loop(stop)
	logrus.Info("[SCHEDULER] Reminder system started")
	s.log.Append(s.systemEntry("Reminder system started", reminder.StatusSuccess))
}

// Stop signals the loop to exit after its current iteration. An in-flight
// dispatch always completes. Idempotent.
func (s *ReminderService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	logrus.Info("[SCHEDULER] Reminder system stopped")
	s.log.Append(s.systemEntry("Reminder system stopped", reminder.StatusInfo))
}

func (s *ReminderService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ReminderService) loop(stop <-chan struct{}) {
	for {
		interval := time.Duration(s.Settings().CheckInterval) * time.Second
		if interval <= 0 {
			interval = defaultInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if !s.Settings().Enabled {
			continue
		}

		if err := s.runCycle(context.Background()); err != nil {
			logrus.WithError(err).Error("[SCHEDULER] Evaluation cycle failed")
			s.log.Append(s.systemEntry(fmt.Sprintf("Error: %v", err), reminder.StatusError))

			backoff := time.NewTimer(errorBackoff)
			select {
			case <-stop:
				backoff.Stop()
				return
			case <-backoff.C:
			}
		}
	}
}

// runCycle evaluates every appointment against the scheduled rules.
// Per-appointment problems are skipped; only loop-level failures (the
// snapshot itself) propagate and trigger the backoff.
func (s *ReminderService) runCycle(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	settings := s.Settings()
	if !WithinBusinessHours(s.clock(), settings.BusinessHoursStart, settings.BusinessHoursEnd) {
		logrus.Debug("[SCHEDULER] Outside business hours, cycle skipped")
		return nil
	}

	appointments, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("appointment snapshot failed: %w", err)
	}

	for _, apt := range appointments {
		if !apt.RemindersEnabled && !apt.EmailEnabled {
			continue
		}
		if _, ok := apt.Instant(); !ok {
			logrus.Debugf("[SCHEDULER] Skipping appointment %d: unparsable date %q", apt.ID, apt.Date)
			continue
		}

		for _, rule := range reminder.ScheduledRules() {
			if !settings.RuleEnabled(rule) {
				continue
			}
			if !RuleDue(s.clock(), apt, rule) {
				continue
			}

			key := s.dedupKey(apt, rule, settings)
			sent, err := s.ledger.HasSent(ctx, key)
			if err != nil {
				logrus.WithError(err).Errorf("[SCHEDULER] Ledger lookup failed for appointment %d", apt.ID)
				continue
			}
			if sent {
				continue
			}

			s.dispatcher.Dispatch(ctx, apt, rule, key, settings)
		}
	}

	now := s.clock()
	s.mu.Lock()
	s.lastCycle = &now
	s.mu.Unlock()
	return nil
}

// RunNow dispatches manual reminders to today's appointments,
// synchronously. It shares the cycle mutex with the poll loop and still
// respects the business-hours gate and the ledger; manual sends live in
// their own dedup namespace, keyed per calendar day.
func (s *ReminderService) RunNow(ctx context.Context) (int, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	settings := s.Settings()
	now := s.clock()
	if !WithinBusinessHours(now, settings.BusinessHoursStart, settings.BusinessHoursEnd) {
		return 0, pkgError.ValidationError("outside business hours")
	}

	appointments, err := s.source.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("appointment snapshot failed: %w", err)
	}

	sent := 0
	for _, apt := range appointments {
		if !apt.IsOn(now) {
			continue
		}
		if !apt.RemindersEnabled && !apt.EmailEnabled {
			continue
		}

		key := reminder.DedupKey{
			AppointmentID: apt.ID,
			Rule:          reminder.RuleManual,
			Instant:       now.Format(appointment.DateLayout),
		}
		already, err := s.ledger.HasSent(ctx, key)
		if err != nil || already {
			continue
		}

		if s.dispatcher.Dispatch(ctx, apt, reminder.RuleManual, key, settings) {
			sent++
		}
	}

	s.log.Append(s.systemEntry(fmt.Sprintf("Manual send completed: %d reminder(s) dispatched", sent), reminder.StatusInfo))
	return sent, nil
}

// TestSend fires a one-off manual reminder for a single appointment,
// bypassing the business-hours gate and leaving no dedup mark. Explicit
// operator action.
func (s *ReminderService) TestSend(ctx context.Context, appointmentID int64) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	appointments, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("appointment snapshot failed: %w", err)
	}

	for _, apt := range appointments {
		if apt.ID != appointmentID {
			continue
		}
		chatOK, emailOK := s.dispatcher.Attempt(ctx, apt, reminder.RuleManual, s.Settings())
		if !chatOK && !emailOK {
			return pkgError.NotifierError("test reminder failed on every channel")
		}
		return nil
	}
	return pkgError.NotFoundError(fmt.Sprintf("appointment %d not found", appointmentID))
}

// ApplySettings replaces the owned settings value and persists it. The
// change takes effect on the next cycle; a running one is never
// preempted.
func (s *ReminderService) ApplySettings(ctx context.Context, settings reminder.SchedulerSettings) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	return s.applySettings(ctx, settings)
}

// applySettings requires cycleMu.
func (s *ReminderService) applySettings(ctx context.Context, settings reminder.SchedulerSettings) error {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to persist settings")
		s.log.Append(s.systemEntry(fmt.Sprintf("Settings persistence failed: %v", err), reminder.StatusError))
		return err
	}

	s.log.Append(s.systemEntry("Settings updated", reminder.StatusInfo))
	return nil
}

// ToggleChannel flips a channel's auto-send flag. The read-modify-write
// holds the cycle lock so concurrent toggles serialize instead of
// overwriting each other's flag.
func (s *ReminderService) ToggleChannel(ctx context.Context, channel reminder.ChannelKind, enabled bool) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	settings := s.Settings()
	switch channel {
	case reminder.ChannelWhatsApp:
		settings.AutoSendWhatsApp = enabled
	case reminder.ChannelEmail:
		settings.AutoSendEmail = enabled
	default:
		return pkgError.ValidationError(fmt.Sprintf("unknown channel %q", channel))
	}
	return s.applySettings(ctx, settings)
}

// Settings returns a copy of the current settings.
func (s *ReminderService) Settings() reminder.SchedulerSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *ReminderService) Status(ctx context.Context) reminder.EngineStatus {
	s.mu.Lock()
	running := s.running
	last := s.lastCycle
	s.mu.Unlock()

	count, err := s.ledger.SentCount(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[SCHEDULER] Failed to count sent reminders")
	}

	return reminder.EngineStatus{
		Running:       running,
		LastCycleAt:   last,
		SentReminders: count,
		LogEntries:    s.log.Count(),
	}
}

func (s *ReminderService) SnapshotLog(limit int) []reminder.LogEntry {
	return s.log.Snapshot(limit)
}

func (s *ReminderService) ClearLog() error {
	if err := s.log.Clear(); err != nil {
		return err
	}
	s.log.Append(s.systemEntry("Activity log cleared", reminder.StatusInfo))
	return nil
}

func (s *ReminderService) dedupKey(apt appointment.Appointment, rule reminder.RuleKind, settings reminder.SchedulerSettings) reminder.DedupKey {
	key := reminder.DedupKey{AppointmentID: apt.ID, Rule: rule}
	if settings.DedupPerSchedule {
		key.Instant = apt.Date + " " + displayTime(apt)
	}
	return key
}

func (s *ReminderService) systemEntry(description string, status reminder.DispatchStatus) reminder.LogEntry {
	return reminder.LogEntry{
		ID:          uuid.NewString(),
		Timestamp:   s.clock(),
		Patient:     "System",
		Description: description,
		Status:      status,
	}
}
