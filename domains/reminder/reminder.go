package reminder

import (
	"context"
	"time"
)

// RuleKind is one of the fixed lead-time categories. RuleManual is the
// namespace for operator-triggered sends; it never collides with the four
// scheduled kinds.
type RuleKind string

const (
	RuleThreeDays RuleKind = "3_days"
	RuleOneDay    RuleKind = "1_day"
	RuleMorning   RuleKind = "morning"
	RuleOneHour   RuleKind = "1_hour"
	RuleManual    RuleKind = "manual"
)

// ScheduledRules returns the four kinds the poll loop evaluates, in the
// order they are checked.
func ScheduledRules() []RuleKind {
	return []RuleKind{RuleThreeDays, RuleOneDay, RuleMorning, RuleOneHour}
}

// Label renders the kind for log lines ("3 Days", "Manual", ...).
func (r RuleKind) Label() string {
	switch r {
	case RuleThreeDays:
		return "3 Days"
	case RuleOneDay:
		return "1 Day"
	case RuleMorning:
		return "Morning"
	case RuleOneHour:
		return "1 Hour"
	case RuleManual:
		return "Manual"
	}
	return string(r)
}

type ChannelKind string

const (
	ChannelWhatsApp ChannelKind = "whatsapp"
	ChannelEmail    ChannelKind = "email"
)

type DispatchStatus string

const (
	StatusSent    DispatchStatus = "SENT"
	StatusFailed  DispatchStatus = "FAILED"
	StatusLogged  DispatchStatus = "LOGGED"
	StatusError   DispatchStatus = "ERROR"
	StatusInfo    DispatchStatus = "INFO"
	StatusSuccess DispatchStatus = "SUCCESS"
)

// DedupKey identifies one effective delivery. Instant is empty under the
// legacy (id, rule) policy and carries the appointment moment when
// per-schedule dedup is enabled, so a reschedule resets eligibility.
type DedupKey struct {
	AppointmentID int64    `json:"appointment_id"`
	Rule          RuleKind `json:"rule"`
	Instant       string   `json:"instant,omitempty"`
}

// SchedulerSettings is the process-wide reminder configuration. It is
// owned by the scheduler and only replaced through ApplySettings.
type SchedulerSettings struct {
	Enabled            bool   `json:"enabled"`
	RemindThreeDays    bool   `json:"remind_3_days"`
	RemindOneDay       bool   `json:"remind_1_day"`
	RemindMorning      bool   `json:"remind_morning"`
	RemindOneHour      bool   `json:"remind_1_hour"`
	BusinessHoursStart string `json:"business_hours_start"`
	BusinessHoursEnd   string `json:"business_hours_end"`
	CheckInterval      int    `json:"check_interval"` // seconds
	AutoSendWhatsApp   bool   `json:"auto_send_whatsapp"`
	WhatsAppDelay      int    `json:"whatsapp_delay"` // seconds
	AutoSendEmail      bool   `json:"auto_send_email"`
	EmailDelay         int    `json:"email_delay"` // seconds
	DedupPerSchedule   bool   `json:"dedup_per_schedule"`
	ClinicName         string `json:"clinic_name"`
	ClinicAddress      string `json:"clinic_address"`
	ClinicPhone        string `json:"clinic_phone"`
}

// DefaultSettings mirrors the values the engine ships with.
func DefaultSettings() SchedulerSettings {
	return SchedulerSettings{
		Enabled:            true,
		RemindThreeDays:    true,
		RemindOneDay:       true,
		RemindMorning:      true,
		RemindOneHour:      true,
		BusinessHoursStart: "09:00",
		BusinessHoursEnd:   "18:00",
		CheckInterval:      300,
		AutoSendWhatsApp:   true,
		WhatsAppDelay:      3,
		AutoSendEmail:      true,
		EmailDelay:         2,
		ClinicName:         "Modern Clinic System",
		ClinicAddress:      "123 Medical Center Dr, Health City, HC 12345",
		ClinicPhone:        "(555) 123-4567",
	}
}

// RuleEnabled reports whether a scheduled kind is switched on. RuleManual
// is always allowed; it is operator-driven.
func (s SchedulerSettings) RuleEnabled(rule RuleKind) bool {
	switch rule {
	case RuleThreeDays:
		return s.RemindThreeDays
	case RuleOneDay:
		return s.RemindOneDay
	case RuleMorning:
		return s.RemindMorning
	case RuleOneHour:
		return s.RemindOneHour
	case RuleManual:
		return true
	}
	return false
}

// Notifier is the per-channel delivery contract. Transport lives entirely
// behind it.
type Notifier interface {
	Kind() ChannelKind
	Send(ctx context.Context, address, subject, body string) error
}

// ILedger is the durable already-sent set. Implementations persist
// write-through on every MarkSent.
type ILedger interface {
	HasSent(ctx context.Context, key DedupKey) (bool, error)
	MarkSent(ctx context.Context, key DedupKey, at time.Time) error
	SentCount(ctx context.Context) (int, error)
}

// LogEntry is one line of the activity log: a channel dispatch attempt
// or a system event. The identity fields are set on live entries; lines
// reloaded from the backing file carry only the audited columns.
type LogEntry struct {
	ID            string         `json:"id,omitempty"`
	AppointmentID int64          `json:"appointment_id,omitempty"`
	Rule          RuleKind       `json:"rule,omitempty"`
	Channel       ChannelKind    `json:"channel,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Patient       string         `json:"patient"`
	Address       string         `json:"address"`
	Description   string         `json:"description"`
	Status        DispatchStatus `json:"status"`
}

// IActivityLog is the append-only dispatch record consumed by the
// presentation layer.
type IActivityLog interface {
	Append(entry LogEntry)
	Snapshot(limit int) []LogEntry
	Count() int
	Clear() error
}

// EngineStatus is the state surfaced to the control layer.
type EngineStatus struct {
	Running       bool       `json:"running"`
	LastCycleAt   *time.Time `json:"last_cycle_at,omitempty"`
	SentReminders int        `json:"sent_reminders"`
	LogEntries    int        `json:"log_entries"`
}

// IReminderUsecase is the control surface exposed to the presentation
// layer.
type IReminderUsecase interface {
	Start()
	Stop()
	Running() bool
	RunNow(ctx context.Context) (int, error)
	TestSend(ctx context.Context, appointmentID int64) error
	ApplySettings(ctx context.Context, settings SchedulerSettings) error
	ToggleChannel(ctx context.Context, channel ChannelKind, enabled bool) error
	Settings() SchedulerSettings
	Status(ctx context.Context) EngineStatus
	SnapshotLog(limit int) []LogEntry
	ClearLog() error
}
