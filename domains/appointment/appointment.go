package appointment

import (
	"context"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultTime = "09:00"
	// Fallback when the stored time-of-day does not parse.
	fallbackTime = "12:00"
)

// Appointment is the read-only snapshot the scheduler works from. The
// upstream store owns the full CRUD lifecycle.
type Appointment struct {
	ID               int64     `json:"id"`
	PatientName      string    `json:"patient_name"`
	Procedure        string    `json:"procedure"`
	PhoneNumber      string    `json:"phone_number"`
	SecondaryPhone   string    `json:"secondary_phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	Date             string    `json:"appointment_date"` // YYYY-MM-DD
	Time             string    `json:"appointment_time"` // HH:MM
	RemindersEnabled bool      `json:"enable_reminders"`
	EmailEnabled     bool      `json:"enable_email"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Instant resolves the appointment moment in local time. A missing
// time-of-day defaults to 09:00, an unparsable one to midday. Returns
// false when the date itself does not parse; callers treat that as
// never-due.
func (a Appointment) Instant() (time.Time, bool) {
	day, err := time.ParseInLocation(DateLayout, a.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}

	tod := a.Time
	if tod == "" {
		tod = DefaultTime
	}
	clock, err := time.Parse(TimeLayout, tod)
	if err != nil {
		clock, _ = time.Parse(TimeLayout, fallbackTime)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), true
}

// IsOn reports whether the appointment falls on the given calendar day.
func (a Appointment) IsOn(day time.Time) bool {
	return a.Date == day.Format(DateLayout)
}

// ISource supplies appointment snapshots to the scheduler. Snapshot must
// return a fully materialized copy, never a live view.
type ISource interface {
	Snapshot(ctx context.Context) ([]Appointment, error)
}

// IAppointmentUsecase is the CRUD-lite surface the presentation layer uses
// to push appointment records in.
type IAppointmentUsecase interface {
	Save(ctx context.Context, apt Appointment) (Appointment, error)
	Get(ctx context.Context, id int64) (Appointment, error)
	List(ctx context.Context) ([]Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// IRepository is implemented by the persistence layer.
type IRepository interface {
	IAppointmentUsecase
	ISource
}
