package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
)

const settingsKey = "scheduler_settings"

// SQLiteRepository backs the appointment store, the dedup ledger and the
// settings store with a single sqlite file. The ledger is mirrored in
// memory so HasSent never touches the disk on the hot path; every
// MarkSent writes through before returning.
type SQLiteRepository struct {
	db *sql.DB

	mu   sync.RWMutex
	sent map[string]time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, sent: make(map[string]time.Time)}
}

func (r *SQLiteRepository) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_name TEXT NOT NULL,
			procedure TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			secondary_phone TEXT DEFAULT '',
			email TEXT DEFAULT '',
			appointment_date TEXT NOT NULL,
			appointment_time TEXT DEFAULT '09:00',
			enable_reminders BOOLEAN DEFAULT 1,
			enable_email BOOLEAN DEFAULT 1,
			notes TEXT DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sent_reminders (
			appointment_id INTEGER NOT NULL,
			rule TEXT NOT NULL,
			instant TEXT NOT NULL DEFAULT '',
			sent_at DATETIME NOT NULL,
			PRIMARY KEY (appointment_id, rule, instant)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sent_reminders_appointment ON sent_reminders(appointment_id);`,
		`CREATE TABLE IF NOT EXISTS engine_settings (key TEXT PRIMARY KEY, value TEXT);`,
	}

	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}

	return r.loadLedger(ctx)
}

// --- Appointments ---

func (r *SQLiteRepository) Save(ctx context.Context, apt appointment.Appointment) (appointment.Appointment, error) {
	if apt.Time == "" {
		apt.Time = appointment.DefaultTime
	}
	if apt.CreatedAt.IsZero() {
		apt.CreatedAt = time.Now()
	}

	if apt.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO appointments (patient_name, procedure, phone_number, secondary_phone, email,
				appointment_date, appointment_time, enable_reminders, enable_email, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			apt.PatientName, apt.Procedure, apt.PhoneNumber, apt.SecondaryPhone, apt.Email,
			apt.Date, apt.Time, apt.RemindersEnabled, apt.EmailEnabled, apt.Notes, apt.CreatedAt,
		)
		if err != nil {
			return appointment.Appointment{}, fmt.Errorf("failed to insert appointment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return appointment.Appointment{}, err
		}
		apt.ID = id
		return apt, nil
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET patient_name = ?, procedure = ?, phone_number = ?, secondary_phone = ?,
			email = ?, appointment_date = ?, appointment_time = ?, enable_reminders = ?, enable_email = ?, notes = ?
		WHERE id = ?`,
		apt.PatientName, apt.Procedure, apt.PhoneNumber, apt.SecondaryPhone, apt.Email,
		apt.Date, apt.Time, apt.RemindersEnabled, apt.EmailEnabled, apt.Notes, apt.ID,
	)
	if err != nil {
		return appointment.Appointment{}, fmt.Errorf("failed to update appointment %d: %w", apt.ID, err)
	}
	return apt, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (appointment.Appointment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, patient_name, procedure, phone_number, secondary_phone, email,
			appointment_date, appointment_time, enable_reminders, enable_email, notes, created_at
		FROM appointments WHERE id = ?`, id)
	apt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return appointment.Appointment{}, pkgError.NotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	return apt, err
}

func (r *SQLiteRepository) List(ctx context.Context) ([]appointment.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_name, procedure, phone_number, secondary_phone, email,
			appointment_date, appointment_time, enable_reminders, enable_email, notes, created_at
		FROM appointments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var out []appointment.Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, apt)
	}
	return out, rows.Err()
}

// Snapshot satisfies appointment.ISource. Rows are copied out before the
// call returns, so the scheduler never sees a live view.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]appointment.Appointment, error) {
	return r.List(ctx)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgError.NotFoundError(fmt.Sprintf("appointment %d not found", id))
	}
	// Stale ledger keys for the deleted id are harmless and never purged.
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (appointment.Appointment, error) {
	var apt appointment.Appointment
	err := row.Scan(&apt.ID, &apt.PatientName, &apt.Procedure, &apt.PhoneNumber, &apt.SecondaryPhone,
		&apt.Email, &apt.Date, &apt.Time, &apt.RemindersEnabled, &apt.EmailEnabled, &apt.Notes, &apt.CreatedAt)
	return apt, err
}

// --- Dedup ledger ---

func ledgerKey(key reminder.DedupKey) string {
	if key.Instant == "" {
		return fmt.Sprintf("%d_%s", key.AppointmentID, key.Rule)
	}
	return fmt.Sprintf("%d_%s@%s", key.AppointmentID, key.Rule, key.Instant)
}

func (r *SQLiteRepository) loadLedger(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT appointment_id, rule, instant, sent_at FROM sent_reminders`)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	r.mu.Lock()
	defer r.mu.Unlock()
	for rows.Next() {
		var key reminder.DedupKey
		var at time.Time
		if err := rows.Scan(&key.AppointmentID, &key.Rule, &key.Instant, &at); err != nil {
			return err
		}
		r.sent[ledgerKey(key)] = at
	}
	return rows.Err()
}

func (r *SQLiteRepository) HasSent(ctx context.Context, key reminder.DedupKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sent[ledgerKey(key)]
	return ok, nil
}

func (r *SQLiteRepository) MarkSent(ctx context.Context, key reminder.DedupKey, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sent_reminders (appointment_id, rule, instant, sent_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(appointment_id, rule, instant) DO UPDATE SET sent_at = excluded.sent_at`,
		key.AppointmentID, string(key.Rule), key.Instant, at,
	)

	// The in-memory mark always lands, even when the write-through failed:
	// a duplicate after a crash beats a lost notification now.
	r.mu.Lock()
	r.sent[ledgerKey(key)] = at
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to persist ledger entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SentCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sent), nil
}

// --- Settings ---

// LoadSettings returns the persisted settings, or ok=false when none were
// saved yet.
func (r *SQLiteRepository) LoadSettings(ctx context.Context) (reminder.SchedulerSettings, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM engine_settings WHERE key = ?`, settingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return reminder.SchedulerSettings{}, false, nil
	}
	if err != nil {
		return reminder.SchedulerSettings{}, false, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := reminder.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return reminder.SchedulerSettings{}, false, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, true, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, settings reminder.SchedulerSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO engine_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}
