package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
	pkgError "github.com/AzielCF/az-remind/pkg/error"
)

type sentMessage struct {
	Address string
	Subject string
	Body    string
}

type fakeNotifier struct {
	kind reminder.ChannelKind
	fail bool
	sent []sentMessage
}

func (f *fakeNotifier) Kind() reminder.ChannelKind { return f.kind }

func (f *fakeNotifier) Send(_ context.Context, address, subject, body string) error {
	if f.fail {
		return pkgError.NotifierError("connection refused")
	}
	f.sent = append(f.sent, sentMessage{Address: address, Subject: subject, Body: body})
	return nil
}

type memLedger struct {
	mu      sync.Mutex
	entries map[reminder.DedupKey]time.Time
	markErr error
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[reminder.DedupKey]time.Time)}
}

func (l *memLedger) HasSent(_ context.Context, key reminder.DedupKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[key]
	return ok, nil
}

func (l *memLedger) MarkSent(_ context.Context, key reminder.DedupKey, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	l.entries[key] = at
	return nil
}

func (l *memLedger) SentCount(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries), nil
}

type memLog struct {
	mu      sync.Mutex
	entries []reminder.LogEntry
}

func (l *memLog) Append(entry reminder.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *memLog) Snapshot(limit int) []reminder.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]reminder.LogEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

func (l *memLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *memLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}

// attempts filters out the "System" lifecycle lines so tests can count
// real dispatch attempts.
func (l *memLog) attempts() []reminder.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []reminder.LogEntry
	for _, e := range l.entries {
		if e.Patient != "System" {
			out = append(out, e)
		}
	}
	return out
}

type memStore struct {
	mu    sync.Mutex
	saved *reminder.SchedulerSettings
}

func (s *memStore) LoadSettings(context.Context) (reminder.SchedulerSettings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return reminder.SchedulerSettings{}, false, nil
	}
	return *s.saved, true, nil
}

func (s *memStore) SaveSettings(_ context.Context, settings reminder.SchedulerSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = &settings
	return nil
}

type staticSource struct {
	appointments []appointment.Appointment
	err          error
}

func (s *staticSource) Snapshot(context.Context) ([]appointment.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]appointment.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out, nil
}

func newTestDispatcher(chat, mail reminder.Notifier, ledger reminder.ILedger, log reminder.IActivityLog, at time.Time) *Dispatcher {
	d := NewDispatcher(chat, mail, ledger, log, "1")
	d.sleep = func(time.Duration) {}
	d.clock = func() time.Time { return at }
	return d
}
