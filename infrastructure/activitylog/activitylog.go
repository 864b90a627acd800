package activitylog

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AzielCF/az-remind/domains/reminder"
	"github.com/sirupsen/logrus"
)

const lineTimeLayout = "2006-01-02 15:04:05"

// FileLog is the append-only activity sink: every dispatch attempt becomes
// one pipe-delimited line in the backing file, while a bounded in-memory
// ring serves the live view. The file only shrinks on an explicit Clear.
type FileLog struct {
	mu      sync.Mutex
	path    string
	max     int
	entries []reminder.LogEntry
}

// NewFileLog opens (or creates) the log file and loads the most recent
// entries into the live view.
func NewFileLog(path string, viewLimit int) (*FileLog, error) {
	if viewLimit <= 0 {
		viewLimit = 100
	}
	l := &FileLog{path: path, max: viewLimit}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if entry, ok := parseLine(scanner.Text()); ok {
			l.entries = append(l.entries, entry)
			if len(l.entries) > l.max {
				l.entries = l.entries[1:]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Append records the entry. File write failures are reported on the
// process log and never propagate; losing a log line must not stop the
// scheduler.
func (l *FileLog) Append(entry reminder.LogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[1:]
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.WithError(err).Error("[ACTIVITY] Failed to open log file")
		return
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(entry) + "\n"); err != nil {
		logrus.WithError(err).Error("[ACTIVITY] Failed to append log entry")
	}
}

// Snapshot returns up to limit entries, most recent first. limit <= 0
// returns the whole live view.
func (l *FileLog) Snapshot(limit int) []reminder.LogEntry {
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

func (l *FileLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear truncates the backing file and empties the live view.
func (l *FileLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	return os.Truncate(l.path, 0)
}

func formatLine(entry reminder.LogEntry) string {
	return strings.Join([]string{
		entry.Timestamp.Format(lineTimeLayout),
		entry.Patient,
		entry.Address,
		entry.Description,
		string(entry.Status),
	}, " | ")
}

func parseLine(line string) (reminder.LogEntry, bool) {
	parts := strings.Split(strings.TrimSpace(line), " | ")
	if len(parts) < 5 {
		return reminder.LogEntry{}, false
	}
	ts, err := time.ParseInLocation(lineTimeLayout, parts[0], time.Local)
	if err != nil {
		return reminder.LogEntry{}, false
	}

	// Descriptions can contain the separator themselves (notifier error
	// strings are interpolated verbatim); the status is always the final
	// column, everything between address and status is the description.
	last := len(parts) - 1
	return reminder.LogEntry{
		Timestamp:   ts,
		Patient:     parts[1],
		Address:     parts[2],
		Description: strings.Join(parts[3:last], " | "),
		Status:      reminder.DispatchStatus(parts[last]),
	}, true
}
