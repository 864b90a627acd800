package usecase

import (
	"time"

	"github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/domains/reminder"
)

const dayScaleTolerance = 6 * time.Hour

// RuleDue reports whether the rule is currently inside its due window for
// the appointment. Past appointments and unparsable dates are never due.
// The windows are deliberately wide so a coarse poll interval (or a brief
// process stop) cannot skip a rule.
func RuleDue(now time.Time, apt appointment.Appointment, rule reminder.RuleKind) bool {
	instant, ok := apt.Instant()
	if !ok {
		return false
	}

	offset := instant.Sub(now)
	if offset <= 0 {
		return false
	}

	switch rule {
	case reminder.RuleThreeDays:
		return withinTolerance(offset, 72*time.Hour, dayScaleTolerance)
	case reminder.RuleOneDay:
		return withinTolerance(offset, 24*time.Hour, dayScaleTolerance)
	case reminder.RuleMorning:
		return apt.IsOn(now) && now.Hour() >= 8 && now.Hour() <= 10
	case reminder.RuleOneHour:
		return offset >= 30*time.Minute && offset <= 90*time.Minute
	case reminder.RuleManual:
		// Manual sends are operator-driven, never window-driven.
		return false
	}
	return false
}

func withinTolerance(offset, target, tolerance time.Duration) bool {
	diff := offset - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
