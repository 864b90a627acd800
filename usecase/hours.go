package usecase

import "time"

// WithinBusinessHours reports whether dispatch is permitted right now.
// Both bounds are inclusive. Unparsable bounds fail open: the engine must
// never silently stop reminding because of a bad settings string.
func WithinBusinessHours(now time.Time, start, end string) bool {
	startT, err := time.Parse("15:04", start)
	if err != nil {
		return true
	}
	endT, err := time.Parse("15:04", end)
	if err != nil {
		return true
	}

	cur := now.Hour()*60 + now.Minute()
	lo := startT.Hour()*60 + startT.Minute()
	hi := endT.Hour()*60 + endT.Minute()
	return lo <= cur && cur <= hi
}
