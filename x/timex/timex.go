package timex

import "time"

// PeriodFromHz returns the tick period for a requested frequency.
// hz <= 0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(hz float64) time.Duration {
	if hz <= 0 {
		hz = 1
	}
	return time.Duration(float64(time.Second) / hz)
}

// ResetTimer safely stops, drains, and resets a timer.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

// DrainTimer empties a fired timer channel without blocking.
func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}

// Sleep waits for d or until ctx-style done closes, reporting whether the
// full duration elapsed.
func Sleep(d time.Duration, done <-chan struct{}) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
