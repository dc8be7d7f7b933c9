package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if PeriodFromHz(50) != 20*time.Millisecond {
		t.Fatalf("50 Hz: got %v", PeriodFromHz(50))
	}
	if PeriodFromHz(0) != time.Second {
		t.Fatalf("0 Hz must coerce to 1 Hz, got %v", PeriodFromHz(0))
	}
}

func TestSleepCancelled(t *testing.T) {
	done := make(chan struct{})
	close(done)
	if Sleep(time.Hour, done) {
		t.Fatal("closed done channel must interrupt the sleep")
	}
	if !Sleep(0, nil) {
		t.Fatal("zero duration must report elapsed")
	}
}

func TestResetTimerAfterFire(t *testing.T) {
	tm := time.NewTimer(time.Microsecond)
	time.Sleep(5 * time.Millisecond)
	ResetTimer(tm, 10*time.Millisecond)
	select {
	case <-tm.C:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire after reset")
	}
}
