package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOfBareCode(t *testing.T) {
	if Of(CorruptSkill) != CorruptSkill {
		t.Fatalf("expected corrupt_skill, got %v", Of(CorruptSkill))
	}
	if Of(nil) != OK {
		t.Fatalf("expected ok for nil error")
	}
	if Of(errors.New("boom")) != Error {
		t.Fatalf("expected generic fallback for plain error")
	}
}

func TestOfWrapped(t *testing.T) {
	err := Wrap(SessionAborted, "recorder.run", SourceUnavailable)
	if Of(err) != SessionAborted {
		t.Fatalf("expected session_aborted, got %v", Of(err))
	}
	if !errors.Is(err, SessionAborted) {
		t.Fatal("errors.Is should match the outer code")
	}
	if !errors.Is(err, SourceUnavailable) {
		t.Fatal("errors.Is should reach the cause through Unwrap")
	}
}

func TestErrorString(t *testing.T) {
	err := &E{C: CorruptSkill, Op: "store.load", Msg: "wave", Err: fmt.Errorf("delay <= 0")}
	want := "store.load: corrupt_skill: wave: delay <= 0"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
