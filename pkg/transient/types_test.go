package transient

import (
	"testing"
	"time"
)

func TestLockModeString(t *testing.T) {
	tests := []struct {
		mode LockMode
		want string
	}{
		{LockModeNone, "none"},
		{LockModeCreate, "create"},
		{LockModeRead, "read"},
		{LockModeUpdate, "update"},
		{LockMode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("LockMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseLockMode(t *testing.T) {
	for _, mode := range []LockMode{LockModeNone, LockModeCreate, LockModeRead, LockModeUpdate} {
		got, err := ParseLockMode(mode.String())
		if err != nil {
			t.Fatalf("ParseLockMode(%q): %v", mode.String(), err)
		}
		if got != mode {
			t.Errorf("ParseLockMode(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
	if _, err := ParseLockMode("exclusive"); err == nil {
		t.Error("expected error for unknown mode name")
	}
}

func TestPropLockExpired(t *testing.T) {
	lock := PropLock{ID: 1, Mode: LockModeUpdate, Timestamp: 1000}
	span := 500 * time.Millisecond

	if lock.Expired(1400, span) {
		t.Error("lock should not be expired before the span elapses")
	}
	if lock.Expired(1500, span) {
		t.Error("elapsed == span is not yet expired")
	}
	if !lock.Expired(1501, span) {
		t.Error("lock should be expired once elapsed exceeds the span")
	}
}

func TestErrorCodeOrdinals(t *testing.T) {
	// The ordinals are wire-stable; a reorder is a breaking change.
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrNone, 0},
		{ErrGeneral, 1},
		{ErrDoesNotExist, 2},
		{ErrAlreadyExists, 3},
		{ErrCapacityExceeded, 4},
		{ErrLockWaitTimeOut, 5},
		{ErrInvalidLock, 6},
		{ErrLockIdMismatch, 7},
		{ErrLocked, 8},
		{ErrNotLocked, 9},
	}
	for _, tt := range tests {
		if int(tt.code) != tt.want {
			t.Errorf("%s ordinal = %d, want %d", tt.code, int(tt.code), tt.want)
		}
	}
}
