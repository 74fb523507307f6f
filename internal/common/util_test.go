package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("Password1")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_AreDistinctAndWrappable(t *testing.T) {
	all := []error{
		ErrValidation, ErrAuthenticationFailed, ErrSessionExpired, ErrNetwork,
		ErrUnexpected, ErrOperationInProgress, ErrNotAuthenticated, ErrInvalidState,
	}
	for i, a := range all {
		wrapped := fmt.Errorf("op: %w", a)
		for j, b := range all {
			if got := errors.Is(wrapped, b); got != (i == j) {
				t.Fatalf("errors.Is(%v, %v) = %v", wrapped, b, got)
			}
		}
	}
}
