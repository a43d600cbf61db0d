package services

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := invalid("radius", "must be positive")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "radius" {
		t.Fatalf("errors.As failed: %v", err)
	}
	if err.Error() != "invalid radius: must be positive" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPersistenceError(t *testing.T) {
	if persistence("x", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	cause := errors.New("disk full")
	err := persistence("check-in", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrapped")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) || !pe.Retryable() || pe.Op != "check-in" {
		t.Fatalf("unexpected persistence error %#v", err)
	}
	if err.Error() != "check-in: disk full" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
