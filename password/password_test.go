package password

import (
	"errors"
	"testing"
)

func TestHashAndValidate(t *testing.T) {
	ch, err := NewChecker(Hash("hunter2"))
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	if err := ch.Validate("hunter2"); err != nil {
		t.Errorf("Validate(right password) = %v", err)
	}
	if err := ch.Validate("hunter3"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Validate(wrong password) = %v, want ErrInvalidPassword", err)
	}
}

func TestNewCheckerBadEncoding(t *testing.T) {
	if _, err := NewChecker("not base64!"); err == nil {
		t.Errorf("NewChecker should reject a bad encoding")
	}
}
