package security

import (
	"errors"
	"testing"
)

func TestPasswordValidatorMinLength(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(8))

	if err := validator.Validate("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := validator.Validate("long enough value"); err != nil {
		t.Fatalf("expected long password to pass, got %v", err)
	}
}

func TestPasswordValidatorStrength(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("password1"); err == nil {
		t.Fatal("expected common password to be rejected")
	}

	var validationErr *PasswordValidationError
	err := validator.Validate("password1")
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected PasswordValidationError, got %T", err)
	}

	if err := validator.Validate("tr4verse-BLUE-antelope"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}

func TestPasswordValidatorUserInputsPenalized(t *testing.T) {
	rule := RequirePasswordStrengthRule(3, "alice@example.com", "alice")
	if err := rule.Validate("alicealicealice"); err == nil {
		t.Fatal("expected password derived from user inputs to be rejected")
	}
}
