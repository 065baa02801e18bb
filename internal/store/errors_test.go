package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()
	if !IsNotFoundError(ErrNotFound) {
		t.Error("Expected ErrNotFound to be a not-found error")
	}
	if !IsNotFoundError(ErrCardNotFound) {
		t.Error("Expected ErrCardNotFound to be a not-found error")
	}
	if !IsNotFoundError(ErrUserNotFound) {
		t.Error("Expected ErrUserNotFound to be a not-found error")
	}
	if !IsNotFoundError(fmt.Errorf("loading card: %w", ErrCardNotFound)) {
		t.Error("Expected wrapped ErrCardNotFound to be a not-found error")
	}
	if IsNotFoundError(errors.New("something else")) {
		t.Error("Expected unrelated error not to be a not-found error")
	}
	if IsNotFoundError(nil) {
		t.Error("Expected nil not to be a not-found error")
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()
	if !IsDuplicateError(ErrDuplicate) {
		t.Error("Expected ErrDuplicate to be a duplicate error")
	}
	if !IsDuplicateError(ErrEmailExists) {
		t.Error("Expected ErrEmailExists to be a duplicate error")
	}
	if !IsDuplicateError(ErrUsernameExists) {
		t.Error("Expected ErrUsernameExists to be a duplicate error")
	}
	if IsDuplicateError(ErrCardNotFound) {
		t.Error("Expected ErrCardNotFound not to be a duplicate error")
	}
}
