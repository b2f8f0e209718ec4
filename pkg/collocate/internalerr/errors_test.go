package internalerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestInputError(t *testing.T) {
	err := fmt.Errorf("load corpus: %w", NewInputError("data/ictihat.json", fs.ErrNotExist))

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("InputError should match ErrInvalidInput")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("InputError should unwrap to the cause")
	}
	var ie *InputError
	if !errors.As(err, &ie) || ie.Path != "data/ictihat.json" {
		t.Errorf("Expected the path to be recoverable, got %v", ie)
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Error("InputError should not match ErrInvalidConfig")
	}
}
