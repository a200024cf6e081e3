package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseScreenID tests screen ID parsing
func TestParseScreenID(t *testing.T) {
	valid := NewScreenID()

	tests := []struct {
		input    string
		expected ScreenID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseScreenID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID(""); err == nil {
		t.Error("Expected error for empty run ID")
	}
	id, err := ParseRunID("run-123")
	if err != nil || id != RunID("run-123") {
		t.Errorf("Expected run-123, got %s (%v)", id, err)
	}
}

func TestWorkflowErrors(t *testing.T) {
	wrapped := NewStepError(5, "before a result exists")
	if !errors.Is(wrapped, ErrStepUnreachable) {
		t.Errorf("Expected step error to wrap ErrStepUnreachable")
	}
	if !IsWorkflowError(wrapped) {
		t.Errorf("Expected step error to be a workflow error")
	}
	if IsWorkflowError(ErrScreenNotFound) {
		t.Errorf("Did not expect not-found to be a workflow error")
	}
	if !IsNotFoundError(ErrScreenNotFound) {
		t.Errorf("Expected ErrScreenNotFound to be a not-found error")
	}
}

func TestHashShort(t *testing.T) {
	h := NewHash([]byte("statflow"))
	if len(h.String()) != 64 {
		t.Fatalf("Expected 64 hex chars, got %d", len(h.String()))
	}
	if h.Short() != h.String()[:12] {
		t.Errorf("Short() should be the 12 char prefix")
	}
	if NewHash([]byte("statflow")) != h {
		t.Errorf("Hash must be deterministic")
	}
}
