package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ScreenID  ID
	RunID     ID
	PackageID ID
)

func NewScreenID() ScreenID   { return ScreenID(NewID()) }
func NewRunID() RunID         { return RunID(NewID()) }
func NewPackageID() PackageID { return PackageID(NewID()) }

// String conversions for domain IDs
func (id ScreenID) String() string  { return ID(id).String() }
func (id RunID) String() string     { return ID(id).String() }
func (id PackageID) String() string { return ID(id).String() }

// ParseScreenID parses a string into ScreenID
func ParseScreenID(s string) (ScreenID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("screen ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid screen ID %q: %w", s, err)
	}
	return ScreenID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}
