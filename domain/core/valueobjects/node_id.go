package valueobjects

import (
	"github.com/google/uuid"
)

// IDGenerator produces fresh node identifiers
type IDGenerator func() string

// NewNodeID creates a new random node identifier
func NewNodeID() string {
	return uuid.New().String()
}

// IsUUID reports whether s is a well-formed UUID.
// Imported nodes may carry arbitrary ids, so this is informational only.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
