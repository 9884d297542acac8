package helper

import (
	"strings"

	"github.com/google/uuid"
)

// NewShareToken generates the public share token for an availability rule.
// Tokens are issued once at rule creation and never rotated; compactness
// matters because they appear in booking-page URLs.
func NewShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
