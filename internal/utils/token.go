package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewShareToken returns a 128-bit random hex token used as the bearer
// capability for a swap request's public offer page.
func NewShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewCalendarToken returns an opaque per-user token for the read-only
// ICS calendar feed.
func NewCalendarToken() string {
	return uuid.NewString()
}
