package utils

import (
	"encoding/hex"
	"testing"
)

func TestNewShareToken(t *testing.T) {
	token, err := NewShareToken()
	if err != nil {
		t.Fatalf("NewShareToken() error = %v", err)
	}

	if len(token) != 32 {
		t.Errorf("token length = %d, expected 32 hex chars for 128 bits", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}
}

func TestNewShareToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewShareToken()
		if err != nil {
			t.Fatalf("NewShareToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestNewCalendarToken(t *testing.T) {
	token1 := NewCalendarToken()
	token2 := NewCalendarToken()

	if token1 == "" {
		t.Error("NewCalendarToken() returned empty string")
	}
	if token1 == token2 {
		t.Error("calendar tokens should be unique")
	}
}
