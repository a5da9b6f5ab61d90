package api

import (
	"strings"
	"testing"
)

func TestNewDraftID(t *testing.T) {
	id := NewDraftID()

	if !strings.HasPrefix(id, "draft_") {
		t.Errorf("draft ID %q missing prefix", id)
	}
	if len(id) != len("draft_")+24 {
		t.Errorf("draft ID %q has wrong length %d", id, len(id))
	}
	if !ValidateDraftID(id) {
		t.Errorf("generated ID %q does not validate", id)
	}
}

func TestNewDraftIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewDraftID()
		if seen[id] {
			t.Fatalf("duplicate draft ID %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

func TestValidateDraftID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"draft_abcdefghijklmnopqrstuvwx", true},
		{"draft_ABC123defGHI456jklMNO789", true},
		{"", false},
		{"draft_", false},
		{"draft_tooshort", false},
		{"draft_abcdefghijklmnopqrstuvwxyz", false}, // too long
		{"resp_abcdefghijklmnopqrstuvwx", false},    // wrong prefix
		{"draft_abcdefghijklmnopqrst-vwx", false},   // invalid character
	}

	for _, tt := range tests {
		if got := ValidateDraftID(tt.id); got != tt.valid {
			t.Errorf("ValidateDraftID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}
