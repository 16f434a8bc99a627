package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsUniqueUUID(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewID()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("not a uuid: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
