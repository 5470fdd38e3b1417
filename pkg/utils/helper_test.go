package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"empty uses default", "", 10, 10},
		{"valid number", "3", 10, 3},
		{"not a number", "abc", 1, 1},
		{"zero uses default", "0", 1, 1},
		{"negative uses default", "-4", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseInt(tt.value, tt.def); got != tt.want {
				t.Errorf("ParseInt(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseUUIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := ParseUUIDList(a.String() + ", " + b.String() + ",")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("got %v, want [%s %s]", ids, a, b)
	}

	ids, err = ParseUUIDList("")
	if err != nil || len(ids) != 0 {
		t.Errorf("empty input: got %v, %v", ids, err)
	}

	if _, err := ParseUUIDList("not-a-uuid"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestCalculatePagination(t *testing.T) {
	if got := CalculateTotalPages(21, 10); got != 3 {
		t.Errorf("CalculateTotalPages(21, 10) = %d, want 3", got)
	}
	if got := CalculateTotalPages(0, 10); got != 0 {
		t.Errorf("CalculateTotalPages(0, 10) = %d, want 0", got)
	}
	if got := CalculateOffset(3, 20); got != 40 {
		t.Errorf("CalculateOffset(3, 20) = %d, want 40", got)
	}
}
