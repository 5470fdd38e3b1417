package entity

import (
	"testing"
	"time"
)

func TestTheatreHallNumSeats(t *testing.T) {
	tests := []struct {
		rows, seats, want int
	}{
		{10, 10, 100},
		{1, 1, 1},
		{20, 15, 300},
	}
	for _, tt := range tests {
		h := TheatreHall{Rows: tt.rows, SeatsInRows: tt.seats}
		if got := h.NumSeats(); got != tt.want {
			t.Errorf("NumSeats() for %dx%d = %d, want %d", tt.rows, tt.seats, got, tt.want)
		}
	}
}

func TestActorFullName(t *testing.T) {
	a := Actor{FirstName: "Marlon", LastName: "Brando"}
	if got := a.FullName(); got != "Marlon Brando" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"valid", Session{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", Session{ExpiresAt: now.Add(-time.Hour)}, false},
		{"revoked", Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Active(now); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}
