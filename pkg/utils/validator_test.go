package utils

import "testing"

type seatInput struct {
	Row  int `json:"row" validate:"min=1"`
	Seat int `json:"seat" validate:"min=1"`
}

type bookingInput struct {
	Email   string      `json:"email" validate:"required,email"`
	Tickets []seatInput `json:"tickets" validate:"required,min=1,dive"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		in := bookingInput{Email: "a@b.com", Tickets: []seatInput{{Row: 1, Seat: 1}}}
		if errs := ValidateStruct(in); errs != nil {
			t.Fatalf("expected no errors, got %v", errs)
		}
	})

	t.Run("nested errors keep their path", func(t *testing.T) {
		in := bookingInput{Email: "nope", Tickets: []seatInput{{Row: 1, Seat: 1}, {Row: 0, Seat: 2}}}
		errs := ValidateStruct(in)
		if errs["email"] != "Invalid email format" {
			t.Errorf("email error = %q", errs["email"])
		}
		if errs["tickets[1].row"] != "Must be at least 1" {
			t.Errorf("tickets[1].row error = %q, all errors: %v", errs["tickets[1].row"], errs)
		}
	})
}
