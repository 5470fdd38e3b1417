package entity

import "github.com/google/uuid"

// PlayFilter narrows the play list. Empty fields are ignored.
type PlayFilter struct {
	Title    string
	GenreIDs []uuid.UUID
	ActorIDs []uuid.UUID
}

// PerformanceFilter narrows the performance list.
type PerformanceFilter struct {
	PlayID *uuid.UUID
	Date   *string // YYYY-MM-DD
}
