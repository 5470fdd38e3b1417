package repository

import (
	"strings"
	"testing"

	"theatre-booking/internal/data/entity"

	"github.com/google/uuid"
)

func TestSortUUIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("10000000-0000-0000-0000-000000000000")
	c := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	in := []uuid.UUID{c, a, b}
	got := SortUUIDs(in)

	want := []uuid.UUID{a, b, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortUUIDs() = %v, want %v", got, want)
		}
	}
	if in[0] != c {
		t.Error("SortUUIDs must not reorder its input")
	}
}

func TestPlayWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   entity.PlayFilter
		contains []string
		args     int
	}{
		{"no filter", entity.PlayFilter{}, []string{"WHERE 1=1"}, 0},
		{"title only", entity.PlayFilter{Title: "ham"}, []string{"ILIKE", "$1"}, 1},
		{
			"all filters",
			entity.PlayFilter{Title: "x", GenreIDs: []uuid.UUID{uuid.New()}, ActorIDs: []uuid.UUID{uuid.New()}},
			[]string{"$1", "play_genres", "ANY($2)", "play_actors", "ANY($3)"},
			3,
		},
		{
			"actors without title",
			entity.PlayFilter{ActorIDs: []uuid.UUID{uuid.New()}},
			[]string{"play_actors", "ANY($1)"},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := playWhere(tt.filter)
			for _, s := range tt.contains {
				if !strings.Contains(where, s) {
					t.Errorf("where %q missing %q", where, s)
				}
			}
			if len(args) != tt.args {
				t.Errorf("got %d args, want %d", len(args), tt.args)
			}
		})
	}
}

func TestPerformanceWhere(t *testing.T) {
	playID := uuid.New()
	date := "2026-05-01"

	where, args := performanceWhere(entity.PerformanceFilter{PlayID: &playID, Date: &date})
	if !strings.Contains(where, "p.play_id = $1") || !strings.Contains(where, "$2::date") {
		t.Errorf("unexpected where clause %q", where)
	}
	if len(args) != 2 {
		t.Errorf("got %d args, want 2", len(args))
	}

	where, args = performanceWhere(entity.PerformanceFilter{})
	if where != " WHERE 1=1" || len(args) != 0 {
		t.Errorf("empty filter gave %q %v", where, args)
	}
}
