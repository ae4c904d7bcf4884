package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/shift-roster/internal/cycle"
	"github.com/example/shift-roster/internal/testfixtures"
)

func newCatalogService(store *testfixtures.MemoryStore) *CatalogService {
	generator := testfixtures.NewIDGenerator("cat")
	return NewCatalogService(store, store, cycle.QuattroDue(schemeStart), generator.NextFunc(), testfixtures.ReferenceTime)
}

func TestCreateTeam(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigns an id and trims the name", func(t *testing.T) {
		t.Parallel()

		service := newCatalogService(testfixtures.NewMemoryStore())
		team, err := service.CreateTeam(ctx, TeamInput{Name: "  Team A  ", CycleOffset: 4})
		if err != nil {
			t.Fatalf("CreateTeam: %v", err)
		}
		if team.ID == "" {
			t.Fatal("expected a generated id")
		}
		if team.Name != "Team A" {
			t.Fatalf("expected a trimmed name, got %q", team.Name)
		}
		if team.CycleOffset != 4 {
			t.Fatalf("expected cycle offset 4, got %d", team.CycleOffset)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		service := newCatalogService(testfixtures.NewMemoryStore())
		cases := []struct {
			name  string
			input TeamInput
			field string
		}{
			{"blank name", TeamInput{Name: "   "}, "name"},
			{"negative offset", TeamInput{Name: "Team A", CycleOffset: -1}, "cycle_offset"},
			{"offset beyond the cycle", TeamInput{Name: "Team A", CycleOffset: 18}, "cycle_offset"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := service.CreateTeam(ctx, tc.input)
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected a validation error, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Fatalf("expected a %s field error, got %v", tc.field, vErr.FieldErrors)
				}
			})
		}
	})

	t.Run("maps duplicate names to ErrAlreadyExists", func(t *testing.T) {
		t.Parallel()

		service := newCatalogService(testfixtures.NewMemoryStore())
		if _, err := service.CreateTeam(ctx, TeamInput{Name: "Team A"}); err != nil {
			t.Fatalf("CreateTeam: %v", err)
		}
		_, err := service.CreateTeam(ctx, TeamInput{Name: "Team A"})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestListTeams(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewMemoryStore()
	service := newCatalogService(store)
	ctx := context.Background()
	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		if _, err := service.CreateTeam(ctx, TeamInput{Name: name}); err != nil {
			t.Fatalf("CreateTeam %s: %v", name, err)
		}
	}

	teams, err := service.ListTeams(ctx)
	if err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	if len(teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(teams))
	}
	for i, want := range []string{"Alpha", "Bravo", "Charlie"} {
		if teams[i].Name != want {
			t.Fatalf("expected %s at index %d, got %s", want, i, teams[i].Name)
		}
	}
}

func TestCreateShift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("persists a valid template", func(t *testing.T) {
		t.Parallel()

		service := newCatalogService(testfixtures.NewMemoryStore())
		shift, err := service.CreateShift(ctx, ShiftInput{
			Name:       "Morning",
			StartTime:  "06:00",
			EndTime:    "14:00",
			BreakStart: "10:00",
			BreakEnd:   "10:30",
			Color:      "#10b981",
		})
		if err != nil {
			t.Fatalf("CreateShift: %v", err)
		}
		if shift.ID == "" {
			t.Fatal("expected a generated id")
		}
		if shift.SpansMidnight() {
			t.Fatal("a morning shift does not span midnight")
		}
	})

	t.Run("rejects malformed templates", func(t *testing.T) {
		t.Parallel()

		service := newCatalogService(testfixtures.NewMemoryStore())
		cases := []struct {
			name  string
			input ShiftInput
		}{
			{"bad clock", ShiftInput{Name: "Morning", StartTime: "6am", EndTime: "14:00"}},
			{"missing end", ShiftInput{Name: "Morning", StartTime: "06:00"}},
			{"half break", ShiftInput{Name: "Morning", StartTime: "06:00", EndTime: "14:00", BreakStart: "10:00"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := service.CreateShift(ctx, tc.input)
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected a validation error, got %v", err)
				}
			})
		}
	})
}
