package catalog

import (
	"testing"
	"time"
)

// TestSeedLoads verifies the embedded sessions decode and validate.
func TestSeedLoads(t *testing.T) {
	seed := Seed()
	if len(seed) != 23 {
		t.Fatalf("len(Seed()) = %d, want 23", len(seed))
	}
	first := seed[0]
	if first.ID != "session-1" {
		t.Errorf("first id = %q, want session-1", first.ID)
	}
	want := time.Date(2020, 9, 25, 10, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Errorf("first date = %v, want %v", first.Date, want)
	}
	ids := make(map[string]bool)
	for _, s := range seed {
		if ids[s.ID] {
			t.Errorf("duplicate seed id %q", s.ID)
		}
		ids[s.ID] = true
	}
}

// TestSeedIsCopy verifies callers cannot mutate the embedded sessions.
func TestSeedIsCopy(t *testing.T) {
	a := Seed()
	a[0].Title = "mutated"
	a[1].Exercises[1].Sets[0].Reps = 999

	b := Seed()
	if b[0].Title == "mutated" {
		t.Error("Seed shares session values between calls")
	}
	if b[1].Exercises[1].Sets[0].Reps == 999 {
		t.Error("Seed shares set slices between calls")
	}
}

// TestDefinitions verifies the curated list and lookup.
func TestDefinitions(t *testing.T) {
	defs := Definitions()
	if len(defs) != 18 {
		t.Fatalf("len(Definitions()) = %d, want 18", len(defs))
	}
	if defs[0].Name != "Chest press dumbbell" || defs[0].MuscleGroup != "Chest" {
		t.Errorf("first definition = %+v", defs[0])
	}

	if g, ok := MuscleGroup("Deadlift"); !ok || g != "Back/Legs" {
		t.Errorf("MuscleGroup(Deadlift) = %q, %v", g, ok)
	}
	if g, ok := MuscleGroup("roman SEAT"); !ok || g != "Back/Abs" {
		t.Errorf("MuscleGroup(roman SEAT) = %q, %v", g, ok)
	}
	if _, ok := MuscleGroup("Underwater basket weaving"); ok {
		t.Error("unknown exercise reported a muscle group")
	}
}
