// Package catalog holds the built-in data shipped with the binary: the sample
// sessions a fresh journal starts from and the curated exercise list.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/transfer"
)

//go:embed seed.json
var seedJSON []byte

//go:embed exercises.json
var exercisesJSON []byte

var (
	seedSessions = mustParseSeed(seedJSON)
	definitions  = mustParseDefinitions(exercisesJSON)
)

func mustParseSeed(data []byte) []models.WorkoutSession {
	sessions, err := transfer.ParseSessions(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed sessions: %v", err))
	}
	return sessions
}

func mustParseDefinitions(data []byte) []models.ExerciseDefinition {
	var defs []models.ExerciseDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		panic(fmt.Sprintf("catalog: embedded exercise list: %v", err))
	}
	return defs
}

// Seed returns a fresh copy of the sample sessions, in their stored order.
func Seed() []models.WorkoutSession {
	return models.Clone(seedSessions)
}

// Definitions returns the curated exercise list.
func Definitions() []models.ExerciseDefinition {
	return append([]models.ExerciseDefinition(nil), definitions...)
}

// MuscleGroup looks up the muscle group for an exercise. An exact name match
// wins over a case-insensitive one.
func MuscleGroup(name string) (string, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d.MuscleGroup, true
		}
	}
	for _, d := range definitions {
		if strings.EqualFold(d.Name, name) {
			return d.MuscleGroup, true
		}
	}
	return "", false
}
