package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid workout data")

// ExerciseSet is one performed set. Weight is in kilograms.
type ExerciseSet struct {
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	IsSuperset bool    `json:"isSuperset,omitempty"`
}

// ExerciseLog is one exercise performed within a session. An empty Sets slice
// marks a skipped or placeholder entry.
type ExerciseLog struct {
	ExerciseName string        `json:"exerciseName"`
	Sets         []ExerciseSet `json:"sets"`
	Notes        string        `json:"notes,omitempty"`
}

// WorkoutSession is one logged session. ID is unique within a collection and is
// the only key used for deduplication and deletion.
type WorkoutSession struct {
	ID        string        `json:"id"`
	Date      Timestamp     `json:"date"`
	Title     string        `json:"title"`
	Exercises []ExerciseLog `json:"exercises"`
}

// ExerciseDefinition is a curated catalog entry used to populate selection lists.
type ExerciseDefinition struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}

// ProgressPoint is one session's contribution to an exercise progression series.
type ProgressPoint struct {
	Date      time.Time `json:"date"`
	Volume    float64   `json:"volume"`
	MaxWeight float64   `json:"maxWeight"`
}

// SetField selects which numeric field of a set an update targets.
type SetField int

const (
	FieldReps SetField = iota
	FieldWeight
)

func (f SetField) String() string {
	switch f {
	case FieldReps:
		return "reps"
	case FieldWeight:
		return "weight"
	default:
		return fmt.Sprintf("SetField(%d)", int(f))
	}
}

// ParseSetField maps "reps" or "weight" to a SetField.
func ParseSetField(s string) (SetField, error) {
	switch s {
	case "reps":
		return FieldReps, nil
	case "weight":
		return FieldWeight, nil
	}
	return 0, fmt.Errorf("%w: unknown set field %q", ErrInvalid, s)
}

// Volume returns reps × weight.
func (s ExerciseSet) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// Validate rejects negative or non-finite values.
func (s ExerciseSet) Validate() error {
	if s.Reps < 0 {
		return fmt.Errorf("%w: reps %d is negative", ErrInvalid, s.Reps)
	}
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
		return fmt.Errorf("%w: weight is not a finite number", ErrInvalid)
	}
	if s.Weight < 0 {
		return fmt.Errorf("%w: weight %g is negative", ErrInvalid, s.Weight)
	}
	return nil
}

// Volume sums the volume of every set.
func (e ExerciseLog) Volume() float64 {
	var v float64
	for _, s := range e.Sets {
		v += s.Volume()
	}
	return v
}

// MaxWeight returns the heaviest set weight, or 0 when there are no sets.
func (e ExerciseLog) MaxWeight() float64 {
	var m float64
	for _, s := range e.Sets {
		if s.Weight > m {
			m = s.Weight
		}
	}
	return m
}

// Volume sums the volume of every exercise.
func (w WorkoutSession) Volume() float64 {
	var v float64
	for _, e := range w.Exercises {
		v += e.Volume()
	}
	return v
}

// SetCount returns the number of sets across all exercises.
func (w WorkoutSession) SetCount() int {
	n := 0
	for _, e := range w.Exercises {
		n += len(e.Sets)
	}
	return n
}

// Exercise returns the first log whose name matches exactly.
func (w WorkoutSession) Exercise(name string) (ExerciseLog, bool) {
	for _, e := range w.Exercises {
		if e.ExerciseName == name {
			return e, true
		}
	}
	return ExerciseLog{}, false
}

// Validate checks the session-level invariants and every set.
func (w WorkoutSession) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("%w: session id is empty", ErrInvalid)
	}
	if w.Date.IsZero() {
		return fmt.Errorf("%w: session %s has no date", ErrInvalid, w.ID)
	}
	for i, e := range w.Exercises {
		for j, s := range e.Sets {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("session %s exercise %d set %d: %w", w.ID, i, j, err)
			}
		}
	}
	return nil
}

// SortByDate sorts sessions in place by parsed date. Sessions sharing a date
// keep their relative order.
func SortByDate(sessions []WorkoutSession, ascending bool) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if ascending {
			return sessions[i].Date.Before(sessions[j].Date.Time)
		}
		return sessions[i].Date.After(sessions[j].Date.Time)
	})
}

// Clone returns a copy of the collection that shares no slices with the input.
func Clone(sessions []WorkoutSession) []WorkoutSession {
	if sessions == nil {
		return nil
	}
	out := make([]WorkoutSession, len(sessions))
	for i, s := range sessions {
		out[i] = s.Clone()
	}
	return out
}

// Clone deep-copies the exercise and set slices.
func (w WorkoutSession) Clone() WorkoutSession {
	c := w
	if w.Exercises != nil {
		c.Exercises = make([]ExerciseLog, len(w.Exercises))
		for i, e := range w.Exercises {
			c.Exercises[i] = e
			if e.Sets != nil {
				c.Exercises[i].Sets = append([]ExerciseSet(nil), e.Sets...)
			}
		}
	}
	return c
}
