package journal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/claude/ironprogress/internal/models"
	"github.com/google/uuid"
)

// Draft is a session being composed before it is logged.
type Draft struct {
	Title     string
	Date      time.Time // zero means the day Build is called
	Exercises []models.ExerciseLog
}

// NewDraft starts an empty draft.
func NewDraft(title string, date time.Time) *Draft {
	return &Draft{Title: title, Date: date}
}

// AddExercise appends an exercise with a single empty set and returns its index.
func (d *Draft) AddExercise(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: exercise name is empty", models.ErrInvalid)
	}
	d.Exercises = append(d.Exercises, models.ExerciseLog{
		ExerciseName: name,
		Sets:         []models.ExerciseSet{{}},
	})
	return len(d.Exercises) - 1, nil
}

// AddSet appends a set copying the reps and weight of the exercise's last set,
// or an empty set when there is none.
func (d *Draft) AddSet(i int) error {
	if err := d.checkExercise(i); err != nil {
		return err
	}
	var next models.ExerciseSet
	if sets := d.Exercises[i].Sets; len(sets) > 0 {
		last := sets[len(sets)-1]
		next = models.ExerciseSet{Reps: last.Reps, Weight: last.Weight}
	}
	d.Exercises[i].Sets = append(d.Exercises[i].Sets, next)
	return nil
}

// RemoveSet deletes set j of exercise i.
func (d *Draft) RemoveSet(i, j int) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	sets := d.Exercises[i].Sets
	d.Exercises[i].Sets = append(sets[:j:j], sets[j+1:]...)
	return nil
}

// UpdateSet sets one field of set j of exercise i. Reps are truncated to a whole number.
func (d *Draft) UpdateSet(i, j int, field models.SetField, value float64) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number", models.ErrInvalid, field)
	}
	set := &d.Exercises[i].Sets[j]
	switch field {
	case models.FieldReps:
		set.Reps = int(value)
	case models.FieldWeight:
		set.Weight = value
	default:
		return fmt.Errorf("%w: unknown set field %s", models.ErrInvalid, field)
	}
	return nil
}

// SetSuperset marks set j of exercise i as part of a superset.
func (d *Draft) SetSuperset(i, j int, on bool) error {
	if err := d.checkSet(i, j); err != nil {
		return err
	}
	d.Exercises[i].Sets[j].IsSuperset = on
	return nil
}

// SetNotes replaces the notes of exercise i.
func (d *Draft) SetNotes(i int, notes string) error {
	if err := d.checkExercise(i); err != nil {
		return err
	}
	d.Exercises[i].Notes = notes
	return nil
}

// Build returns the finished session with a fresh id. A draft needs a title
// and at least one exercise.
func (d *Draft) Build(now time.Time) (models.WorkoutSession, error) {
	if strings.TrimSpace(d.Title) == "" || len(d.Exercises) == 0 {
		return models.WorkoutSession{}, fmt.Errorf("%w: a session needs a title and at least one exercise", models.ErrInvalid)
	}
	date := d.Date
	if date.IsZero() {
		y, m, day := now.Date()
		date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}

	s := models.WorkoutSession{
		ID:    uuid.NewString(),
		Date:  models.NewTimestamp(date),
		Title: strings.TrimSpace(d.Title),
	}
	s.Exercises = make([]models.ExerciseLog, len(d.Exercises))
	for i, e := range d.Exercises {
		s.Exercises[i] = e
		s.Exercises[i].Sets = append([]models.ExerciseSet{}, e.Sets...)
	}
	if err := s.Validate(); err != nil {
		return models.WorkoutSession{}, err
	}
	return s, nil
}

func (d *Draft) checkExercise(i int) error {
	if i < 0 || i >= len(d.Exercises) {
		return fmt.Errorf("%w: no exercise at index %d", models.ErrInvalid, i)
	}
	return nil
}

func (d *Draft) checkSet(i, j int) error {
	if err := d.checkExercise(i); err != nil {
		return err
	}
	if j < 0 || j >= len(d.Exercises[i].Sets) {
		return fmt.Errorf("%w: exercise %d has no set at index %d", models.ErrInvalid, i, j)
	}
	return nil
}
