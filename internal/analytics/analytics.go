// Package analytics derives read-only views from a session collection. Nothing
// here is stored; every value is recomputed from sets on demand.
package analytics

import (
	"sort"
	"time"

	"github.com/claude/ironprogress/internal/models"
)

// Summary holds the dashboard counters for a collection.
type Summary struct {
	TotalSessions  int        `json:"total_sessions"`
	TotalSets      int        `json:"total_sets"`
	LifetimeVolume float64    `json:"lifetime_volume_kg"`
	LastWorkout    *time.Time `json:"last_workout,omitempty"`
}

// Performance is the most recent recorded effort for one exercise.
type Performance struct {
	SessionID string               `json:"session_id"`
	Date      time.Time            `json:"date"`
	Sets      []models.ExerciseSet `json:"sets"`
}

// ExerciseNames returns every distinct exercise name in the collection, sorted.
func ExerciseNames(sessions []models.WorkoutSession) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, s := range sessions {
		for _, e := range s.Exercises {
			if _, ok := seen[e.ExerciseName]; ok {
				continue
			}
			seen[e.ExerciseName] = struct{}{}
			names = append(names, e.ExerciseName)
		}
	}
	sort.Strings(names)
	return names
}

// Progression returns one point per session containing the named exercise with
// at least one set, ordered by parsed session date. Names match exactly.
func Progression(sessions []models.WorkoutSession, exercise string) []models.ProgressPoint {
	points := []models.ProgressPoint{}
	for _, s := range sessions {
		e, ok := s.Exercise(exercise)
		if !ok || len(e.Sets) == 0 {
			continue
		}
		points = append(points, models.ProgressPoint{
			Date:      s.Date.Time,
			Volume:    e.Volume(),
			MaxWeight: e.MaxWeight(),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// LifetimeVolume sums reps × weight over every set. It is 0 for an empty collection.
func LifetimeVolume(sessions []models.WorkoutSession) float64 {
	var total float64
	for _, s := range sessions {
		total += s.Volume()
	}
	return total
}

// LastWorkout returns the most recent session date, or nil for an empty collection.
func LastWorkout(sessions []models.WorkoutSession) *time.Time {
	var last *time.Time
	for _, s := range sessions {
		if last == nil || s.Date.After(*last) {
			d := s.Date.Time
			last = &d
		}
	}
	return last
}

// Summarize computes the counters shown on the dashboard.
func Summarize(sessions []models.WorkoutSession) Summary {
	sum := Summary{
		TotalSessions:  len(sessions),
		LifetimeVolume: LifetimeVolume(sessions),
		LastWorkout:    LastWorkout(sessions),
	}
	for _, s := range sessions {
		sum.TotalSets += s.SetCount()
	}
	return sum
}

// LastPerformance finds the most recent session in which the exercise was
// performed with at least one set.
func LastPerformance(sessions []models.WorkoutSession, exercise string) (*Performance, bool) {
	var best *Performance
	for _, s := range sessions {
		e, ok := s.Exercise(exercise)
		if !ok || len(e.Sets) == 0 {
			continue
		}
		if best != nil && !s.Date.After(best.Date) {
			continue
		}
		best = &Performance{
			SessionID: s.ID,
			Date:      s.Date.Time,
			Sets:      append([]models.ExerciseSet(nil), e.Sets...),
		}
	}
	return best, best != nil
}

// Window returns the sessions dated in [from, to), in ascending date order.
func Window(sessions []models.WorkoutSession, from, to time.Time) []models.WorkoutSession {
	out := []models.WorkoutSession{}
	for _, s := range sessions {
		if s.Date.Before(from) || !s.Date.Before(to) {
			continue
		}
		out = append(out, s)
	}
	models.SortByDate(out, true)
	return out
}

// LastDays is Window over the n days ending at now.
func LastDays(sessions []models.WorkoutSession, now time.Time, n int) []models.WorkoutSession {
	return Window(sessions, now.AddDate(0, 0, -n), now.Add(time.Nanosecond))
}

// WeekStart returns midnight on the Monday of now's week, in now's location.
func WeekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -offset)
}

// SessionsThisWeek counts sessions dated from this week's Monday up to now.
func SessionsThisWeek(sessions []models.WorkoutSession, now time.Time) int {
	return len(Window(sessions, WeekStart(now), now.Add(time.Nanosecond)))
}
