package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/render"
)

func writeJSONOutput(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSessionsCmd(a *app) *cobra.Command {
	var (
		order  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Show logged workout sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}

			sessions := j.Sessions()
			switch order {
			case "asc":
				models.SortByDate(sessions, true)
			case "desc":
				models.SortByDate(sessions, false)
			default:
				return fmt.Errorf("--order must be asc or desc, got %q", order)
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			if asJSON {
				return writeJSONOutput(cmd, sessions)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Sessions(sessions, a.loc))
			return err
		},
	}
	cmd.Flags().StringVar(&order, "order", "desc", "date order: asc or desc")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n sessions (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show lifetime totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}

			sessions := j.Sessions()
			summary := analytics.Summarize(sessions)
			thisWeek := analytics.SessionsThisWeek(sessions, a.now().In(a.loc))
			if asJSON {
				return writeJSONOutput(cmd, struct {
					analytics.Summary
					SessionsThisWeek int `json:"sessions_this_week"`
				}{summary, thisWeek})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Stats(summary, thisWeek, a.loc))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newExercisesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "List every exercise in the log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Exercises(analytics.ExerciseNames(j.Sessions())))
			return err
		},
	}
}

func newProgressionCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progression <exercise>",
		Short: "Show volume and heaviest set per session for one exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}

			points := analytics.Progression(j.Sessions(), args[0])
			if asJSON {
				return writeJSONOutput(cmd, points)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Progression(args[0], points, a.loc))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
