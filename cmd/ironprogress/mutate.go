package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/ironprogress/internal/analytics"
	"github.com/claude/ironprogress/internal/ingest/alpha"
	"github.com/claude/ironprogress/internal/journal"
	"github.com/claude/ironprogress/internal/models"
	"github.com/claude/ironprogress/internal/remote"
	"github.com/claude/ironprogress/internal/render"
	"github.com/claude/ironprogress/internal/transfer"
)

func newLogCmd(a *app) *cobra.Command {
	var (
		title     string
		date      string
		exercises []string
		notes     []string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a workout session",
		Long: `log records one session. Each --exercise is NAME=SETS where SETS is a
comma-separated list of REPSxKG; a trailing + marks a superset member:

  ironprogress log --title "Chest - Back" --exercise "Bench press=10x60,8x62.5" --exercise "Pull up=12x0+"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var day time.Time
			if date != "" {
				ts, err := models.ParseTimestamp(date)
				if err != nil {
					return err
				}
				day = ts.Time
			}

			draft := journal.NewDraft(title, day)
			index := make(map[string]int)
			for _, spec := range exercises {
				name, i, err := addExerciseSpec(draft, spec)
				if err != nil {
					return err
				}
				index[name] = i
			}
			for _, n := range notes {
				name, text, ok := strings.Cut(n, "=")
				i, found := index[strings.TrimSpace(name)]
				if !ok || !found {
					return fmt.Errorf("--note %q must be NAME=TEXT for a logged exercise", n)
				}
				if err := draft.SetNotes(i, text); err != nil {
					return err
				}
			}

			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			session, err := j.Log(cmd.Context(), draft, a.now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Sessions([]models.WorkoutSession{session}, a.loc))
			return err
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "session title")
	cmd.Flags().StringVar(&date, "date", "", "session date (YYYY-MM-DD or ISO 8601, default today)")
	cmd.Flags().StringArrayVarP(&exercises, "exercise", "e", nil, "NAME=REPSxKG,... (repeatable)")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "NAME=TEXT notes for an exercise (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("exercise")

	return cmd
}

// addExerciseSpec adds "NAME=10x60,8x62.5+" to the draft. The name is split
// at the last "=" so names may contain one.
func addExerciseSpec(d *journal.Draft, spec string) (string, int, error) {
	cut := strings.LastIndex(spec, "=")
	if cut < 0 {
		return "", 0, fmt.Errorf("--exercise %q must be NAME=SETS", spec)
	}
	name := strings.TrimSpace(spec[:cut])
	i, err := d.AddExercise(name)
	if err != nil {
		return "", 0, err
	}

	for k, set := range strings.Split(spec[cut+1:], ",") {
		set = strings.TrimSpace(set)
		superset := strings.HasSuffix(set, "+")
		set = strings.TrimSuffix(set, "+")

		repsStr, weightStr, ok := strings.Cut(strings.ToLower(set), "x")
		if !ok {
			return "", 0, fmt.Errorf("set %q of %s must be REPSxKG", set, name)
		}
		reps, err := strconv.Atoi(strings.TrimSpace(repsStr))
		if err != nil {
			return "", 0, fmt.Errorf("set %q of %s: bad reps: %w", set, name, err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil {
			return "", 0, fmt.Errorf("set %q of %s: bad weight: %w", set, name, err)
		}

		if k > 0 {
			if err := d.AddSet(i); err != nil {
				return "", 0, err
			}
		}
		if err := d.UpdateSet(i, k, models.FieldReps, float64(reps)); err != nil {
			return "", 0, err
		}
		if err := d.UpdateSet(i, k, models.FieldWeight, weight); err != nil {
			return "", 0, err
		}
		if superset {
			if err := d.SetSuperset(i, k, true); err != nil {
				return "", 0, err
			}
		}
	}
	return name, i, nil
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a logged session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			session, err := j.Get(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %q from %s?", session.Title, session.Date.In(a.loc).Format("Mon Jan 2 2006")))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return nil
				}
			}

			if err := j.Remove(cmd.Context(), session.ID); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", session.ID)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		format string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Merge sessions from a backup file, an Alpha Progression CSV or another server",
		Long:  "import merges sessions into the log. Sessions whose id is already present are skipped, so importing the same backup twice adds nothing. An http(s) URL is fetched from another ironprogress server's JSON export.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			incoming, err := readIncoming(cmd, args[0], format)
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Merge %d sessions from %s into the log?", len(incoming), args[0]))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing imported.")
					return nil
				}
			}

			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			added, err := j.Import(cmd.Context(), incoming)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new workouts.\n", added)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "input format: json or alpha")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func readIncoming(cmd *cobra.Command, src, format string) ([]models.WorkoutSession, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if format != "json" {
			return nil, fmt.Errorf("remote import only supports the json format")
		}
		return remote.NewClient(src).FetchExport(cmd.Context())
	}

	var r io.Reader
	if src == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("opening import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch format {
	case "json":
		return transfer.ReadSessions(r)
	case "alpha":
		return alpha.Parse(r)
	default:
		return nil, fmt.Errorf("unknown import format %q", format)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup or the plain-text ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("unknown export format %q", format)
			}
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			sessions := j.Sessions()

			if output == "-" {
				return writeExport(cmd.OutOrStdout(), format, sessions, a)
			}
			if output == "" {
				output = transfer.ExportFileName(format, a.now().In(a.loc))
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := writeExport(f, format, sessions, a); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sessions to %s\n", len(sessions), output)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format: json (re-importable) or text (ledger)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default: dated file name)")

	return cmd
}

func writeExport(w io.Writer, format string, sessions []models.WorkoutSession, a *app) error {
	if format == "text" {
		return transfer.WriteLedger(w, sessions, a.loc)
	}
	return transfer.WriteJSON(w, sessions)
}

func newCoachCmd(a *app) *cobra.Command {
	var (
		days int
		next bool
	)

	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Ask the coach for a weekly analysis or the next session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			j, err := a.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			c := a.newCoach(cmd.Context())

			if next {
				sessions := j.Sessions()
				models.SortByDate(sessions, true)
				_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Coach("Next session", c.SuggestNext(cmd.Context(), sessions)))
				return err
			}

			recent := analytics.LastDays(j.Sessions(), a.now(), days)
			text := c.WeeklyAnalysis(cmd.Context(), recent)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Coach(fmt.Sprintf("Last %d days", days), text))
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "analysis window in days (default coach.window_days)")
	cmd.Flags().BoolVar(&next, "next", false, "suggest the next session instead")
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if !cmd.Flags().Changed("days") {
			days = a.cfg.Coach.WindowDays
		}
	}

	return cmd
}
