package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/ironprogress/internal/catalog"
	"github.com/claude/ironprogress/internal/coach"
	"github.com/claude/ironprogress/internal/config"
	"github.com/claude/ironprogress/internal/journal"
	"github.com/claude/ironprogress/internal/storage"
)

// app carries what every command needs once the config is loaded.
type app struct {
	configPath string
	verbose    bool

	cfg   *config.Config
	loc   *time.Location
	log   *slog.Logger
	now   func() time.Time
	store storage.Store
	j     *journal.Journal
}

func execute(args []string) error {
	a := &app{now: time.Now}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ironprogress",
		Short:         "IronProgress: log strength training and track progression",
		Long:          "ironprogress records workout sessions (exercises, sets, reps and weight), shows progression and lifetime totals, imports and exports backups, and asks a generative model for coaching summaries.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (defaults plus IRONPROGRESS_* env when empty)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newSessionsCmd(a),
		newStatsCmd(a),
		newExercisesCmd(a),
		newProgressionCmd(a),
		newLogCmd(a),
		newDeleteCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newCoachCmd(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.loc = loc
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// openJournal opens the configured store and loads the session collection on
// first use.
func (a *app) openJournal(ctx context.Context) (*journal.Journal, error) {
	if a.j != nil {
		return a.j, nil
	}
	store, err := storage.Open(ctx, a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.cfg.Storage.Driver, err)
	}
	j, err := journal.Open(ctx, store, catalog.Seed(), a.log)
	if err != nil {
		store.Close()
		return nil, err
	}
	a.store = store
	a.j = j
	return j, nil
}

// newCoach builds a coach backed by Gemini when an API key is configured.
// Without one every request degrades to the fixed fallback texts.
func (a *app) newCoach(ctx context.Context) *coach.Coach {
	var gen coach.Generator
	if a.cfg.Coach.APIKey != "" {
		g, err := coach.NewGeminiGenerator(ctx, a.cfg.Coach.APIKey, a.cfg.Coach.Model)
		if err != nil {
			a.log.Warn("coach unavailable", "error", err)
		} else {
			gen = g
		}
	} else {
		a.log.Debug("no coach api key configured")
	}
	return coach.New(gen, a.loc, a.log)
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.j = nil
	return err
}

// confirm asks a yes/no question on the command's streams. Anything other
// than y or yes is a no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
