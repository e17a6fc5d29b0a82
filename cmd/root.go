// Package cmd wires the CLI: flag parsing, config loading, and launching
// the TUI with its store and watcher collaborators.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/app"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/config"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode/browse"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/nodb"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/outdated"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/watcher"
)

var (
	flagConfig string
	flagDB     string
	flagUser   string
)

var rootCmd = &cobra.Command{
	Use:   "cwf",
	Short: "Terminal front-end for the shared workshop database",
	Long: `cwf browses and edits field operation actions stored in a shared
SQLite database. Edits auto-save after a quiet period, and writes from
other clients show up live without clobbering what you are typing.`,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "database file path")
	rootCmd.Flags().StringVar(&flagUser, "user", "", "username recorded on first-touch assignment")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.DB.Path = flagDB
	}
	if flagUser != "" {
		cfg.User.Name = flagUser
	}

	if err := log.Init(cfg.Log.Path, cfg.Log.Level); err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	defer log.Close()

	dbPath := cfg.DB.DBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return runView(nodb.New(dbPath))
	}

	s, err := store.Open(dbPath)
	var schemaErr *store.SchemaError
	if errors.As(err, &schemaErr) {
		return runView(outdated.New(schemaErr.Found, schemaErr.Supported))
	}
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = s.Close() }()

	w, err := watcher.New(watcher.DefaultConfig(dbPath))
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := w.Broker().Subscribe(ctx)

	svc := mode.Services{
		Store:      s,
		Config:     cfg,
		ConfigPath: cfgPath,
		Username:   cfg.User.Username(),
	}

	shell := app.New(svc, browse.New(svc), events)
	p := tea.NewProgram(shell, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func runView(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
