package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pbaille/sagequill/internal/apperr"
	"github.com/pbaille/sagequill/internal/auth"
	"github.com/pbaille/sagequill/internal/config"
	"github.com/pbaille/sagequill/internal/domain"
	"github.com/pbaille/sagequill/internal/enrich"
	"github.com/pbaille/sagequill/internal/notes"
	"github.com/pbaille/sagequill/internal/prompt"
	"github.com/pbaille/sagequill/internal/provider"
	"github.com/pbaille/sagequill/internal/store"
)

var (
	configPath string
	dbPath     string
	userEmail  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sagequill",
		Short:         "Notes with on-demand AI summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: XDG config locations)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&userEmail, "user", "u", os.Getenv("SAGEQUILL_USER"), "email of the local user")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(promptsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if h := hint(err); h != "" {
			fmt.Fprintln(os.Stderr, h)
		}
		os.Exit(1)
	}
}

// app holds the wired services for one command run
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	prompts  *prompt.Source
	enricher *enrich.Service
	auth     *auth.Provider
	notes    *notes.Service
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	logger := newLogger(cfg.Log)

	// Ensure directory exists
	if dir := filepath.Dir(cfg.Store.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	s, err := store.New(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.NewSource(cfg.Prompts.Path, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	gen, err := provider.New(cfg.Provider.Name, provider.Options{
		APIKey:  cfg.APIKey(),
		Model:   cfg.Provider.Model,
		BaseURL: cfg.Provider.BaseURL,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	enricher := enrich.New(gen, prompts)
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    s,
		prompts:  prompts,
		enricher: enricher,
		auth:     auth.New(s, cfg.SessionTTL()),
		notes:    notes.New(s, enricher, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// session opens a session for the --user account
func (a *app) session(ctx context.Context) (*domain.Session, error) {
	if userEmail == "" {
		return nil, fmt.Errorf("no user selected: pass --user or set SAGEQUILL_USER")
	}
	return a.auth.LookupUser(ctx, strings.ToLower(strings.TrimSpace(userEmail)))
}

// hint suggests the command that fixes a missing user or note
func hint(err error) string {
	if !apperr.Is(err, apperr.ErrNotFound) {
		return ""
	}
	var ae *apperr.Error
	errors.As(err, &ae)
	switch ae.Details["kind"] {
	case "user":
		return "Use 'sagequill signup' to create the account."
	case "note":
		return "Use 'sagequill note list' or 'sagequill note search' to find it."
	}
	return ""
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h)
}
