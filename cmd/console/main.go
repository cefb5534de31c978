package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/play"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

// ErrNoSaveStore is returned by save management when REDIS_URL is unset.
var ErrNoSaveStore = errors.New("saved games need a redis store; set REDIS_URL or --redis")

type options struct {
	content  string
	resume   string
	redisURL string
	logFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Play a scenario in the terminal",
		Long: `Starts an interactive game of the scenario at CONTENT_PATH (or --content).
Games are saved to Redis when REDIS_URL (or --redis) is set, otherwise they
last only as long as the process.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.content, "content", "", "scenario file to play (overrides CONTENT_PATH)")
	cmd.Flags().StringVar(&opts.resume, "resume", "", "ID of a saved game to continue")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "console.log", "where to write logs while the UI owns the terminal")
	cmd.PersistentFlags().StringVar(&opts.redisURL, "redis", "", "redis URL or host:port (overrides REDIS_URL)")

	cmd.AddCommand(newSavesCmd(opts))
	return cmd
}

func newSavesCmd(opts *options) *cobra.Command {
	saves := &cobra.Command{
		Use:   "saves",
		Short: "Manage saved games",
	}

	saves.AddCommand(&cobra.Command{
		Use:          "list",
		Short:        "List saved game IDs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSaveStore(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ids, err := store.ListGames(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved games.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id.String())
			}
			return nil
		},
	})

	saves.AddCommand(&cobra.Command{
		Use:          "delete <id>",
		Short:        "Delete a saved game",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid save ID %q: %w", args[0], err)
			}
			store, err := openSaveStore(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteGame(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	})

	return saves
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.content != "" {
		cfg.ContentPath = opts.content
	}
	if opts.redisURL != "" {
		cfg.RedisURL = opts.redisURL
	}
	return cfg, nil
}

func openSaveStore(cmd *cobra.Command, opts *options) (storage.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return nil, ErrNoSaveStore
	}
	log := logger.SetupWriter(cfg, cmd.ErrOrStderr())
	return openStore(cmd.Context(), cfg, log)
}

// openStore picks Redis when configured and an in-process store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, saved games will be lost on exit")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewRedisStore(cfg.RedisURL, cfg.SaveTTL, log)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForConnection(ctx, 5, time.Second); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return store, nil
}

func runConsole(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logOut, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logOut.Close() }()
	log := logger.SetupWriter(cfg, logOut)

	sc, err := scenario.LoadFile(cfg.ContentPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	session, err := startSession(ctx, sc, store, opts.resume, log)
	if err != nil {
		return err
	}

	ui, err := NewConsoleUI(ctx, session)
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	fmt.Printf("Your game ID is %s\n", session.ID)
	return nil
}

func startSession(ctx context.Context, sc *scenario.Scenario, store storage.Store, resume string, log *slog.Logger) (*play.Session, error) {
	if resume == "" {
		return play.NewSession(sc, store, log)
	}
	id, err := uuid.Parse(resume)
	if err != nil {
		return nil, fmt.Errorf("invalid save ID %q: %w", resume, err)
	}
	return play.ResumeSession(ctx, sc, store, id, log)
}
