package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gamenight/internal/config"
	"gamenight/internal/game"
	"gamenight/internal/store"
	httpTransport "gamenight/internal/transport/http"
)

const releaseVersion = "0.1.0"

func main() {
	cobra.CheckErr(newCmd(config.Default()).Execute())
}

// newCmd wires flags and GAMENIGHT_* environment variables into the
// configuration, flags winning over environment over defaults.
func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GAMENIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "gamenight",
		Short:         "Multiplayer lobby and party game server.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Server.Bind, "bind", "b", cfg.Server.Bind, "address to bind to (env: GAMENIGHT_BIND)")
	fs.IntVarP(&cfg.Server.Port, "port", "p", cfg.Server.Port, "port to listen on (env: GAMENIGHT_PORT)")
	fs.IntVar(&cfg.Game.MinPlayers, "min-players", cfg.Game.MinPlayers, "minimum players to start a game (env: GAMENIGHT_MIN_PLAYERS)")
	fs.IntVar(&cfg.Game.MaxPlayers, "max-players", cfg.Game.MaxPlayers, "maximum players per lobby (env: GAMENIGHT_MAX_PLAYERS)")
	fs.IntVar(&cfg.Game.CodeLength, "code-length", cfg.Game.CodeLength, "lobby code length (env: GAMENIGHT_CODE_LENGTH)")
	fs.IntVar(&cfg.Game.TotalMatchups, "total-matchups", cfg.Game.TotalMatchups, "head-to-head matchups in round one (env: GAMENIGHT_TOTAL_MATCHUPS)")
	fs.DurationVar(&cfg.Game.StartDelay, "start-delay", cfg.Game.StartDelay, "pause between start and the ready check (env: GAMENIGHT_START_DELAY)")
	fs.IntVar(&cfg.Game.ResultsSeconds, "results-seconds", cfg.Game.ResultsSeconds, "round one results window in seconds (env: GAMENIGHT_RESULTS_SECONDS)")
	fs.IntVar(&cfg.Game.WritingSeconds, "writing-seconds", cfg.Game.WritingSeconds, "round three writing phase in seconds (env: GAMENIGHT_WRITING_SECONDS)")
	fs.IntVar(&cfg.Game.VotingSeconds, "voting-seconds", cfg.Game.VotingSeconds, "round three voting window in seconds (env: GAMENIGHT_VOTING_SECONDS)")
	fs.IntVar(&cfg.Game.Round3Results, "round3-results-seconds", cfg.Game.Round3Results, "round three results window in seconds (env: GAMENIGHT_ROUND3_RESULTS_SECONDS)")
	fs.DurationVar(&cfg.Game.SessionTimeout, "session-timeout", cfg.Game.SessionTimeout, "time before idle lobbies are removed (env: GAMENIGHT_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.Game.CleanupInterval, "cleanup-interval", cfg.Game.CleanupInterval, "how often idle lobbies are checked (env: GAMENIGHT_CLEANUP_INTERVAL)")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level: debug, info, warn, error (env: GAMENIGHT_LOG_LEVEL)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "log format: text or json (env: GAMENIGHT_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("gamenight v{{.Version}}\n")

	return cmd
}

func run(cfg *config.Config) error {
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting game night server",
		"addr", cfg.Addr(),
		"maxPlayers", cfg.Game.MaxPlayers,
	)

	st := store.New(logger)
	service := game.NewService(st, cfg.Game, logger)
	defer service.Close()

	server := httpTransport.NewServer(cfg, service, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
