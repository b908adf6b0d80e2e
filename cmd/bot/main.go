package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"data-chatter/internal/chat"
	"data-chatter/internal/config"
	"data-chatter/internal/llm"
	"data-chatter/internal/render"
	"data-chatter/internal/scheduler"
	"data-chatter/internal/session"
	"data-chatter/internal/telegram"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("data-chatter failed")
	}
}

func newRootCmd() *cobra.Command {
	var envFile, logLevel string
	cmd := &cobra.Command{
		Use:           "data-chatter",
		Short:         "Chat with an LLM about an uploaded CSV dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil {
				log.Warn().Err(err).Str("path", envFile).Msg(".env file not loaded")
			}
			cfg, err := config.New()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			setupLogging(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path to a .env file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	return cmd
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	client := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout)

	orchestrator := chat.NewOrchestrator(
		session.NewProvisioner(client, client, cfg.ContainerName),
		client,
		render.NewNormalizer(client),
		readSystemPrompt(cfg.SystemPromptPath),
		cfg.RequestTimeout,
	)

	sessions := session.NewRegistry(session.Settings{
		Model:       cfg.OpenAIModel,
		Temperature: cfg.DefaultTemperature,
	})

	sched := scheduler.New()
	sched.Register("session_sweep", cfg.SessionSweepSchedule, func(ctx context.Context) error {
		if n := sessions.EvictIdle(cfg.SessionIdleTTL); n > 0 {
			log.Info().Int("evicted", n).Int("active", sessions.Len()).Msg("idle sessions evicted")
		}
		return nil
	})
	if err := sched.Start(); err != nil {
		return errors.Wrap(err, "start scheduler")
	}

	bot, err := telegram.New(cfg.TelegramBotToken, sessions, orchestrator, cfg.MaxDatasetBytes)
	if err != nil {
		sched.Stop()
		return errors.Wrap(err, "failed to create bot")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bot.Start(gctx)
		if gctx.Err() == nil {
			return errors.New("telegram updates channel closed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if sched.IsRunning() {
			sched.Stop()
		}
		return nil
	})
	return g.Wait()
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("system prompt unreadable, using built-in instructions")
		return ""
	}
	return string(data)
}
