package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/fitpilot/coach-chat/pkg/api/handler"
	"github.com/fitpilot/coach-chat/pkg/database"
	"github.com/fitpilot/coach-chat/pkg/logger"
	"github.com/fitpilot/coach-chat/pkg/openai"
	"github.com/fitpilot/coach-chat/pkg/provider"
	"github.com/fitpilot/coach-chat/pkg/repository"
	"github.com/fitpilot/coach-chat/pkg/services"
	"github.com/fitpilot/coach-chat/pkg/workers"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	PgURL    string `env:"DATABASE_URL"`
	PgHost   string `env:"DB_HOST" envDefault:"localhost:5432"`

	ChatProvider        string        `env:"CHAT_PROVIDER"`
	ChatMaxAttempts     int           `env:"CHAT_MAX_ATTEMPTS" envDefault:"3"`
	ChatBackoffBase     time.Duration `env:"CHAT_BACKOFF_BASE" envDefault:"250ms"`
	ChatMaxMessages     int           `env:"CHAT_MAX_MESSAGES" envDefault:"20"`
	ChatMinMessages     int           `env:"CHAT_MIN_MESSAGES" envDefault:"2"`
	ChatTokenBudget     int           `env:"CHAT_TOKEN_BUDGET" envDefault:"3000"`
	ChatMaxMessageChars int           `env:"CHAT_MAX_MESSAGE_CHARS" envDefault:"4000"`
	ChatMaxSystemChars  int           `env:"CHAT_MAX_SYSTEM_CHARS" envDefault:"6000"`
	ChatMemoryLimit     int           `env:"CHAT_MEMORY_LIMIT" envDefault:"5"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	db, err := database.NewPostgres(cfg.PgURL, cfg.PgHost)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}

	registry := provider.NewRegistry()
	if err := registry.Register("openai", openai.Factory); err != nil {
		return nil, fmt.Errorf("registering openai provider: %w", err)
	}

	memoryRepository := repository.NewMemoryRepository(db)

	chatBrain := services.NewChatBrain(
		services.ChatBrainConfig{
			ProviderName:    cfg.ChatProvider,
			MaxAttempts:     cfg.ChatMaxAttempts,
			BackoffBase:     cfg.ChatBackoffBase,
			MaxMessages:     cfg.ChatMaxMessages,
			MinMessages:     cfg.ChatMinMessages,
			TokenBudget:     cfg.ChatTokenBudget,
			MaxMessageChars: cfg.ChatMaxMessageChars,
			MaxSystemChars:  cfg.ChatMaxSystemChars,
			MemoryLimit:     cfg.ChatMemoryLimit,
		},
		registry,
		memoryRepository,
		nil,
	)

	chatHandler := handler.NewChat(chatBrain)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", chatHandler.GenerateResponse)

	return workers.Group{
		workers.NewHTTPServer(cfg.HTTPAddr, mux),
	}, nil
}
