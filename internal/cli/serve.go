package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/mselheim/routegrader/internal/config"
	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/handler"
	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/middleware"
	"github.com/mselheim/routegrader/internal/router"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the grading HTTP server",
		Long: "Starts the upload API. Provider, model, API keys, timeout, and results\n" +
			"directory come from GRADER_* environment variables or a .env file.",
		RunE: runServe,
	}

	cmd.Flags().String("port", "", "Port to listen on (overrides GRADER_APP_PORT)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.AppPort = port
	}

	logger := newLogger()

	client, err := llm.New(llm.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	opts := grader.Options{
		MaxRetries:  cfg.MaxRetries,
		Temperature: 0,
		Logger:      logger,
	}
	gradeHandler := handler.NewGradeHandler(client, opts, cfg.ResultsDir, logger)

	app := fiber.New(fiber.Config{
		AppName:   "routegrader",
		BodyLimit: 32 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{GradeHandler: gradeHandler})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.HTTPAddress())
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "routegrader listening on %s (provider: %s)\n", cfg.HTTPAddress(), client.Name())

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-shutdownCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
