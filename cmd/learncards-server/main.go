package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/learncards/internal/bootstrap"
	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/learning"
	"github.com/at-ishikawa/learncards/internal/reminder"
	"github.com/at-ishikawa/learncards/internal/server"
	"github.com/at-ishikawa/learncards/internal/translation"
	"github.com/at-ishikawa/learncards/internal/translation/google"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "learncards-server",
		Short:         "Learning cards HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("godotenv.Load() > %w", err)
			}
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	repo, closeRepo, err := learning.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("learning.Open() > %w", err)
	}
	app.AddShutdownHook("progress", func(ctx context.Context) error {
		return closeRepo()
	})

	translationClient := google.NewClient(
		cfg.Translation.BaseURL,
		time.Duration(cfg.Translation.TimeoutSeconds)*time.Second,
		cfg.Translation.MaxRetryAttempts,
	)
	app.AddShutdownHook("translation", func(ctx context.Context) error {
		return translationClient.Close()
	})
	var client translation.Client = translationClient
	if cfg.Translation.CacheDirectory != "" {
		client = translation.NewFileCache(cfg.Translation.CacheDirectory, client)
	}
	translator := translation.NewTranslator(client, cfg.Translation.TargetLanguage)

	if cfg.Reminder.Schedule != "" {
		r, err := reminder.New(cfg.Reminder.Schedule, repo)
		if err != nil {
			return fmt.Errorf("reminder.New() > %w", err)
		}
		r.Start()
		app.AddShutdownHook("reminder", r.Stop)
		slog.Default().Info("reminder scheduled", slog.String("schedule", cfg.Reminder.Schedule))
	}

	handler, err := server.NewHandler(repo, translator)
	if err != nil {
		return fmt.Errorf("server.NewHandler() > %w", err)
	}
	srv := newHTTPServer(cfg.Server, handler.Routes())
	app.AddShutdownHook("http", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           corsMiddleware(h2c.NewHandler(handler, &http2.Server{}), cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
