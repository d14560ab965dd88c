package main

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/learncards/internal/config"
	"github.com/at-ishikawa/learncards/internal/learning"
	"github.com/at-ishikawa/learncards/internal/translation"
	"github.com/at-ishikawa/learncards/internal/translation/google"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openRepository loads the configuration and opens the card repository on it.
func openRepository(ctx context.Context) (*config.Config, *learning.CardRepository, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	repo, closeFn, err := learning.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("learning.Open() > %w", err)
	}
	return cfg, repo, closeFn, nil
}

func newTranslator(cfg config.TranslationConfig) (*translation.Translator, func() error) {
	googleClient := google.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.MaxRetryAttempts)

	var client translation.Client = googleClient
	if cfg.CacheDirectory != "" {
		client = translation.NewFileCache(cfg.CacheDirectory, client)
	}
	return translation.NewTranslator(client, cfg.TargetLanguage), googleClient.Close
}
