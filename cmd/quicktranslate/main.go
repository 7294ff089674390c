package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"quicktranslate/internal/app/dispatcher"
	"quicktranslate/internal/cli"
	"quicktranslate/internal/config"
	"quicktranslate/internal/i18n"
	"quicktranslate/internal/logging"
	"quicktranslate/internal/service/translate/awstranslate"
	"quicktranslate/internal/service/translate/claude"
	"quicktranslate/internal/service/translate/glm"
	"quicktranslate/internal/service/translate/tencent"
	"quicktranslate/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, closeDeps := cli.NewRoot(cfg, build)
	err = root.ExecuteContext(ctx)
	closeDeps()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func build(cfg *config.Config) (*cli.Deps, error) {
	logger, flush, err := logging.New(cfg.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := settings.NewStore(cfg.SettingsPath, cfg.Zhipu.APIKey)
	if err != nil {
		flush()
		return nil, err
	}
	msgs, err := i18n.New(cfg.UILocale)
	if err != nil {
		flush()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	tmt, err := tencent.New(tencent.Config{Endpoint: cfg.Tencent.Endpoint, HTTPClient: httpClient})
	if err != nil {
		flush()
		return nil, err
	}
	d := dispatcher.New(store, logger,
		glm.New(glm.Config{BaseURL: cfg.Zhipu.BaseURL, Model: cfg.Zhipu.Model, HTTPClient: httpClient}),
		tmt,
		claude.New(claude.Config{
			BaseURL:    cfg.Anthropic.BaseURL,
			Model:      cfg.Anthropic.Model,
			MaxTokens:  cfg.Anthropic.MaxTokens,
			HTTPClient: httpClient,
		}),
		awstranslate.New(awstranslate.Config{Endpoint: cfg.AWS.Endpoint, Timeout: cfg.HTTPTimeout}),
	)

	logger.Debugw("Configuration loaded",
		"settings", store.Path(),
		"engines", d.Engines(),
		"locale", cfg.UILocale,
		"timeout", cfg.HTTPTimeout.String())

	return &cli.Deps{
		Translator: d,
		Store:      store,
		Messages:   msgs,
		Logger:     logger,
		Close:      flush,
	}, nil
}
