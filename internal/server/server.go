// Package server exposes the dispatcher and the settings store to a local
// UI front-end over HTTP.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"quicktranslate/internal/i18n"
	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

const shutdownTimeout = 5 * time.Second

type Translator interface {
	Translate(ctx context.Context, text, target, tone string) (string, error)
}

// SettingsStore is the subset of *settings.Store the bridge needs.
type SettingsStore interface {
	Load() (settings.AppSettings, error)
	SetActiveEngine(engine string) error
	SetZhipuAPIKey(key string) error
	SetTencentConfig(secretID, secretKey, region string) error
	SetAnthropicAPIKey(key string) error
	SetAWSConfig(accessKeyID, secretAccessKey, region string) error
}

type Server struct {
	app    *fiber.App
	tr     Translator
	store  SettingsStore
	msgs   *i18n.Messages
	locale string
	logger *zap.SugaredLogger
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	Tone       string `json:"tone"`
}

type engineRequest struct {
	Engine string `json:"engine"`
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

type secretRequest struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

func New(tr Translator, store SettingsStore, msgs *i18n.Messages, locale string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		tr:     tr,
		store:  store,
		msgs:   msgs,
		locale: locale,
		logger: logger,
	}

	api := s.app.Group("/api")
	api.Post("/translate", s.handleTranslate)
	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings/engine", s.handleSetEngine)
	api.Put("/settings/zhipu", s.handleSetZhipu)
	api.Put("/settings/tencent", s.handleSetTencent)
	api.Put("/settings/anthropic", s.handleSetAnthropic)
	api.Put("/settings/aws", s.handleSetAWS)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP bridge listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		s.logger.Warnw("Graceful shutdown failed", "error", err)
		return err
	}
	s.logger.Infow("HTTP bridge stopped")
	return nil
}

func (s *Server) handleTranslate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	out, err := s.tr.Translate(c.UserContext(), req.Text, req.TargetLang, req.Tone)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"translation": s.msgs.Translation(s.requestLocale(c), out)})
}

func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	st, err := s.store.Load()
	if err != nil {
		s.logger.Errorw("Failed to load settings", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(settings.Masked(st))
}

func (s *Server) handleSetEngine(c *fiber.Ctx) error {
	var req engineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return s.saved(c, s.store.SetActiveEngine(req.Engine))
}

func (s *Server) handleSetZhipu(c *fiber.Ctx) error {
	var req apiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return s.saved(c, s.store.SetZhipuAPIKey(req.APIKey))
}

func (s *Server) handleSetTencent(c *fiber.Ctx) error {
	var req secretRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return s.saved(c, s.store.SetTencentConfig(req.SecretID, req.SecretKey, req.Region))
}

func (s *Server) handleSetAnthropic(c *fiber.Ctx) error {
	var req apiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return s.saved(c, s.store.SetAnthropicAPIKey(req.APIKey))
}

func (s *Server) handleSetAWS(c *fiber.Ctx) error {
	var req secretRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return s.saved(c, s.store.SetAWSConfig(req.SecretID, req.SecretKey, req.Region))
}

func (s *Server) saved(c *fiber.Ctx, err error) error {
	if err != nil {
		if errors.Is(err, settings.ErrInvalidEngine) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.Errorw("Failed to save settings", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": s.msgs.T(s.requestLocale(c), "settings_saved", nil)})
}

// fail maps a translation error to a status code and a localized message.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	if translate.KindOf(err) == translate.KindConfig {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error": s.msgs.Error(s.requestLocale(c), err),
		"kind":  translate.KindOf(err).String(),
	})
}

// requestLocale prefers the first Accept-Language tag over the configured locale.
func (s *Server) requestLocale(c *fiber.Ctx) string {
	al := c.Get(fiber.HeaderAcceptLanguage)
	if al == "" {
		return s.locale
	}
	first, _, _ := strings.Cut(al, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}
