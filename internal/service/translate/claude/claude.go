// Package claude translates through the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

const (
	DefaultModel     = anthropic.ModelClaude3Haiku20240307
	DefaultMaxTokens = 2048

	temperature float32 = 0.2
	maxErrBody          = 4096
)

type Config struct {
	// BaseURL includes the version segment, e.g. https://api.anthropic.com/v1.
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

type Engine struct {
	cfg Config
}

var (
	_ translate.Engine            = (*Engine)(nil)
	_ translate.CredentialChecker = (*Engine)(nil)
)

func New(cfg Config) *Engine {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Name() string { return settings.EngineAnthropic }

func (e *Engine) CheckCredentials(snap settings.Snapshot) error {
	if strings.TrimSpace(snap.Anthropic.APIKey) == "" {
		return translate.MissingCredential(e.Name(), "anthropic_api_key")
	}
	return nil
}

func (e *Engine) Translate(ctx context.Context, req translate.Request, snap settings.Snapshot) (string, error) {
	if err := e.CheckCredentials(snap); err != nil {
		return "", err
	}

	rec := &errorRecorder{next: e.cfg.HTTPClient.Transport}
	if rec.next == nil {
		rec.next = http.DefaultTransport
	}
	hc := *e.cfg.HTTPClient
	hc.Transport = rec

	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(&hc)}
	if e.cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(e.cfg.BaseURL, "/")))
	}
	client := anthropic.NewClient(snap.Anthropic.APIKey, opts...)

	t := temperature
	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       e.cfg.Model,
		System:      translate.SystemPrompt(req.Target, req.Tone),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(req.Text)},
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: &t,
	})
	if err != nil {
		return "", e.classify(err, rec)
	}

	if len(resp.Content) == 0 {
		return translate.NoContentPlaceholder, nil
	}
	return translate.StripCodeFences(resp.GetFirstContentText()), nil
}

func (e *Engine) classify(err error, rec *errorRecorder) error {
	var (
		urlErr *url.Error
		apiErr *anthropic.APIError
		reqErr *anthropic.RequestError
	)
	switch {
	case errors.As(err, &urlErr):
		return translate.TransportError(e.Name(), err)
	case errors.As(err, &apiErr):
		pe := translate.ProviderError(e.Name(), string(apiErr.Type), apiErr.Message)
		pe.StatusCode, pe.Body = rec.status, rec.body
		return pe
	case errors.As(err, &reqErr):
		body := rec.body
		if body == "" {
			body = http.StatusText(reqErr.StatusCode)
		}
		return translate.StatusError(e.Name(), reqErr.StatusCode, body)
	default:
		return translate.ParseError(e.Name(), err)
	}
}

// errorRecorder keeps the status and the leading bytes of an error response.
// The SDK decodes the body itself and drops it when the JSON does not match.
type errorRecorder struct {
	next   http.RoundTripper
	status int
	body   string
}

func (r *errorRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	r.status = resp.StatusCode
	r.body = string(b[:min(len(b), maxErrBody)])
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return resp, nil
}
