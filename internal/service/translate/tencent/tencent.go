// Package tencent calls Tencent Machine Translation (TMT) TextTranslate with
// a TC3-HMAC-SHA256 signed request.
package tencent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
	"quicktranslate/internal/signer"
)

const (
	DefaultEndpoint = "https://tmt.tencentcloudapi.com"

	service     = "tmt"
	action      = "TextTranslate"
	version     = "2018-03-21"
	contentType = "application/json"
	maxBody     = 1 << 20
	maxErrBody  = 4096
)

type Config struct {
	// Endpoint is scheme://host. Its host is the one that gets signed.
	Endpoint   string
	HTTPClient *http.Client
	// Now is the signing clock.
	Now func() time.Time
}

type Engine struct {
	endpoint string
	host     string
	http     *http.Client
	now      func() time.Time
}

var (
	_ translate.Engine            = (*Engine)(nil)
	_ translate.CredentialChecker = (*Engine)(nil)
)

func New(cfg Config) (*Engine, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("tencent: invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		endpoint: u.Scheme + "://" + u.Host + "/",
		host:     u.Host,
		http:     cfg.HTTPClient,
		now:      cfg.Now,
	}, nil
}

func (e *Engine) Name() string { return settings.EngineTencent }

func (e *Engine) CheckCredentials(snap settings.Snapshot) error {
	if strings.TrimSpace(snap.Tencent.SecretID) == "" {
		return translate.MissingCredential(e.Name(), "tencent_secret_id")
	}
	if strings.TrimSpace(snap.Tencent.SecretKey) == "" {
		return translate.MissingCredential(e.Name(), "tencent_secret_key")
	}
	return nil
}

type textTranslateRequest struct {
	SourceText string
	Source     string
	Target     string
	ProjectId  int
}

type envelope struct {
	Response struct {
		TargetText *string
		RequestId  string
		Error      *struct {
			Code    string
			Message string
		}
	}
}

func (e *Engine) Translate(ctx context.Context, req translate.Request, snap settings.Snapshot) (string, error) {
	if err := e.CheckCredentials(snap); err != nil {
		return "", err
	}

	// The signed hash and the request body share this slice.
	payload, err := json.Marshal(textTranslateRequest{
		SourceText: req.Text,
		Source:     "auto",
		Target:     translate.ProviderLanguageCode(req.Target),
		ProjectId:  0,
	})
	if err != nil {
		return "", fmt.Errorf("tencent: encode payload: %w", err)
	}

	region := snap.Tencent.Region
	if region == "" {
		region = settings.DefaultTencentRegion
	}
	headers := signer.Headers(signer.Params{
		SecretID:    snap.Tencent.SecretID,
		SecretKey:   snap.Tencent.SecretKey,
		Host:        e.host,
		Service:     service,
		Action:      action,
		Version:     version,
		Region:      region,
		ContentType: contentType,
		Timestamp:   e.now(),
		Payload:     payload,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", translate.TransportError(e.Name(), err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Host = e.host

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return "", translate.TransportError(e.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return "", translate.StatusError(e.Name(), resp.StatusCode, string(bytes.TrimSpace(b)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", translate.TransportError(e.Name(), err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", translate.ParseError(e.Name(), err)
	}
	// Errors come back inside a 200 envelope.
	if apiErr := env.Response.Error; apiErr != nil {
		return "", translate.ProviderError(e.Name(), apiErr.Code, apiErr.Message)
	}
	if env.Response.TargetText == nil {
		return "", translate.ParseError(e.Name(), errors.New("missing Response.TargetText"))
	}
	return *env.Response.TargetText, nil
}
