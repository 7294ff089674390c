// Package glm translates through Zhipu's OpenAI-compatible chat completion
// endpoint.
package glm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

const (
	DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4/"
	DefaultModel   = "glm-4.6"

	temperature = 0.2
	topP        = 0.9
	maxErrBody  = 4096
)

type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Engine is stateless after construction; the API key comes from the
// snapshot on every call.
type Engine struct {
	client openai.Client
	model  string
}

var (
	_ translate.Engine            = (*Engine)(nil)
	_ translate.CredentialChecker = (*Engine)(nil)
)

func New(cfg Config) *Engine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Engine{client: openai.NewClient(opts...), model: cfg.Model}
}

func (e *Engine) Name() string { return settings.EngineZhipu }

func (e *Engine) CheckCredentials(snap settings.Snapshot) error {
	if strings.TrimSpace(snap.Zhipu.APIKey) == "" {
		return translate.MissingCredential(e.Name(), "zhipu_api_key")
	}
	return nil
}

func (e *Engine) Translate(ctx context.Context, req translate.Request, snap settings.Snapshot) (string, error) {
	if err := e.CheckCredentials(snap); err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translate.SystemPrompt(req.Target, req.Tone)),
			openai.UserMessage(req.Text),
		},
		Temperature: openai.Float(temperature),
		TopP:        openai.Float(topP),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfText: &shared.ResponseFormatTextParam{},
		},
	}

	var httpResp *http.Response
	completion, err := e.client.Chat.Completions.New(ctx, params,
		option.WithAPIKey(snap.Zhipu.APIKey),
		option.WithJSONSet("stream", false),
		option.WithJSONSet("do_sample", false),
		option.WithResponseInto(&httpResp),
	)
	if err != nil {
		return "", e.classify(err, httpResp)
	}

	if len(completion.Choices) == 0 {
		return translate.NoContentPlaceholder, nil
	}
	return translate.StripCodeFences(completion.Choices[0].Message.Content), nil
}

// classify maps an SDK error to the translate taxonomy. The SDK leaves the
// error body readable on resp for any status >= 400.
func (e *Engine) classify(err error, resp *http.Response) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return translate.StatusError(e.Name(), apiErr.StatusCode, readBody(apiErr.Response))
	}
	if resp == nil {
		return translate.TransportError(e.Name(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return translate.StatusError(e.Name(), resp.StatusCode, readBody(resp))
	}
	return translate.ParseError(e.Name(), err)
}

func readBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	if len(b) == 0 {
		return resp.Status
	}
	return string(bytes.TrimSpace(b))
}
