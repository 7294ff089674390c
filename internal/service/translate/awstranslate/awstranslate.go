// Package awstranslate calls Amazon Translate TranslateText with static
// credentials taken from the settings snapshot.
package awstranslate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	qt "quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

type Config struct {
	// Endpoint overrides the regional endpoint, mostly for tests.
	Endpoint string
	Timeout  time.Duration
}

type Engine struct {
	cfg Config
	// buildable so the SDK can apply AWS_CA_BUNDLE through transport options
	client *awshttp.BuildableClient
}

var (
	_ qt.Engine            = (*Engine)(nil)
	_ qt.CredentialChecker = (*Engine)(nil)
)

func New(cfg Config) *Engine {
	client := awshttp.NewBuildableClient()
	if cfg.Timeout > 0 {
		client = client.WithTimeout(cfg.Timeout)
	}
	return &Engine{cfg: cfg, client: client}
}

func (e *Engine) Name() string { return settings.EngineAWS }

func (e *Engine) CheckCredentials(snap settings.Snapshot) error {
	if strings.TrimSpace(snap.AWS.SecretID) == "" {
		return qt.MissingCredential(e.Name(), "aws_access_key_id")
	}
	if strings.TrimSpace(snap.AWS.SecretKey) == "" {
		return qt.MissingCredential(e.Name(), "aws_secret_access_key")
	}
	return nil
}

func (e *Engine) Translate(ctx context.Context, req qt.Request, snap settings.Snapshot) (string, error) {
	if err := e.CheckCredentials(snap); err != nil {
		return "", err
	}

	region := snap.AWS.Region
	if region == "" {
		region = settings.DefaultAWSRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(snap.AWS.SecretID, snap.AWS.SecretKey, "")),
		config.WithHTTPClient(e.client),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return "", qt.EngineConfigError(e.Name(), err)
	}

	client := translate.NewFromConfig(awsCfg, func(o *translate.Options) {
		if e.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.Endpoint)
		}
	})

	out, err := client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(req.Text),
		SourceLanguageCode: aws.String("auto"),
		TargetLanguageCode: aws.String(qt.ProviderLanguageCode(req.Target)),
	})
	if err != nil {
		return "", e.classify(err)
	}
	if out.TranslatedText == nil {
		return "", qt.ParseError(e.Name(), errors.New("missing TranslatedText"))
	}
	return *out.TranslatedText, nil
}

func (e *Engine) classify(err error) error {
	var (
		sendErr  *smithyhttp.RequestSendError
		deserErr *smithy.DeserializationError
		apiErr   smithy.APIError
		respErr  *awshttp.ResponseError
		canceled *smithy.CanceledError
	)
	switch {
	case errors.As(err, &sendErr), errors.As(err, &canceled):
		return qt.TransportError(e.Name(), err)
	case errors.As(err, &deserErr):
		return qt.ParseError(e.Name(), err)
	case errors.As(err, &apiErr):
		pe := qt.ProviderError(e.Name(), apiErr.ErrorCode(), apiErr.ErrorMessage())
		if errors.As(err, &respErr) {
			pe.StatusCode = respErr.HTTPStatusCode()
		}
		return pe
	default:
		return qt.ParseError(e.Name(), err)
	}
}
