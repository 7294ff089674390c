// Package i18n renders user-facing messages in the UI locale.
package i18n

import (
	"embed"
	"errors"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"quicktranslate/internal/service/translate"
)

//go:embed active.*.toml
var localeFS embed.FS

var messageFiles = []string{"active.en.toml", "active.zh.toml"}

// Messages wraps a go-i18n bundle.
type Messages struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// New loads the embedded message files. An unparsable defaultLocale falls
// back to Chinese.
func New(defaultLocale string) (*Messages, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.Chinese
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range messageFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}
	return &Messages{bundle: bundle, defaultLanguage: tag}, nil
}

// T renders id for locale, falling back to the default locale and then to
// id itself.
func (m *Messages) T(locale, id string, data map[string]any) string {
	// go-i18n returns the default-locale text together with a not-found error.
	msg, err := m.localize(locale, id, data)
	if err != nil && msg == "" {
		return id
	}
	return msg
}

func (m *Messages) localize(locale, id string, data map[string]any) (string, error) {
	languages := make([]string, 0, 2)
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, m.defaultLanguage.String())

	return i18n.NewLocalizer(m.bundle, languages...).Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
}

// Error renders err for the user. Errors outside the translate taxonomy
// are returned as their plain text.
func (m *Messages) Error(locale string, err error) string {
	if err == nil {
		return ""
	}
	var te *translate.Error
	if !errors.As(err, &te) {
		return err.Error()
	}

	switch te.Kind {
	case translate.KindConfig:
		switch {
		case errors.Is(te, translate.ErrMissingCredential):
			if msg, _ := m.localize(locale, "missing_"+te.Message, nil); msg != "" {
				return msg
			}
			return m.T(locale, "missing_credential", map[string]any{"Engine": te.Engine, "Field": te.Message})
		case errors.Is(te, translate.ErrUnknownEngine):
			return m.T(locale, "unknown_engine", map[string]any{"Engine": te.Engine})
		case errors.Is(te, translate.ErrEngineConfig):
			return m.T(locale, "engine_config_failed", map[string]any{"Engine": te.Engine, "Cause": te.Message})
		default:
			return m.T(locale, "settings_unreadable", map[string]any{"Cause": causeText(te)})
		}
	case translate.KindTransport:
		return m.T(locale, "transport_failed", map[string]any{"Cause": causeText(te)})
	case translate.KindProtocol:
		if te.Code != "" {
			return m.T(locale, "protocol_code", map[string]any{"Engine": te.Engine, "Code": te.Code, "Message": te.Message})
		}
		return m.T(locale, "protocol_status", map[string]any{"Status": te.StatusCode, "Body": te.Body})
	case translate.KindParse:
		return m.T(locale, "parse_failed", map[string]any{"Cause": causeText(te)})
	default:
		return te.Error()
	}
}

// Translation localizes the no-content placeholder engines return and passes
// any other output through.
func (m *Messages) Translation(locale, out string) string {
	if out == translate.NoContentPlaceholder {
		return m.T(locale, "no_content", nil)
	}
	return out
}

func causeText(te *translate.Error) string {
	if te.Err == nil {
		return te.Message
	}
	return te.Err.Error()
}
