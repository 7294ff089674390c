package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Locales with bundled message files.
var Locales = []string{"en", "zh"}

type Config struct {
	DebugMode    bool   `env:"DEBUG_MODE"`    // development logger
	SettingsPath string `env:"SETTINGS_PATH"` // empty = $XDG_CONFIG_HOME/quicktranslate/settings.json
	UILocale     string `env:"UI_LOCALE"`     // language of user-facing messages: en|zh

	// Shared HTTP client timeout for every engine
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT"`

	Zhipu     ZhipuConfig
	Tencent   TencentConfig
	Anthropic AnthropicConfig
	AWS       AWSConfig

	// Local HTTP bridge
	ServerAddr string `env:"SERVER_ADDR"`

	Desktop DesktopConfig
}

type ZhipuConfig struct {
	// Used when the settings file has no key.
	APIKey  string `env:"ZHIPU_API_KEY"`
	BaseURL string `env:"ZHIPU_BASE_URL"`
	Model   string `env:"ZHIPU_MODEL"`
}

type TencentConfig struct {
	Endpoint string `env:"TENCENT_ENDPOINT"`
}

type AnthropicConfig struct {
	BaseURL   string `env:"ANTHROPIC_BASE_URL"`
	Model     string `env:"ANTHROPIC_MODEL"`
	MaxTokens int    `env:"ANTHROPIC_MAX_TOKENS"`
}

type AWSConfig struct {
	Endpoint string `env:"AWS_ENDPOINT"` // empty = regional endpoint
}

// DesktopConfig drives the hotkey daemon.
type DesktopConfig struct {
	HotkeyDelay      time.Duration `env:"HOTKEY_DELAY"`       // wait after Alt+T before reading the clipboard
	PasteDelay       time.Duration `env:"PASTE_DELAY"`        // wait between focus change and Ctrl+V
	DefaultTarget    string        `env:"DEFAULT_TARGET"`     // target language for hotkey translations
	DefaultTone      string        `env:"DEFAULT_TONE"`       // Formal|Casual|Academic|Creative, empty = natural
	FailureSoundPath string        `env:"FAILURE_SOUND_PATH"` // mp3 or wav; empty = sound/failure.mp3 next to the binary
}

// Defaults returns the configuration before .env, environment and flags
// are applied.
func Defaults() *Config {
	return &Config{
		DebugMode:   false,
		UILocale:    "zh",
		HTTPTimeout: 30 * time.Second,
		Zhipu: ZhipuConfig{
			BaseURL: "https://open.bigmodel.cn/api/paas/v4/",
			Model:   "glm-4.6",
		},
		Tencent: TencentConfig{
			Endpoint: "https://tmt.tencentcloudapi.com",
		},
		Anthropic: AnthropicConfig{
			BaseURL:   "https://api.anthropic.com/v1",
			Model:     "claude-3-haiku-20240307",
			MaxTokens: 2048,
		},
		ServerAddr: "127.0.0.1:8787",
		Desktop: DesktopConfig{
			HotkeyDelay:   100 * time.Millisecond,
			PasteDelay:    300 * time.Millisecond,
			DefaultTarget: "zh",
		},
	}
}

// Load applies .env and the environment on top of Defaults(). Flags are
// bound later by the CLI, so callers should Validate again after parsing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.Desktop.PasteDelay < 0 || c.Desktop.HotkeyDelay < 0 {
		return fmt.Errorf("config: PASTE_DELAY and HOTKEY_DELAY must not be negative")
	}
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("config: ANTHROPIC_MAX_TOKENS must be positive, got %d", c.Anthropic.MaxTokens)
	}
	c.UILocale = strings.ToLower(strings.TrimSpace(c.UILocale))
	for _, l := range Locales {
		if c.UILocale == l {
			return nil
		}
	}
	return fmt.Errorf("config: unsupported UI_LOCALE %q (want one of %s)", c.UILocale, strings.Join(Locales, ", "))
}
