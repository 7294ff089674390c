// Package settings persists the user's engine choice and provider
// credentials.
//
// Settings live in a single JSON file, by default
//
//	$XDG_CONFIG_HOME/quicktranslate/settings.json
//
// (or the platform user config dir). The file is written with 0600
// permissions. A missing file yields Defaults().
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	dirName  = "quicktranslate"
	fileName = "settings.json"

	DefaultTencentRegion = "ap-guangzhou"
	DefaultAWSRegion     = "us-east-1"
)

// Engine names.
const (
	EngineZhipu     = "zhipu"
	EngineTencent   = "tencent"
	EngineAnthropic = "anthropic"
	EngineAWS       = "aws"
)

// Engines lists every engine the store accepts.
var Engines = []string{EngineZhipu, EngineTencent, EngineAnthropic, EngineAWS}

var ErrInvalidEngine = errors.New("invalid engine name")

// AppSettings is the on-disk document.
type AppSettings struct {
	ActiveEngine string `json:"active_engine"`

	ZhipuAPIKey string `json:"zhipu_api_key,omitempty"`

	TencentSecretID  string `json:"tencent_secret_id,omitempty"`
	TencentSecretKey string `json:"tencent_secret_key,omitempty"`
	TencentRegion    string `json:"tencent_region,omitempty"`

	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`

	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty"`
	AWSRegion          string `json:"aws_region,omitempty"`
}

// Defaults returns the settings used when no file exists yet.
func Defaults() AppSettings {
	return AppSettings{
		ActiveEngine:  EngineZhipu,
		TencentRegion: DefaultTencentRegion,
		AWSRegion:     DefaultAWSRegion,
	}
}

// Snapshot is the read-only view handed to a single translation call.
type Snapshot struct {
	ActiveEngine string
	Zhipu        APIKeyCredentials
	Tencent      SecretCredentials
	Anthropic    APIKeyCredentials
	AWS          SecretCredentials
}

type APIKeyCredentials struct {
	APIKey string
}

type SecretCredentials struct {
	SecretID  string
	SecretKey string
	Region    string
}

// ValidEngine reports whether name is a known engine.
func ValidEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}

// Store reads and writes the settings file. Mutations are serialized.
type Store struct {
	path string
	// zhipuEnvKey is used when no Zhipu key is stored.
	zhipuEnvKey string

	mu sync.Mutex
}

// NewStore creates a store backed by path. An empty path resolves to
// DefaultPath().
func NewStore(path, zhipuEnvKey string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path, zhipuEnvKey: strings.TrimSpace(zhipuEnvKey)}, nil
}

// DefaultPath honours $XDG_CONFIG_HOME and falls back to os.UserConfigDir.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, dirName, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

func (s *Store) Path() string { return s.path }

// Load reads the settings file. A missing file is not an error.
func (s *Store) Load() (AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (AppSettings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return AppSettings{}, fmt.Errorf("read settings: %w", err)
	}

	st := Defaults()
	if err := json.Unmarshal(data, &st); err != nil {
		return AppSettings{}, fmt.Errorf("parse settings: %w", err)
	}
	if st.ActiveEngine == "" {
		st.ActiveEngine = EngineZhipu
	}
	return st, nil
}

// Save overwrites the settings file.
func (s *Store) Save(st AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *Store) save(st AppSettings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// update applies fn to the current settings and saves the result. A file
// that cannot be read or parsed is replaced by Defaults() plus the change.
func (s *Store) update(fn func(*AppSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		st = Defaults()
	}
	if err := fn(&st); err != nil {
		return err
	}
	return s.save(st)
}

func (s *Store) SetZhipuAPIKey(key string) error {
	return s.update(func(st *AppSettings) error {
		st.ZhipuAPIKey = strings.TrimSpace(key)
		return nil
	})
}

// SetTencentConfig stores the Tencent credential pair. An empty region
// falls back to DefaultTencentRegion.
func (s *Store) SetTencentConfig(secretID, secretKey, region string) error {
	return s.update(func(st *AppSettings) error {
		st.TencentSecretID = strings.TrimSpace(secretID)
		st.TencentSecretKey = strings.TrimSpace(secretKey)
		st.TencentRegion = strings.TrimSpace(region)
		if st.TencentRegion == "" {
			st.TencentRegion = DefaultTencentRegion
		}
		return nil
	})
}

func (s *Store) SetAnthropicAPIKey(key string) error {
	return s.update(func(st *AppSettings) error {
		st.AnthropicAPIKey = strings.TrimSpace(key)
		return nil
	})
}

func (s *Store) SetAWSConfig(accessKeyID, secretAccessKey, region string) error {
	return s.update(func(st *AppSettings) error {
		st.AWSAccessKeyID = strings.TrimSpace(accessKeyID)
		st.AWSSecretAccessKey = strings.TrimSpace(secretAccessKey)
		st.AWSRegion = strings.TrimSpace(region)
		if st.AWSRegion == "" {
			st.AWSRegion = DefaultAWSRegion
		}
		return nil
	})
}

// SetActiveEngine switches engines. Unknown names return ErrInvalidEngine
// and leave the file untouched.
func (s *Store) SetActiveEngine(engine string) error {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if !ValidEngine(engine) {
		return fmt.Errorf("%w: %q", ErrInvalidEngine, engine)
	}
	return s.update(func(st *AppSettings) error {
		st.ActiveEngine = engine
		return nil
	})
}

// Snapshot reads the file once and returns a detached copy for one call.
func (s *Store) Snapshot() (Snapshot, error) {
	st, err := s.Load()
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotOf(st), nil
}

func (s *Store) snapshotOf(st AppSettings) Snapshot {
	zhipuKey := st.ZhipuAPIKey
	if zhipuKey == "" {
		zhipuKey = s.zhipuEnvKey
	}
	region := st.TencentRegion
	if region == "" {
		region = DefaultTencentRegion
	}
	awsRegion := st.AWSRegion
	if awsRegion == "" {
		awsRegion = DefaultAWSRegion
	}
	return Snapshot{
		ActiveEngine: st.ActiveEngine,
		Zhipu:        APIKeyCredentials{APIKey: zhipuKey},
		Tencent: SecretCredentials{
			SecretID:  st.TencentSecretID,
			SecretKey: st.TencentSecretKey,
			Region:    region,
		},
		Anthropic: APIKeyCredentials{APIKey: st.AnthropicAPIKey},
		AWS: SecretCredentials{
			SecretID:  st.AWSAccessKeyID,
			SecretKey: st.AWSSecretAccessKey,
			Region:    awsRegion,
		},
	}
}

// Masked returns a copy of st safe to display.
func Masked(st AppSettings) AppSettings {
	out := st
	out.ZhipuAPIKey = maskIfSet(st.ZhipuAPIKey)
	out.TencentSecretKey = maskIfSet(st.TencentSecretKey)
	out.AnthropicAPIKey = maskIfSet(st.AnthropicAPIKey)
	out.AWSSecretAccessKey = maskIfSet(st.AWSSecretAccessKey)
	return out
}

// MaskKey returns a masked version of a key for display and logs.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskIfSet(key string) string {
	if key == "" {
		return ""
	}
	return MaskKey(key)
}
