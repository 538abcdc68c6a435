// Package config loads and persists the shell configuration.
//
// Sources are layered with koanf, lowest priority first: built-in defaults,
// the YAML config file, MINIMAL_* environment variables and command-line
// flags. Only keys present in the defaults can be written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/yurixander/minimal/pkg/schema"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: MINIMAL_ENGINE__MAX_ITERATIONS.
const EnvPrefix = "MINIMAL_"

// ErrUnknownKey is returned when writing a key the defaults do not define.
var ErrUnknownKey = errors.New("unknown config key")

// Config is the decoded configuration.
type Config struct {
	LogLevel    string        `koanf:"log_level"`
	HistoryFile string        `koanf:"history_file"`
	Storage     StorageConfig `koanf:"storage"`
	Engine      EngineConfig  `koanf:"engine"`
	GPT         GPTConfig     `koanf:"gpt"`
	Splash      SplashConfig  `koanf:"splash"`
	Metrics     MetricsConfig `koanf:"metrics"`
}

type StorageConfig struct {
	Backend string      `koanf:"backend"`
	Path    string      `koanf:"path"`
	Redis   RedisConfig `koanf:"redis"`

	// EncryptionKey enables AES-256 encryption of stored values when set
	// (hex or base64).
	EncryptionKey string `koanf:"encryption_key"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

type EngineConfig struct {
	MaxIterations   int           `koanf:"max_iterations"`
	CommandTimeout  time.Duration `koanf:"command_timeout"`
	ListenerTimeout time.Duration `koanf:"listener_timeout"`
	InitTimeout     time.Duration `koanf:"init_timeout"`
}

type GPTConfig struct {
	Model        string `koanf:"model"`
	MaxTokens    int    `koanf:"max_tokens"`
	MaxHistory   int    `koanf:"max_history"`
	SystemPrompt string `koanf:"system_prompt"`
}

type SplashConfig struct {
	FetchHeadlines bool          `koanf:"fetch_headlines"`
	HeadlineCount  int           `koanf:"headline_count"`
	Timeout        time.Duration `koanf:"timeout"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Dir returns the directory holding the config file and local data.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "minimal")
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Defaults returns the built-in configuration as flat dotted keys.
func Defaults() map[string]any {
	dir := Dir()
	return map[string]any{
		"log_level":               "verbose",
		"history_file":            filepath.Join(dir, "history"),
		"storage.backend":         "file",
		"storage.path":            filepath.Join(dir, "storage"),
		"storage.redis.addr":      "localhost:6379",
		"storage.redis.password":  "",
		"storage.redis.db":        0,
		"storage.redis.prefix":    "minimal:kv:",
		"storage.encryption_key":  "",
		"engine.max_iterations":   100,
		"engine.command_timeout":  "5m",
		"engine.listener_timeout": "10s",
		"engine.init_timeout":     "10s",
		"gpt.model":               "gemini-2.5-flash",
		"gpt.max_tokens":          1024,
		"gpt.max_history":         20,
		"gpt.system_prompt":       "You are a helpful assistant inside a terminal shell. Answer concisely using Markdown.",
		"splash.fetch_headlines":  true,
		"splash.headline_count":   5,
		"splash.timeout":          "3s",
		"metrics.addr":            "",
	}
}

// Manager owns the layered configuration and writes changes back to the file.
type Manager struct {
	mu    sync.RWMutex
	path  string
	flags *pflag.FlagSet
	k     *koanf.Koanf
	cfg   Config
}

// Load reads the configuration from path (DefaultPath when empty). A
// missing file is created with the defaults. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Manager, error) {
	if path == "" {
		path = DefaultPath()
	}
	m := &Manager{path: path, flags: flags}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaults(path); err != nil {
			return nil, err
		}
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads every source.
func (m *Manager) Reload() error {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if _, err := os.Stat(m.path); err == nil {
		if err := k.Load(file.Provider(m.path), yaml.Parser()); err != nil {
			return fmt.Errorf("error reading config file %s: %w", m.path, err)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if m.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(m.flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "debug":
				if f.Value.String() == "true" {
					return "log_level", "debug"
				}
				return "", nil
			case "log-level":
				return "log_level", f.Value.String()
			default:
				return "", nil
			}
		}), nil); err != nil {
			return fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.k = k
	m.cfg = cfg
	return nil
}

// Config returns the decoded configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Path returns the config file location.
func (m *Manager) Path() string { return m.path }

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	_, ok := Defaults()[key]
	return ok
}

// Keys returns every known key, sorted.
func (m *Manager) Keys() []string {
	defaults := Defaults()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the effective value of a known key.
func (m *Manager) Get(key string) (any, bool) {
	if !IsKey(key) {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.k.Get(key), true
}

// Set validates value against Schema, writes key to the config file and
// reloads. Only known keys are accepted.
func (m *Manager) Set(key string, value any) error {
	if !IsKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	s := Schema()
	value = schema.Normalize(s[key], value)
	if err := schema.Validate(s, map[string]any{key: value}); err != nil {
		return err
	}

	fk := koanf.New(".")
	if _, err := os.Stat(m.path); err == nil {
		if err := fk.Load(file.Provider(m.path), yaml.Parser()); err != nil {
			return fmt.Errorf("error reading config file %s: %w", m.path, err)
		}
	}
	if err := fk.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := writeYAML(m.path, fk.Raw()); err != nil {
		return err
	}
	return m.Reload()
}

// AutoParse turns a command-line token into a number, boolean or string.
func AutoParse(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func writeDefaults(path string) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return writeYAML(path, k.Raw())
}

func writeYAML(path string, data map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}
	out, err := yamlv3.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
