package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/justify/layout"
)

// DefaultPath is where the CLI looks for defaults when --config is not given.
const DefaultPath = "justify.yaml"

// Config 是进程级默认配置，来自 YAML 文件。
type Config struct {
	Width       int    `yaml:"width"`
	Exponent    int    `yaml:"exponent"`
	Algorithm   string `yaml:"algorithm"`
	Hyphenate   bool   `yaml:"hyphenate"`
	Penalty     int64  `yaml:"penalty"`
	Marker      string `yaml:"marker"`
	MinFragment int    `yaml:"min_fragment"`

	LogLevel string       `yaml:"log_level"`
	Cache    CacheConfig  `yaml:"cache"`
	Server   ServerConfig `yaml:"server"`
}

// CacheConfig configures the result cache used by the HTTP server.
// An empty Redis address selects the in-memory cache.
type CacheConfig struct {
	Redis  string        `yaml:"redis"`
	TTL    time.Duration `yaml:"ttl"`
	Prefix string        `yaml:"prefix"`
	Size   int           `yaml:"size"`
}

// ServerConfig configures `justify serve`.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	MaxBody int64  `yaml:"max_body"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Width:       40,
		Exponent:    layout.DefaultExponent,
		Algorithm:   string(layout.AlgorithmOptimal),
		Penalty:     int64(layout.DefaultHyphenPenalty),
		Marker:      layout.DefaultMarker,
		MinFragment: layout.DefaultMinFragment,
		LogLevel:    "info",
		Cache: CacheConfig{
			TTL:    10 * time.Minute,
			Prefix: "justify:",
			Size:   1024,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			MaxBody: 1 << 20,
		},
	}
}

// Load 读取 YAML 配置并覆盖在默认值之上。文件不存在时直接返回默认值。
func Load(path string) (Config, error) {
	return LoadOver(path, Default())
}

// LoadOver is Load with caller-supplied defaults, e.g. a width taken from the
// terminal.
func LoadOver(path string, cfg Config) (Config, error) {
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over cfg; keys absent from data keep their values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	return nil
}

// Options converts the breaking settings into layout options.
func (c Config) Options() layout.Options {
	opts := layout.DefaultOptions(c.Width)
	opts.Exponent = c.Exponent
	opts.Algorithm = layout.Algorithm(c.Algorithm)
	opts.Hyphenate = c.Hyphenate
	opts.HyphenPenalty = layout.Cost(c.Penalty)
	opts.Marker = c.Marker
	if c.MinFragment > 0 && c.MinFragment != layout.DefaultMinFragment {
		opts.Hyphenator = layout.FragmentHyphenator{MinFragment: c.MinFragment}
	}
	return opts
}

// Validate checks the breaking settings the same way layout.Build would.
func (c Config) Validate() error {
	if c.MinFragment < 0 {
		return fmt.Errorf("min_fragment 不能为负: %d", c.MinFragment)
	}
	return c.Options().Validate()
}
