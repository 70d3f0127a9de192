package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath     = "config/matchctl.yaml"
	DefaultEnvFile        = ".env"
	DefaultAppName        = "CSGO Remote"
	DefaultEnv            = "development"
	DefaultFeedURL        = "ws://localhost:8080/ws"
	DefaultConnectTimeout = 5 * time.Second
	DefaultLogLevel       = "info"
	DefaultListenAddr     = ":8080"

	envPrefix = "MATCHCTL_"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config is the console configuration. AppName and Env feed the page title.
type Config struct {
	AppName        string        `yaml:"app_name" json:"app_name"`
	Env            string        `yaml:"env" json:"env"`
	FeedURL        string        `yaml:"feed_url" json:"feed_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	LogFile        string        `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	LogLevel       string        `yaml:"log_level" json:"log_level"`
	ListenAddr     string        `yaml:"listen_addr" json:"listen_addr"`
}

type LoadOptions struct {
	// Path of the YAML file; empty uses DefaultConfigPath. A missing file is
	// not an error.
	Path string
	// EnvFile is a dotenv file layered over the YAML; empty uses DefaultEnvFile.
	EnvFile string
	LookupEnv func(string) (string, bool)
}

func Default() Config {
	return Config{
		AppName:        DefaultAppName,
		Env:            DefaultEnv,
		FeedURL:        DefaultFeedURL,
		ConnectTimeout: DefaultConnectTimeout,
		LogLevel:       DefaultLogLevel,
		ListenAddr:     DefaultListenAddr,
	}
}

// Load layers defaults, the YAML file, the dotenv file and MATCHCTL_*
// environment variables, in that order.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	path := normalizePath(opts.Path, DefaultConfigPath)
	fileCfg, err := readFile(path)
	switch {
	case err == nil:
		cfg = merge(cfg, fileCfg)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, err
	}

	envFile := normalizePath(opts.EnvFile, DefaultEnvFile)
	dotenv, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		if err := applyEnv(&cfg, func(k string) (string, bool) {
			v, ok := dotenv[k]
			return v, ok
		}); err != nil {
			return Config{}, fmt.Errorf("%s: %w", envFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read env file %s: %w", envFile, err)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	return Normalize(cfg)
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func merge(base, over Config) Config {
	if over.AppName != "" {
		base.AppName = over.AppName
	}
	if over.Env != "" {
		base.Env = over.Env
	}
	if over.FeedURL != "" {
		base.FeedURL = over.FeedURL
	}
	if over.ConnectTimeout > 0 {
		base.ConnectTimeout = over.ConnectTimeout
	}
	if over.LogFile != "" {
		base.LogFile = over.LogFile
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.ListenAddr != "" {
		base.ListenAddr = over.ListenAddr
	}
	return base
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var over Config
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("APP_NAME", &over.AppName)
	str("ENV", &over.Env)
	str("FEED_URL", &over.FeedURL)
	str("LOG_FILE", &over.LogFile)
	str("LOG_LEVEL", &over.LogLevel)
	str("LISTEN_ADDR", &over.ListenAddr)
	if v, ok := lookup(envPrefix + "CONNECT_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCONNECT_TIMEOUT: %w", envPrefix, err)
		}
		over.ConnectTimeout = d
	}
	*cfg = merge(*cfg, over)
	return nil
}

// Normalize trims values, fills empty ones with defaults and rejects values
// that cannot be used.
func Normalize(cfg Config) (Config, error) {
	def := Default()
	cfg.AppName = defaultIfEmpty(cfg.AppName, def.AppName)
	cfg.Env = defaultIfEmpty(cfg.Env, def.Env)
	cfg.FeedURL = defaultIfEmpty(cfg.FeedURL, def.FeedURL)
	cfg.ListenAddr = defaultIfEmpty(cfg.ListenAddr, def.ListenAddr)
	cfg.LogFile = strings.TrimSpace(cfg.LogFile)
	cfg.LogLevel = strings.ToLower(defaultIfEmpty(cfg.LogLevel, def.LogLevel))
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if !validLogLevels[cfg.LogLevel] {
		return Config{}, fmt.Errorf("%w: %q (want debug, info, warn or error)", ErrInvalidLogLevel, cfg.LogLevel)
	}
	if !strings.HasPrefix(cfg.FeedURL, "ws://") && !strings.HasPrefix(cfg.FeedURL, "wss://") {
		return Config{}, fmt.Errorf("feed url must start with ws:// or wss://, got %q", cfg.FeedURL)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, replacing any existing file atomically.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return WriteBytes(normalizePath(path, DefaultConfigPath), data)
}

func normalizePath(path, def string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return def
	}
	return p
}

func defaultIfEmpty(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
