// Package config provides configuration management for VideoCraft.
// Values come from defaults, then an optional YAML file, then environment
// variables, each layer overriding the one before.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultAPIURL      = "http://localhost:8000"
	DefaultPort        = 8787
	DefaultLogLevel    = "info"
	DefaultHTTPTimeout = 120 * time.Second
	DefaultDataDir     = ".videocraft"
	DefaultOutputDir   = "videocraft-exports"

	// Environment variable names
	EnvAPIURL      = "VIDEOCRAFT_API_URL"
	EnvPort        = "VIDEOCRAFT_PORT"
	EnvLogLevel    = "VIDEOCRAFT_LOG_LEVEL"
	EnvOutputDir   = "VIDEOCRAFT_OUTPUT_DIR"
	EnvHTTPTimeout = "VIDEOCRAFT_HTTP_TIMEOUT"
	EnvConfigFile  = "VIDEOCRAFT_CONFIG"

	// ConfigFilename is the file written by `videocraft setup`.
	ConfigFilename = "config.yaml"
)

// Config defines the application configuration interface
type Config interface {
	APIURL() string
	Port() int
	LogLevel() string
	OutputDir() string
	HTTPTimeout() time.Duration
	ConfigPath() string
}

// File is the on-disk YAML form. Empty fields keep the default.
type File struct {
	APIURL      string `yaml:"api_url"`
	Port        int    `yaml:"port,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
	OutputDir   string `yaml:"output_dir,omitempty"`
	HTTPTimeout string `yaml:"http_timeout,omitempty"`
}

// LoadFile reads and parses the YAML configuration at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &f, nil
}

// SaveFile writes f to path, creating the directory if needed.
func SaveFile(f *File, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnvConfig is the resolved configuration.
type EnvConfig struct {
	apiURL      string
	port        int
	logLevel    string
	outputDir   string
	httpTimeout time.Duration
	configPath  string
}

// New loads the file named by VIDEOCRAFT_CONFIG, or the default config file
// if it exists, then applies environment overrides.
func New() (*EnvConfig, error) {
	return Load(os.Getenv(EnvConfigFile))
}

// Load is New with an explicit config file path. An empty path means the
// default location, which may be absent; an explicit path must exist.
func Load(path string) (*EnvConfig, error) {
	cfg := &EnvConfig{
		apiURL:      DefaultAPIURL,
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		outputDir:   defaultOutputDir(),
		httpTimeout: DefaultHTTPTimeout,
		configPath:  path,
	}

	optional := path == ""
	if optional {
		cfg.configPath = DefaultConfigPath()
	}

	f, err := LoadFile(cfg.configPath)
	switch {
	case err == nil:
		if err := cfg.applyFile(f); err != nil {
			return nil, err
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) applyFile(f *File) error {
	if f.APIURL != "" {
		u, err := parseAPIURL(f.APIURL)
		if err != nil {
			return fmt.Errorf("invalid api_url in %s: %w", c.configPath, err)
		}
		c.apiURL = u
	}
	if f.Port != 0 {
		if f.Port < 1 || f.Port > 65535 {
			return fmt.Errorf("invalid port in %s: port must be between 1 and 65535", c.configPath)
		}
		c.port = f.Port
	}
	if f.LogLevel != "" {
		c.logLevel = f.LogLevel
	}
	if f.OutputDir != "" {
		c.outputDir = f.OutputDir
	}
	if f.HTTPTimeout != "" {
		d, err := parseTimeout(f.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid http_timeout in %s: %w", c.configPath, err)
		}
		c.httpTimeout = d
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		u, err := parseAPIURL(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAPIURL, err)
		}
		c.apiURL = u
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if od := os.Getenv(EnvOutputDir); od != "" {
		c.outputDir = od
	}

	if t := os.Getenv(EnvHTTPTimeout); t != "" {
		d, err := parseTimeout(t)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPTimeout, err)
		}
		c.httpTimeout = d
	}
	return nil
}

// APIURL returns the backend base URL without a trailing slash
func (c *EnvConfig) APIURL() string {
	return c.apiURL
}

// Port returns the local HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// OutputDir returns the directory exports are saved into
func (c *EnvConfig) OutputDir() string {
	return c.outputDir
}

// HTTPTimeout bounds each backend call
func (c *EnvConfig) HTTPTimeout() time.Duration {
	return c.httpTimeout
}

// ConfigPath is the file the configuration was, or would be, read from
func (c *EnvConfig) ConfigPath() string {
	return c.configPath
}

// File returns the file form of c, as `setup` would write it.
func (c *EnvConfig) File() *File {
	return &File{
		APIURL:      c.apiURL,
		Port:        c.port,
		LogLevel:    c.logLevel,
		OutputDir:   c.outputDir,
		HTTPTimeout: c.httpTimeout.String(),
	}
}

func parseAPIURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("host is required")
	}
	return raw, nil
}

// parseTimeout accepts a Go duration ("90s") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, serr := strconv.Atoi(raw)
		if serr != nil {
			return 0, err
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, errors.New("timeout must be positive")
	}
	return d, nil
}

// DefaultConfigPath is ~/.videocraft/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), ConfigFilename)
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultOutputDir
	}
	return filepath.Join(home, "Downloads", DefaultOutputDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
