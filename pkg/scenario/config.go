package scenario

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the run configuration, usually read from a YAML file.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	APIBase        string        `yaml:"api_base"`
	Viewport       Viewport      `yaml:"viewport"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	WaitTimeout    time.Duration `yaml:"wait_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	Headless       bool          `yaml:"headless"`
	BrowserBin     string        `yaml:"browser_bin,omitempty"`
	ControlURL     string        `yaml:"control_url,omitempty"`
	FixturesDir    string        `yaml:"fixtures_dir,omitempty"`
	Run            string        `yaml:"run,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:4000",
		APIBase:        "/api",
		Viewport:       DefaultViewport,
		DefaultTimeout: 4 * time.Second,
		WaitTimeout:    5 * time.Second,
		PollInterval:   100 * time.Millisecond,
		Headless:       true,
	}
}

// LoadConfig reads path over DefaultConfig, so a file only needs the keys it
// changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields the runner cannot default.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be absolute", c.BaseURL)
	}
	if c.APIBase == "" {
		return errors.New("api_base is required")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport %dx%d must be positive", c.Viewport.Width, c.Viewport.Height)
	}
	if c.DefaultTimeout <= 0 || c.WaitTimeout <= 0 || c.PollInterval <= 0 {
		return errors.New("timeouts and poll_interval must be positive")
	}
	return nil
}

// Options converts the configuration into runner options.
func (c Config) Options() []Option {
	return []Option{
		WithBaseURL(c.BaseURL),
		WithViewport(c.Viewport),
		WithTimeout(c.DefaultTimeout),
		WithWaitTimeout(c.WaitTimeout),
		WithPollInterval(c.PollInterval),
		WithFilter(c.Run),
	}
}
