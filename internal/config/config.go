// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Game() GameConfig
	Agent() AgentConfig
	Decision() DecisionConfig
	Database() DatabaseConfig
	Server() ServerConfig

	// Setters for values that CLI flags may override.
	SetBrowserHeadless(bool)
	SetBrowserRemoteURL(string)
	SetDecisionURL(string)
	SetAgentSampleRate(float64)
}

// Config holds the entire application configuration.
// Fields are exported so viper can unmarshal into them; callers go through the getters.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	GameCfg     GameConfig     `mapstructure:"game" yaml:"game"`
	AgentCfg    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	DecisionCfg DecisionConfig `mapstructure:"decision" yaml:"decision"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	ServerCfg   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// Ensure Config implements the interface.
var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Game() GameConfig         { return c.GameCfg }
func (c *Config) Agent() AgentConfig       { return c.AgentCfg }
func (c *Config) Decision() DecisionConfig { return c.DecisionCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Server() ServerConfig     { return c.ServerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)     { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserRemoteURL(u string)  { c.BrowserCfg.RemoteURL = u }
func (c *Config) SetDecisionURL(u string)       { c.DecisionCfg.URL = u }
func (c *Config) SetAgentSampleRate(hz float64) { c.AgentCfg.SampleRateHz = hz }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chromium instance that hosts the game.
type BrowserConfig struct {
	// RemoteURL attaches to an already running browser (its DevTools websocket or
	// http://host:port endpoint) instead of launching one.
	RemoteURL   string         `mapstructure:"remote_url" yaml:"remote_url"`
	Headless    bool           `mapstructure:"headless" yaml:"headless"`
	ExecPath    string         `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir string         `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	Args        []string       `mapstructure:"args" yaml:"args"`
	Viewport    map[string]int `mapstructure:"viewport" yaml:"viewport"`
	Debug       bool           `mapstructure:"debug" yaml:"debug"`
}

// GameConfig describes where the game lives and how its DOM affordances are found.
type GameConfig struct {
	URL               string          `mapstructure:"url" yaml:"url"`
	NavigationTimeout time.Duration   `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	InstallTimeout    time.Duration   `mapstructure:"install_timeout" yaml:"install_timeout"`
	Selectors         SelectorsConfig `mapstructure:"selectors" yaml:"selectors"`
	// AliveOpacity is the play button opacity that signals an active session.
	AliveOpacity string `mapstructure:"alive_opacity" yaml:"alive_opacity"`
}

// SelectorsConfig holds the CSS selectors for the host page's affordances.
type SelectorsConfig struct {
	PlayButton string `mapstructure:"play_button" yaml:"play_button"`
	Canvas     string `mapstructure:"canvas" yaml:"canvas"`
	LastScore  string `mapstructure:"last_score" yaml:"last_score"`
	Score      string `mapstructure:"score" yaml:"score"`
}

// Payload modes for the agent.
const (
	PayloadSignals = "signals"
	PayloadPixels  = "pixels"
)

// AgentConfig configures the sampling loop.
type AgentConfig struct {
	SampleRateHz float64 `mapstructure:"sample_rate_hz" yaml:"sample_rate_hz"`
	Payload      string  `mapstructure:"payload" yaml:"payload"`
	// CaptureSize is the edge length of the square pixel capture in pixel mode.
	CaptureSize int `mapstructure:"capture_size" yaml:"capture_size"`
	// DropLogInterval throttles the "dropping frame" warning. Zero logs every drop.
	DropLogInterval time.Duration `mapstructure:"drop_log_interval" yaml:"drop_log_interval"`
	SteerRadius     float64       `mapstructure:"steer_radius" yaml:"steer_radius"`
}

// Interval returns the tick period derived from the sample rate.
func (a AgentConfig) Interval() time.Duration {
	if a.SampleRateHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / a.SampleRateHz)
}

// DecisionConfig configures the client for the external decision service.
type DecisionConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Timeout bounds a single request. Zero means no timeout.
	Timeout    time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	ForceHTTP2 bool              `mapstructure:"force_http2" yaml:"force_http2"`
	Headers    map[string]string `mapstructure:"headers" yaml:"headers"`
}

// DatabaseConfig holds the database connection details for session records.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ServerConfig configures the reference decision service.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	Debug          bool     `mapstructure:"debug" yaml:"debug"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "snakepilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 800})

	// -- Game --
	v.SetDefault("game.url", "http://slither.io")
	v.SetDefault("game.navigation_timeout", "60s")
	v.SetDefault("game.install_timeout", "30s")
	v.SetDefault("game.selectors.play_button", `div[class="btnt nsi sadg1"]`)
	v.SetDefault("game.selectors.canvas", `canvas[class="nsi"]`)
	v.SetDefault("game.selectors.last_score", "#lastscore > b")
	v.SetDefault("game.selectors.score", "div > span > span")
	v.SetDefault("game.alive_opacity", "0.38")

	// -- Agent --
	v.SetDefault("agent.sample_rate_hz", 5.0)
	v.SetDefault("agent.payload", PayloadSignals)
	v.SetDefault("agent.capture_size", 256)
	v.SetDefault("agent.drop_log_interval", "0s")
	v.SetDefault("agent.steer_radius", 100.0)

	// -- Decision Service --
	v.SetDefault("decision.url", "http://localhost:8000/ai")
	v.SetDefault("decision.timeout", "0s")
	v.SetDefault("decision.force_http2", false)

	// -- Reference Server --
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("database.url", "SNAKEPILOT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading "~" in filesystem paths.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.LoggerCfg.LogFile, &c.BrowserCfg.UserDataDir, &c.BrowserCfg.ExecPath} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.AgentCfg.Validate(); err != nil {
		return fmt.Errorf("agent configuration invalid: %w", err)
	}
	if err := c.DecisionCfg.Validate(); err != nil {
		return fmt.Errorf("decision configuration invalid: %w", err)
	}
	if c.GameCfg.Selectors.PlayButton == "" || c.GameCfg.Selectors.Canvas == "" {
		return fmt.Errorf("game.selectors.play_button and game.selectors.canvas are required")
	}
	return nil
}

// Validate checks the AgentConfig settings.
func (a *AgentConfig) Validate() error {
	if a.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be greater than 0")
	}
	switch strings.ToLower(a.Payload) {
	case PayloadSignals:
	case PayloadPixels:
		if a.CaptureSize <= 0 {
			return fmt.Errorf("capture_size must be a positive integer in pixel mode")
		}
	default:
		return fmt.Errorf("unsupported payload %q (expected %q or %q)", a.Payload, PayloadSignals, PayloadPixels)
	}
	if a.SteerRadius <= 0 {
		return fmt.Errorf("steer_radius must be greater than 0")
	}
	return nil
}

// Validate checks the DecisionConfig settings.
func (d *DecisionConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(d.URL, "http://") && !strings.HasPrefix(d.URL, "https://") {
		return fmt.Errorf("url must use http or https: %s", d.URL)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
