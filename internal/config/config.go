// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Retry() RetryConfig
	Target() TargetConfig
	Credentials() CredentialsConfig
	Verify() VerifyConfig
	Scenario() ScenarioConfig

	// Browser Setters
	SetBrowserHeadless(bool)

	// Target Setters
	SetTargetEnvironment(string)
	SetTargetHost(string)

	// Scenario Setters
	SetScenarioDataFile(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	NetworkCfg     NetworkConfig     `mapstructure:"network" yaml:"network"`
	RetryCfg       RetryConfig       `mapstructure:"retry" yaml:"retry"`
	TargetCfg      TargetConfig      `mapstructure:"target" yaml:"target"`
	CredentialsCfg CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	VerifyCfg      VerifyConfig      `mapstructure:"verify" yaml:"verify"`
	ScenarioCfg    ScenarioConfig    `mapstructure:"scenario" yaml:"scenario"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig         { return c.NetworkCfg }
func (c *Config) Retry() RetryConfig             { return c.RetryCfg }
func (c *Config) Target() TargetConfig           { return c.TargetCfg }
func (c *Config) Credentials() CredentialsConfig { return c.CredentialsCfg }
func (c *Config) Verify() VerifyConfig           { return c.VerifyCfg }
func (c *Config) Scenario() ScenarioConfig       { return c.ScenarioCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)       { c.BrowserCfg.Headless = b }
func (c *Config) SetTargetEnvironment(env string) { c.TargetCfg.Environment = env }
func (c *Config) SetTargetHost(host string)       { c.TargetCfg.Host = host }
func (c *Config) SetScenarioDataFile(path string) { c.ScenarioCfg.DataFile = path }

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

// BrowserConfig holds settings for the Chrome instance driving the dashboard.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Debug           bool           `mapstructure:"debug" yaml:"debug"`
	ExecPath        string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	// SlowMo paces consecutive page actions, like a user who pauses between steps.
	SlowMo time.Duration `mapstructure:"slow_mo" yaml:"slow_mo" validate:"gte=0"`
}

// ViewportConfig is the window size of each browser context.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width" validate:"gt=0"`
	Height int `mapstructure:"height" yaml:"height" validate:"gt=0"`
}

// NetworkConfig tunes timeouts and settle delays.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout" validate:"gt=0"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout" validate:"gt=0"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gt=0"`
	// SettleDelay is slept after the page reports idle.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" validate:"gte=0"`
	// LoadWait is slept after the first navigation of a scenario.
	LoadWait time.Duration `mapstructure:"load_wait" yaml:"load_wait" validate:"gte=0"`
	// StepWait is slept after actions that re-render a table, such as sorting.
	StepWait time.Duration `mapstructure:"step_wait" yaml:"step_wait" validate:"gte=0"`
}

// RetryConfig bounds the retry of page actions.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" yaml:"attempts" validate:"gte=0"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay" validate:"gte=0"`
}

// TargetConfig selects the dashboard deployment under test.
type TargetConfig struct {
	Environment         string   `mapstructure:"environment" yaml:"environment" validate:"required"`
	Host                string   `mapstructure:"host" yaml:"host" validate:"required,hostname"`
	AllowedEnvironments []string `mapstructure:"allowed_environments" yaml:"allowed_environments" validate:"min=1"`
	AllowedHosts        []string `mapstructure:"allowed_hosts" yaml:"allowed_hosts" validate:"min=1"`
}

// BaseURL builds the deployment URL. qa is served from a "qa-" prefixed host,
// every other environment from "www.".
func (t TargetConfig) BaseURL() string {
	sub := "www."
	if t.Environment == "qa" {
		sub = "qa-"
	}
	return "https://" + sub + t.Host
}

// TitlePrefix is prepended to every scenario title, e.g. "[qa.ottoviz.ominf.net]".
func (t TargetConfig) TitlePrefix() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{t.Environment, t.Host} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "[" + strings.Join(parts, ".") + "]"
}

// CredentialsConfig points at the properties file holding the login.
type CredentialsConfig struct {
	PropertiesFile string `mapstructure:"properties_file" yaml:"properties_file" validate:"required"`
}

// VerifyConfig tunes data verification.
type VerifyConfig struct {
	// Tolerance is the largest accepted difference between a computed column
	// average and the footer value. 0 demands exact equality.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance" validate:"gte=0"`
}

// ScenarioConfig controls which test data is loaded and how long a scenario may run.
type ScenarioConfig struct {
	// DataFile overrides the embedded scenario data when set.
	DataFile string        `mapstructure:"data_file" yaml:"data_file"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	// Retries is the number of extra runs granted to a failing scenario.
	Retries int `mapstructure:"retries" yaml:"retries" validate:"gte=0"`
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
	v.SetDefault("logger.service_name", "kpiprobe")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", false)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.debug", false)
	v.SetDefault("browser.viewport.width", 1920)
	v.SetDefault("browser.viewport.height", 1152)
	v.SetDefault("browser.slow_mo", "300ms")

	// -- Network --
	v.SetDefault("network.navigation_timeout", "15s")
	v.SetDefault("network.action_timeout", "10s")
	v.SetDefault("network.wait_timeout", "30s")
	v.SetDefault("network.idle_timeout", "15s")
	v.SetDefault("network.settle_delay", "300ms")
	v.SetDefault("network.load_wait", "2s")
	v.SetDefault("network.step_wait", "2s")

	// -- Retry --
	v.SetDefault("retry.attempts", 2)
	v.SetDefault("retry.delay", "1s")

	// -- Target --
	v.SetDefault("target.environment", "qa")
	v.SetDefault("target.host", "ottoviz.ominf.net")
	v.SetDefault("target.allowed_environments", []string{"qa", "prod"})
	v.SetDefault("target.allowed_hosts", []string{"ottoviz.ominf.net"})

	// -- Credentials --
	v.SetDefault("credentials.properties_file", "properties.txt")

	// -- Verify --
	v.SetDefault("verify.tolerance", 0.0)

	// -- Scenario --
	v.SetDefault("scenario.timeout", "3m")
	v.SetDefault("scenario.retries", 1)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The harness has always been pointed at a deployment through ENV and URL.
	_ = v.BindEnv("target.environment", "KPIPROBE_TARGET_ENVIRONMENT", "ENV")
	_ = v.BindEnv("target.host", "KPIPROBE_TARGET_HOST", "URL")

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

// expandPaths resolves a leading ~ in every configured file path.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.CredentialsCfg.PropertiesFile, &c.LoggerCfg.LogFile, &c.ScenarioCfg.DataFile} {
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

var validate = validator.New()

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.TargetCfg.Validate(); err != nil {
		return fmt.Errorf("target configuration invalid: %w", err)
	}
	return nil
}

// Validate checks that the selected environment and host are allow-listed.
func (t *TargetConfig) Validate() error {
	if !contains(t.AllowedEnvironments, t.Environment) {
		return fmt.Errorf("invalid environment '%s'. Allowed values: %s", t.Environment, strings.Join(t.AllowedEnvironments, ", "))
	}
	if !contains(t.AllowedHosts, t.Host) {
		return fmt.Errorf("invalid host '%s'. Allowed values: %s", t.Host, strings.Join(t.AllowedHosts, ", "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
