package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/database"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/interact"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/storage"
)

// Config holds all application configuration.
type Config struct {
	Log        LogConfig
	Credential CredentialConfig
	Browser    BrowserConfig
	Interact   InteractConfig
	Flow       FlowConfig
	History    database.Config
	Report     ReportConfig
	Metrics    MetricsConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// CredentialConfig selects where the monitoring secret comes from.
type CredentialConfig struct {
	Source     string // "secretsmanager" or "file"
	SecretName string
	Region     string
	File       string
}

// BrowserConfig holds browser session configuration.
type BrowserConfig struct {
	WorkingDir      string
	PageLoadTimeout time.Duration
	ImplicitTimeout time.Duration
	PollInterval    time.Duration
	WindowWidth     int
	WindowHeight    int
	ExtraFlags      []string
}

// InteractConfig holds interaction timing and the click retry policy.
type InteractConfig struct {
	SettleDelay time.Duration
	TextTimeout time.Duration
	Retry       interact.RetryPolicy
}

// FlowConfig holds the per-step timeouts.
type FlowConfig struct {
	AppName        string
	VersionTimeout time.Duration
	RevealTimeout  time.Duration
	LogoutSettle   time.Duration
	LogoutTimeout  time.Duration
}

// ReportConfig holds verdict report publishing configuration.
type ReportConfig struct {
	Type          string // "none", "local" or "s3"
	BaseDir       string
	S3Bucket      string
	S3Region      string
	Prefix        string
	PresignExpiry time.Duration
}

// MetricsConfig holds Pushgateway configuration. An empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("monitor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides, e.g. MONITOR_CREDENTIAL_SECRET_NAME
	v.SetEnvPrefix("monitor")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("credential.source", "secretsmanager")
	v.SetDefault("credential.secret_name", "birst/synthetic_monitoring/nextdev_login")
	v.SetDefault("credential.region", "us-west-1")
	v.SetDefault("credential.file", "")

	v.SetDefault("browser.working_dir", "")
	v.SetDefault("browser.page_load_timeout", "90s")
	v.SetDefault("browser.implicit_timeout", "30s")
	v.SetDefault("browser.poll_interval", "500ms")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.extra_flags", []string{})

	v.SetDefault("interact.settle_delay", "500ms")
	v.SetDefault("interact.text_timeout", "60s")
	v.SetDefault("interact.retry.max_attempts", 3)
	v.SetDefault("interact.retry.attempt_timeout", "15s")
	v.SetDefault("interact.retry.delay", "1s")
	v.SetDefault("interact.retry.refresh", false)

	v.SetDefault("flow.app_name", "Birst")
	v.SetDefault("flow.version_timeout", "60s")
	v.SetDefault("flow.reveal_timeout", "10s")
	v.SetDefault("flow.logout_settle", "0s")
	v.SetDefault("flow.logout_timeout", "45s")

	v.SetDefault("history.driver", "none")
	v.SetDefault("history.host", "localhost")
	v.SetDefault("history.port", 3306)
	v.SetDefault("history.user", "root")
	v.SetDefault("history.password", "")
	v.SetDefault("history.database", "synthetic_monitor")
	v.SetDefault("history.path", "./monitor-history.db")
	v.SetDefault("history.max_open_conns", 5)
	v.SetDefault("history.max_idle_conns", 2)

	v.SetDefault("report.type", "none")
	v.SetDefault("report.base_dir", "./reports")
	v.SetDefault("report.s3_bucket", "")
	v.SetDefault("report.s3_region", "us-west-1")
	v.SetDefault("report.prefix", "synthetic-monitor")
	v.SetDefault("report.s3_presign_expiry", "24h")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "synthetic_monitor")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	var config Config

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Credential.Source = v.GetString("credential.source")
	config.Credential.SecretName = v.GetString("credential.secret_name")
	config.Credential.Region = v.GetString("credential.region")
	config.Credential.File = v.GetString("credential.file")

	config.Browser.WorkingDir = v.GetString("browser.working_dir")
	config.Browser.PageLoadTimeout = v.GetDuration("browser.page_load_timeout")
	config.Browser.ImplicitTimeout = v.GetDuration("browser.implicit_timeout")
	config.Browser.PollInterval = v.GetDuration("browser.poll_interval")
	config.Browser.WindowWidth = v.GetInt("browser.window_width")
	config.Browser.WindowHeight = v.GetInt("browser.window_height")
	config.Browser.ExtraFlags = v.GetStringSlice("browser.extra_flags")

	config.Interact.SettleDelay = v.GetDuration("interact.settle_delay")
	config.Interact.TextTimeout = v.GetDuration("interact.text_timeout")
	config.Interact.Retry = interact.RetryPolicy{
		MaxAttempts:    v.GetInt("interact.retry.max_attempts"),
		AttemptTimeout: v.GetDuration("interact.retry.attempt_timeout"),
		RetryDelay:     v.GetDuration("interact.retry.delay"),
		RefreshOnRetry: v.GetBool("interact.retry.refresh"),
	}

	config.Flow.AppName = v.GetString("flow.app_name")
	config.Flow.VersionTimeout = v.GetDuration("flow.version_timeout")
	config.Flow.RevealTimeout = v.GetDuration("flow.reveal_timeout")
	config.Flow.LogoutSettle = v.GetDuration("flow.logout_settle")
	config.Flow.LogoutTimeout = v.GetDuration("flow.logout_timeout")

	config.History = database.Config{
		Driver:       v.GetString("history.driver"),
		Host:         v.GetString("history.host"),
		Port:         v.GetInt("history.port"),
		User:         v.GetString("history.user"),
		Password:     v.GetString("history.password"),
		Database:     v.GetString("history.database"),
		Path:         v.GetString("history.path"),
		MaxOpenConns: v.GetInt("history.max_open_conns"),
		MaxIdleConns: v.GetInt("history.max_idle_conns"),
	}

	config.Report.Type = v.GetString("report.type")
	config.Report.BaseDir = v.GetString("report.base_dir")
	config.Report.S3Bucket = v.GetString("report.s3_bucket")
	config.Report.S3Region = v.GetString("report.s3_region")
	config.Report.Prefix = v.GetString("report.prefix")
	config.Report.PresignExpiry = v.GetDuration("report.s3_presign_expiry")

	config.Metrics.PushgatewayURL = v.GetString("metrics.pushgateway_url")
	config.Metrics.Job = v.GetString("metrics.job")

	if err := config.Interact.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("interact.retry: %w", err)
	}

	return &config, nil
}

// BrowserSessionConfig returns the session configuration for the binaries
// under WorkingDir.
func (c *Config) BrowserSessionConfig() browser.Config {
	bc := browser.DefaultConfig(c.Browser.WorkingDir)
	bc.PageLoadTimeout = c.Browser.PageLoadTimeout
	bc.WindowWidth = c.Browser.WindowWidth
	bc.WindowHeight = c.Browser.WindowHeight
	bc.ExtraFlags = c.Browser.ExtraFlags
	return bc
}

// InteractOptions returns the interactor options.
func (c *Config) InteractOptions() interact.Options {
	return interact.Options{
		SettleDelay: c.Interact.SettleDelay,
		TextTimeout: c.Interact.TextTimeout,
	}
}

// FlowSettings returns the timings shared by the steps.
func (c *Config) FlowSettings() flow.Settings {
	return flow.Settings{
		Implicit:     c.Browser.ImplicitTimeout,
		Dashboard:    c.Flow.VersionTimeout,
		Reveal:       c.Flow.RevealTimeout,
		LogoutSettle: c.Flow.LogoutSettle,
		Logout:       c.Flow.LogoutTimeout,
		Click:        c.Interact.Retry,
	}
}

// StorageConfig returns the report storage configuration.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Type:          c.Report.Type,
		BaseDir:       c.Report.BaseDir,
		Bucket:        c.Report.S3Bucket,
		Region:        c.Report.S3Region,
		PresignExpiry: c.Report.PresignExpiry,
	}
}
