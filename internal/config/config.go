// Package config resolves the runtime configuration from, in increasing
// precedence: built-in defaults, an optional YAML config file, and
// environment variables. Command-line flags are layered on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// Config holds every tunable of the renewal suite.
type Config struct {
	Profile    string
	StateDir   string
	SignalFile string // empty: <StateDir>/login-required.json

	// Watcher.
	DefaultMode    domain.Mode
	PollInterval   time.Duration
	CooldownWindow time.Duration
	DialogWait     time.Duration
	LoginTimeout   time.Duration
	RetrySnooze    time.Duration
	LoginCommand   []string
	RefreshCommand []string
	NotifyCommand  []string // overrides the platform dialog

	// Detector.
	CheckInterval    time.Duration
	RenewalThreshold time.Duration
	SSOCacheDir      string
	STSProbe         bool

	// Proxy.
	Bucket         string
	Region         string
	CacheDir       string
	ProxyPort      int
	MirrorInterval time.Duration
	MirrorTopN     int

	Debug bool
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Profile:          "default",
		DefaultMode:      domain.ModeNotify,
		PollInterval:     5 * time.Second,
		CooldownWindow:   600 * time.Second,
		DialogWait:       120 * time.Second,
		LoginTimeout:     120 * time.Second,
		RetrySnooze:      30 * time.Second,
		CheckInterval:    60 * time.Second,
		RenewalThreshold: time.Hour,
		STSProbe:         true,
		Region:           "us-west-2",
		CacheDir:         "/data",
		ProxyPort:        9000,
		MirrorInterval:   5 * time.Minute,
		MirrorTopN:       50,
	}
}

// fileValues mirrors the YAML schema. Durations are plain seconds, the same
// unit the environment contract uses, so a value moves between the file and
// the env without conversion.
type fileValues struct {
	Profile    string `yaml:"profile"`
	StateDir   string `yaml:"state_dir"`
	SignalFile string `yaml:"signal_file"`

	Mode             string   `yaml:"mode"`
	PollSeconds      int      `yaml:"poll_seconds"`
	CooldownSeconds  int      `yaml:"cooldown_seconds"`
	DialogSeconds    int      `yaml:"dialog_seconds"`
	LoginTimeoutSecs int      `yaml:"login_timeout_seconds"`
	RetrySnoozeSecs  int      `yaml:"retry_snooze_seconds"`
	LoginCommand     []string `yaml:"login_command"`
	RefreshCommand   []string `yaml:"refresh_command"`
	NotifyCommand    []string `yaml:"notify_command"`

	CheckSeconds     int    `yaml:"check_seconds"`
	ThresholdSeconds int    `yaml:"renewal_threshold_seconds"`
	SSOCacheDir      string `yaml:"sso_cache_dir"`
	STSProbe         *bool  `yaml:"sts_probe"`

	Bucket            string `yaml:"bucket"`
	Region            string `yaml:"region"`
	CacheDir          string `yaml:"cache_dir"`
	ProxyPort         int    `yaml:"proxy_port"`
	MirrorIntervalSec int    `yaml:"mirror_interval_seconds"`
	MirrorTopN        int    `yaml:"mirror_top_n"`

	Debug *bool `yaml:"debug"`
}

// Load resolves the configuration. path may be empty; then
// $SSO_RENEWER_CONFIG and ~/.config/sso-renewer/config.yaml are tried, and
// a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv("SSO_RENEWER_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "sso-renewer", "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fv fileValues
			if err := yaml.Unmarshal(data, &fv); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
			fv.apply(&cfg)
		case os.IsNotExist(err) && !explicit:
			// Default location, nothing there. Fine.
		default:
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (fv fileValues) apply(c *Config) {
	setStr(&c.Profile, fv.Profile)
	setStr(&c.StateDir, fv.StateDir)
	setStr(&c.SignalFile, fv.SignalFile)
	setStr(&c.SSOCacheDir, fv.SSOCacheDir)
	setStr(&c.Bucket, fv.Bucket)
	setStr(&c.Region, fv.Region)
	setStr(&c.CacheDir, fv.CacheDir)

	if m, ok := domain.ParseMode(fv.Mode); ok {
		c.DefaultMode = m
	}
	setSeconds(&c.PollInterval, fv.PollSeconds)
	setSeconds(&c.CooldownWindow, fv.CooldownSeconds)
	setSeconds(&c.DialogWait, fv.DialogSeconds)
	setSeconds(&c.LoginTimeout, fv.LoginTimeoutSecs)
	setSeconds(&c.RetrySnooze, fv.RetrySnoozeSecs)
	setSeconds(&c.CheckInterval, fv.CheckSeconds)
	setSeconds(&c.RenewalThreshold, fv.ThresholdSeconds)
	setSeconds(&c.MirrorInterval, fv.MirrorIntervalSec)

	if len(fv.LoginCommand) > 0 {
		c.LoginCommand = fv.LoginCommand
	}
	if len(fv.RefreshCommand) > 0 {
		c.RefreshCommand = fv.RefreshCommand
	}
	if len(fv.NotifyCommand) > 0 {
		c.NotifyCommand = fv.NotifyCommand
	}
	if fv.STSProbe != nil {
		c.STSProbe = *fv.STSProbe
	}
	if fv.ProxyPort > 0 {
		c.ProxyPort = fv.ProxyPort
	}
	if fv.MirrorTopN > 0 {
		c.MirrorTopN = fv.MirrorTopN
	}
	if fv.Debug != nil {
		c.Debug = *fv.Debug
	}
}

// applyEnv layers the container/launchd environment contract over the file
// values. Variable names match what the deployment scripts export.
func (c *Config) applyEnv() {
	strVar(&c.Profile, "AWS_PROFILE")
	strVar(&c.StateDir, "SSO_STATE_DIR")
	strVar(&c.SignalFile, "SSO_SIGNAL_FILE")
	strVar(&c.SSOCacheDir, "SSO_CACHE_DIR")
	strVar(&c.Bucket, "S3_BUCKET_NAME")
	strVar(&c.Region, "AWS_REGION")
	strVar(&c.CacheDir, "CACHE_DIR")

	secondsVar(&c.PollInterval, "SSO_POLL_SECONDS")
	secondsVar(&c.CooldownWindow, "SSO_COOLDOWN_SECONDS")
	secondsVar(&c.LoginTimeout, "SSO_LOGIN_TIMEOUT")
	secondsVar(&c.CheckInterval, "CHECK_INTERVAL")
	secondsVar(&c.RenewalThreshold, "RENEWAL_THRESHOLD")

	if v := os.Getenv("SSO_LOGIN_MODE"); v != "" {
		if m, ok := domain.ParseMode(v); ok {
			c.DefaultMode = m
		}
	}
	if v := os.Getenv("PROXY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.ProxyPort = port
		}
	}
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, secs int) {
	if secs > 0 {
		*dst = time.Duration(secs) * time.Second
	}
}

func strVar(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func secondsVar(dst *time.Duration, name string) {
	if v := os.Getenv(name); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			*dst = time.Duration(secs) * time.Second
		}
	}
}
