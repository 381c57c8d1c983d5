package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/config"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
)

// clearEnv blanks every variable the loader reads so host state cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SSO_RENEWER_CONFIG", "AWS_PROFILE", "SSO_STATE_DIR", "SSO_SIGNAL_FILE",
		"SSO_CACHE_DIR", "S3_BUCKET_NAME", "AWS_REGION", "CACHE_DIR",
		"SSO_POLL_SECONDS", "SSO_COOLDOWN_SECONDS", "SSO_LOGIN_TIMEOUT",
		"CHECK_INTERVAL", "RENEWAL_THRESHOLD", "SSO_LOGIN_MODE", "PROXY_PORT",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	// Keep the default-location lookup away from the real home directory.
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err) // explicit path must exist

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, domain.ModeNotify, cfg.DefaultMode)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 600*time.Second, cfg.CooldownWindow)
	assert.Equal(t, 120*time.Second, cfg.DialogWait)
	assert.Equal(t, 30*time.Second, cfg.RetrySnooze)
	assert.Equal(t, time.Hour, cfg.RenewalThreshold)
	assert.True(t, cfg.STSProbe)
	assert.Equal(t, 9000, cfg.ProxyPort)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: staging
mode: silent
poll_seconds: 15
cooldown_seconds: 120
login_command: ["aws", "sso", "login", "--profile", "{profile}", "--no-browser"]
sts_probe: false
bucket: maven-mirror
proxy_port: 9100
debug: true
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Profile)
	assert.Equal(t, domain.ModeSilent, cfg.DefaultMode)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.CooldownWindow)
	assert.Equal(t, []string{"aws", "sso", "login", "--profile", "{profile}", "--no-browser"}, cfg.LoginCommand)
	assert.False(t, cfg.STSProbe)
	assert.Equal(t, "maven-mirror", cfg.Bucket)
	assert.Equal(t, 9100, cfg.ProxyPort)
	assert.True(t, cfg.Debug)

	// Untouched keys keep their defaults.
	assert.Equal(t, 120*time.Second, cfg.DialogWait)
	assert.Equal(t, "us-west-2", cfg.Region)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: from-file\npoll_seconds: 15\n"), 0o600))

	t.Setenv("AWS_PROFILE", "from-env")
	t.Setenv("SSO_POLL_SECONDS", "45")
	t.Setenv("SSO_LOGIN_MODE", "auto")
	t.Setenv("PROXY_PORT", "9200")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Profile)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
	assert.Equal(t, domain.ModeAuto, cfg.DefaultMode)
	assert.Equal(t, 9200, cfg.ProxyPort)
}

func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	clearEnv(t)

	t.Setenv("SSO_POLL_SECONDS", "soon")
	t.Setenv("SSO_LOGIN_MODE", "yolo")
	t.Setenv("PROXY_PORT", "-1")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, domain.ModeNotify, cfg.DefaultMode)
	assert.Equal(t, 9000, cfg.ProxyPort)
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: [unclosed"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "elsewhere.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: via-env-path\n"), 0o600))
	t.Setenv("SSO_RENEWER_CONFIG", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "via-env-path", cfg.Profile)
}
