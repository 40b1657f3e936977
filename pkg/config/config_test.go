package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolate points the loader at an empty directory and clears the environment
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv(EnvPrefix+"CONFIG_PATH", dir)
	for _, name := range attributeNames() {
		t.Setenv(EnvName(name), "")
	}
	return dir
}

func writeConfigFile(t *testing.T, dir, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 600, cfg.TokenTTL)
	assert.Equal(t, 600*time.Second, cfg.DefaultTokenTTL())
	assert.Equal(t, 3600, cfg.MaxTokenTTL)
	assert.Equal(t, "portcullis", cfg.TokenIssuer)
	assert.Equal(t, "bcrypt", cfg.PasswordHashAlgorithm)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.BindPermissionsOnCreate)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, hclog.Info, cfg.HCLogLevel())
	assert.False(t, cfg.JSONLogFormat())
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())

	for _, name := range attributeNames() {
		assert.Equal(t, SourceDefault, cfg.Source(name), name)
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, `
secret_key: from-file-from-file-from-file-0000
token_ttl: 300
audit_enabled: false
bind_permissions_on_create: true
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("PORTCULLIS_TOKEN_TTL", "120")
	t.Setenv("PORTCULLIS_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file-from-file-from-file-0000", cfg.SecretKey)
	assert.Equal(t, SourceFile, cfg.Source(AttrSecretKey))
	assert.Equal(t, 120, cfg.TokenTTL)
	assert.Equal(t, SourceEnvironment, cfg.Source(AttrTokenTTL))
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, SourceFile, cfg.Source(AttrAuditEnabled))
	assert.True(t, cfg.BindPermissionsOnCreate)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.True(t, cfg.JSONLogFormat())
	assert.Equal(t, SourceDefault, cfg.Source(AttrMaxTokenTTL))
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	writeConfigFile(t, dir, "token_ttl: [not, a, number]\n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidEnvironmentValues(t *testing.T) {
	isolate(t)
	t.Setenv("PORTCULLIS_TOKEN_TTL", "ten")
	t.Setenv("PORTCULLIS_AUDIT_ENABLED", "maybe")

	_, err := Load()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "PORTCULLIS_TOKEN_TTL")
	assert.Contains(t, err.Error(), "PORTCULLIS_AUDIT_ENABLED")
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.SecretKey = testSecret
	require.NoError(t, valid.Validate())

	cfg := Default()
	cfg.SecretKey = "short"
	cfg.TokenTTL = 0
	cfg.PasswordHashAlgorithm = "md5"
	cfg.BcryptCost = 99
	cfg.TrustedProxies = []string{"not-an-ip"}
	cfg.LogLevel = "loud"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 7)

	missing := Default()
	err = missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORTCULLIS_SECRET_KEY")

	capped := Default()
	capped.SecretKey = testSecret
	capped.TokenTTL = 7200
	assert.ErrorContains(t, capped.Validate(), "max_token_ttl")
}

func TestTokenConfigAndHasher(t *testing.T) {
	cfg := Default()
	cfg.SecretKey = testSecret
	cfg.TokenTTL = 60

	tc := cfg.TokenConfig()
	assert.Equal(t, []byte(testSecret), tc.Key)
	assert.Equal(t, time.Minute, tc.DefaultTTL)
	assert.Equal(t, "portcullis", tc.Issuer)

	hasher, err := cfg.Hasher()
	require.NoError(t, err)
	assert.NotNil(t, hasher)
}

func TestIsTrustedProxy(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.IsTrustedProxy("10.1.2.3"))

	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.5"}
	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.True(t, cfg.IsTrustedProxy("192.168.1.5"))
	assert.False(t, cfg.IsTrustedProxy("192.168.1.6"))
	assert.False(t, cfg.IsTrustedProxy("garbage"))
}

func TestFormat_RedactsSecret(t *testing.T) {
	cfg := Default()
	cfg.SecretKey = testSecret

	text := cfg.FormatText()
	assert.NotContains(t, text, testSecret)
	assert.Contains(t, text, "(redacted)")
	assert.Contains(t, text, "token_ttl")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, testSecret)

	var parsed struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Len(t, parsed.Attributes, len(attributeNames()))

	unset := Default()
	assert.True(t, strings.Contains(unset.FormatText(), "(not set)"))
}
