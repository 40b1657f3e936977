package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/portcullis/pkg/password"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

const (
	DefaultConfigPath = "/etc/portcullis"
	ConfigFileName    = "portcullis.yml"
	EnvPrefix         = "PORTCULLIS_"
)

// Attribute sources
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// Attribute names, which double as YAML keys
const (
	AttrSecretKey               = "secret_key"
	AttrTokenTTL                = "token_ttl"
	AttrMaxTokenTTL             = "max_token_ttl"
	AttrTokenIssuer             = "token_issuer"
	AttrPasswordHashAlgorithm   = "password_hash_algorithm"
	AttrBcryptCost              = "bcrypt_cost"
	AttrBindPermissionsOnCreate = "bind_permissions_on_create"
	AttrAuditEnabled            = "audit_enabled"
	AttrTrustedProxies          = "trusted_proxies"
	AttrLogLevel                = "log_level"
	AttrLogFormat               = "log_format"
)

// Config holds all Portcullis configuration settings. It is loaded once at
// startup and passed to constructors; nothing mutates it afterwards.
type Config struct {
	// SecretKey signs tokens; at least token.MinKeyLength bytes
	SecretKey string

	// TokenTTL is the default token lifetime in seconds
	TokenTTL int

	// MaxTokenTTL caps per-request duration overrides, in seconds
	MaxTokenTTL int

	// TokenIssuer is written to and required in the iss claim
	TokenIssuer string

	// PasswordHashAlgorithm hashes new passwords (bcrypt or argon2id)
	PasswordHashAlgorithm string

	// BcryptCost is the bcrypt work factor
	BcryptCost int

	// BindPermissionsOnCreate binds permissions_list to newly created users
	BindPermissionsOnCreate bool

	// AuditEnabled turns audit logging on
	AuditEnabled bool

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is honoured
	TrustedProxies []string

	LogLevel  string
	LogFormat string

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors the YAML file; nil fields were not set
type fileConfig struct {
	SecretKey               *string  `yaml:"secret_key"`
	TokenTTL                *int     `yaml:"token_ttl"`
	MaxTokenTTL             *int     `yaml:"max_token_ttl"`
	TokenIssuer             *string  `yaml:"token_issuer"`
	PasswordHashAlgorithm   *string  `yaml:"password_hash_algorithm"`
	BcryptCost              *int     `yaml:"bcrypt_cost"`
	BindPermissionsOnCreate *bool    `yaml:"bind_permissions_on_create"`
	AuditEnabled            *bool    `yaml:"audit_enabled"`
	TrustedProxies          []string `yaml:"trusted_proxies"`
	LogLevel                *string  `yaml:"log_level"`
	LogFormat               *string  `yaml:"log_format"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Default returns a config with default values and no secret key
func Default() *Config {
	c := &Config{
		TokenTTL:              int(token.DefaultTTL / time.Second),
		MaxTokenTTL:           3600,
		TokenIssuer:           "portcullis",
		PasswordHashAlgorithm: password.AlgorithmBcrypt,
		BcryptCost:            bcrypt.DefaultCost,
		AuditEnabled:          true,
		TrustedProxies:        []string{},
		LogLevel:              "info",
		LogFormat:             "text",
		sources:               make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values. Malformed values
// are reported together.
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	data, err := os.ReadFile(config.configFilePath)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", config.configFilePath, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		AttrSecretKey, AttrTokenTTL, AttrMaxTokenTTL, AttrTokenIssuer,
		AttrPasswordHashAlgorithm, AttrBcryptCost, AttrBindPermissionsOnCreate,
		AttrAuditEnabled, AttrTrustedProxies, AttrLogLevel, AttrLogFormat,
	}
}

// EnvName returns the environment variable for an attribute
func EnvName(attr string) string {
	return EnvPrefix + strings.ToUpper(attr)
}

func (c *Config) applyFileConfig(file *fileConfig) {
	setString := func(attr string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			c.sources[attr] = SourceFile
		}
	}
	setInt := func(attr string, dst *int, src *int) {
		if src != nil {
			*dst = *src
			c.sources[attr] = SourceFile
		}
	}
	setBool := func(attr string, dst *bool, src *bool) {
		if src != nil {
			*dst = *src
			c.sources[attr] = SourceFile
		}
	}

	setString(AttrSecretKey, &c.SecretKey, file.SecretKey)
	setInt(AttrTokenTTL, &c.TokenTTL, file.TokenTTL)
	setInt(AttrMaxTokenTTL, &c.MaxTokenTTL, file.MaxTokenTTL)
	setString(AttrTokenIssuer, &c.TokenIssuer, file.TokenIssuer)
	setString(AttrPasswordHashAlgorithm, &c.PasswordHashAlgorithm, file.PasswordHashAlgorithm)
	setInt(AttrBcryptCost, &c.BcryptCost, file.BcryptCost)
	setBool(AttrBindPermissionsOnCreate, &c.BindPermissionsOnCreate, file.BindPermissionsOnCreate)
	setBool(AttrAuditEnabled, &c.AuditEnabled, file.AuditEnabled)
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources[AttrTrustedProxies] = SourceFile
	}
	setString(AttrLogLevel, &c.LogLevel, file.LogLevel)
	setString(AttrLogFormat, &c.LogFormat, file.LogFormat)
}

func (c *Config) applyEnvConfig() error {
	var result *multierror.Error

	setString := func(attr string, dst *string) {
		if val := os.Getenv(EnvName(attr)); val != "" {
			*dst = val
			c.sources[attr] = SourceEnvironment
		}
	}
	setInt := func(attr string, dst *int) {
		if val := os.Getenv(EnvName(attr)); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %q is not an integer", EnvName(attr), val))
				return
			}
			*dst = i
			c.sources[attr] = SourceEnvironment
		}
	}
	setBool := func(attr string, dst *bool) {
		if val := os.Getenv(EnvName(attr)); val != "" {
			b, err := parseBool(val)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", EnvName(attr), err))
				return
			}
			*dst = b
			c.sources[attr] = SourceEnvironment
		}
	}

	setString(AttrSecretKey, &c.SecretKey)
	setInt(AttrTokenTTL, &c.TokenTTL)
	setInt(AttrMaxTokenTTL, &c.MaxTokenTTL)
	setString(AttrTokenIssuer, &c.TokenIssuer)
	setString(AttrPasswordHashAlgorithm, &c.PasswordHashAlgorithm)
	setInt(AttrBcryptCost, &c.BcryptCost)
	setBool(AttrBindPermissionsOnCreate, &c.BindPermissionsOnCreate)
	setBool(AttrAuditEnabled, &c.AuditEnabled)
	if val := os.Getenv(EnvName(AttrTrustedProxies)); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources[AttrTrustedProxies] = SourceEnvironment
	}
	setString(AttrLogLevel, &c.LogLevel)
	setString(AttrLogFormat, &c.LogFormat)

	return result.ErrorOrNil()
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", val)
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// SigningKey returns the token signing key
func (c *Config) SigningKey() []byte {
	return []byte(c.SecretKey)
}

// DefaultTokenTTL returns the default token TTL as a duration
func (c *Config) DefaultTokenTTL() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// MaxTokenDuration returns the longest TTL a request may ask for
func (c *Config) MaxTokenDuration() time.Duration {
	return time.Duration(c.MaxTokenTTL) * time.Second
}

// TokenConfig returns the token signer configuration
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		Key:        c.SigningKey(),
		DefaultTTL: c.DefaultTokenTTL(),
		Issuer:     c.TokenIssuer,
	}
}

// Hasher builds the configured password hasher
func (c *Config) Hasher() (password.Hasher, error) {
	return password.New(c.PasswordHashAlgorithm, c.BcryptCost)
}

// HCLogLevel returns the log level for hclog
func (c *Config) HCLogLevel() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// JSONLogFormat reports whether logs are emitted as JSON
func (c *Config) JSONLogFormat() bool {
	return c.LogFormat == "json"
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if proxy := net.ParseIP(cidr); proxy != nil && proxy.Equal(parsedIP) {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration, reporting every problem
func (c *Config) Validate() error {
	var result *multierror.Error

	switch {
	case c.SecretKey == "":
		result = multierror.Append(result, fmt.Errorf("%s is required (set %s)", AttrSecretKey, EnvName(AttrSecretKey)))
	case len(c.SecretKey) < token.MinKeyLength:
		result = multierror.Append(result, fmt.Errorf("%s must be at least %d bytes", AttrSecretKey, token.MinKeyLength))
	}

	if c.TokenTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s must be positive", AttrTokenTTL))
	}
	if c.MaxTokenTTL < c.TokenTTL {
		result = multierror.Append(result, fmt.Errorf("%s must not be less than %s", AttrMaxTokenTTL, AttrTokenTTL))
	}

	switch c.PasswordHashAlgorithm {
	case password.AlgorithmBcrypt, password.AlgorithmArgon2id:
	default:
		result = multierror.Append(result, fmt.Errorf("invalid %s: %s", AttrPasswordHashAlgorithm, c.PasswordHashAlgorithm))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		result = multierror.Append(result, fmt.Errorf("%s must be between %d and %d", AttrBcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	// Validate trusted proxies are valid CIDR ranges
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				result = multierror.Append(result, fmt.Errorf("invalid %s value: %s", AttrTrustedProxies, cidr))
			}
		}
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid %s: %s", AttrLogLevel, c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("invalid %s: %s", AttrLogFormat, c.LogFormat))
	}

	return result.ErrorOrNil()
}

// Attributes returns all configuration attributes with their values and
// sources. The secret key is never included.
func (c *Config) Attributes() []Attribute {
	secret := ""
	if c.SecretKey != "" {
		secret = "(redacted)"
	}
	return []Attribute{
		{Name: AttrSecretKey, Value: secret, Source: c.Source(AttrSecretKey)},
		{Name: AttrTokenTTL, Value: strconv.Itoa(c.TokenTTL), Source: c.Source(AttrTokenTTL)},
		{Name: AttrMaxTokenTTL, Value: strconv.Itoa(c.MaxTokenTTL), Source: c.Source(AttrMaxTokenTTL)},
		{Name: AttrTokenIssuer, Value: c.TokenIssuer, Source: c.Source(AttrTokenIssuer)},
		{Name: AttrPasswordHashAlgorithm, Value: c.PasswordHashAlgorithm, Source: c.Source(AttrPasswordHashAlgorithm)},
		{Name: AttrBcryptCost, Value: strconv.Itoa(c.BcryptCost), Source: c.Source(AttrBcryptCost)},
		{Name: AttrBindPermissionsOnCreate, Value: strconv.FormatBool(c.BindPermissionsOnCreate), Source: c.Source(AttrBindPermissionsOnCreate)},
		{Name: AttrAuditEnabled, Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source(AttrAuditEnabled)},
		{Name: AttrTrustedProxies, Value: strings.Join(c.TrustedProxies, ","), Source: c.Source(AttrTrustedProxies)},
		{Name: AttrLogLevel, Value: c.LogLevel, Source: c.Source(AttrLogLevel)},
		{Name: AttrLogFormat, Value: c.LogFormat, Source: c.Source(AttrLogFormat)},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
