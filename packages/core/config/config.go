package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Account is a login used by the suites
type Account struct {
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Accounts holds the seeded logins the suites authenticate with
type Accounts struct {
	Guardian   Account `json:"guardian,omitempty" yaml:"guardian,omitempty"`
	Department Account `json:"department,omitempty" yaml:"department,omitempty"`
	Citizen    Account `json:"citizen,omitempty" yaml:"citizen,omitempty"`
}

// Config represents the giraftest configuration
type Config struct {
	BaseURL     string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	APIVersion  string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Timeout     int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Accounts    Accounts          `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	Reporters   []string          `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	Proxy       string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	RateLimit   float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second
	ValidateSSL *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Bail        *bool             `json:"bail,omitempty" yaml:"bail,omitempty"`
	Verbose     *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor     *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration converts the millisecond timeout, falling back to the default
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return time.Duration(DefaultTimeoutMs) * time.Millisecond
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, searched in order
var ConfigFilenames = []string{
	"giraftest.config.json",
	".giraftest.config.json",
	"giraftest.yaml",
	"giraftest.yml",
	".giraftest.yaml",
}

// LoadConfig loads configuration from the specified path or searches the
// current directory. Without a file the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	if path := FindConfigFile(dir); path != "" {
		return loadConfigFromFile(path)
	}
	return DefaultConfig(), nil
}

// FindConfigFile returns the first config file present in dir, or ""
func FindConfigFile(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	fileCfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fileCfg)
	default:
		err = json.Unmarshal(data, fileCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return DefaultConfig().Merge(fileCfg), nil
}

// Merge merges another config into this one, with other taking precedence.
// Zero values in other leave the current value alone.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c
	result.Headers = copyHeaders(c.Headers)

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.APIVersion != "" {
		result.APIVersion = other.APIVersion
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}

	result.Accounts.Guardian = mergeAccount(result.Accounts.Guardian, other.Accounts.Guardian)
	result.Accounts.Department = mergeAccount(result.Accounts.Department, other.Accounts.Department)
	result.Accounts.Citizen = mergeAccount(result.Accounts.Citizen, other.Accounts.Citizen)

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

func mergeAccount(base, other Account) Account {
	if other.Username != "" {
		base.Username = other.Username
	}
	if other.Password != "" {
		base.Password = other.Password
	}
	return base
}

func copyHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// FromEnv builds an override config from prefix-stripped variables such as
// BASE_URL, TIMEOUT or GUARDIAN_PASSWORD. Unknown keys are ignored.
func FromEnv(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	for key, value := range vars {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		var err error
		switch strings.ToUpper(key) {
		case "BASE_URL":
			cfg.BaseURL = value
		case "API_VERSION":
			cfg.APIVersion = value
		case "TIMEOUT":
			cfg.Timeout, err = parseTimeoutMs(value)
		case "PROXY":
			cfg.Proxy = value
		case "RATE_LIMIT":
			cfg.RateLimit, err = strconv.ParseFloat(value, 64)
		case "REPORTERS":
			cfg.Reporters = splitList(value)
		case "VALIDATE_SSL":
			cfg.ValidateSSL, err = parseBoolPtr(value)
		case "BAIL":
			cfg.Bail, err = parseBoolPtr(value)
		case "VERBOSE":
			cfg.Verbose, err = parseBoolPtr(value)
		case "NO_COLOR":
			cfg.NoColor, err = parseBoolPtr(value)
		case "GUARDIAN_USERNAME":
			cfg.Accounts.Guardian.Username = value
		case "GUARDIAN_PASSWORD":
			cfg.Accounts.Guardian.Password = value
		case "DEPARTMENT_USERNAME":
			cfg.Accounts.Department.Username = value
		case "DEPARTMENT_PASSWORD":
			cfg.Accounts.Department.Password = value
		case "CITIZEN_USERNAME":
			cfg.Accounts.Citizen.Username = value
		case "CITIZEN_PASSWORD":
			cfg.Accounts.Citizen.Password = value
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return cfg, nil
}

// parseTimeoutMs accepts plain milliseconds or a Go duration such as "5s"
func parseTimeoutMs(value string) (int, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	return int(d.Milliseconds()), nil
}

func parseBoolPtr(value string) (*bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Expand rewrites header values and account credentials through fn
func (c *Config) Expand(fn func(string) string) {
	for k, v := range c.Headers {
		c.Headers[k] = fn(v)
	}
	for _, a := range []*Account{&c.Accounts.Guardian, &c.Accounts.Department, &c.Accounts.Citizen} {
		a.Username = fn(a.Username)
		a.Password = fn(a.Password)
	}
}

// Validate reports configuration that cannot be used for a run
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must start with http:// or https://: %s", c.BaseURL)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// SaveConfig saves the configuration as JSON or YAML depending on the extension
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
