package config

const (
	DefaultBaseURL    = "http://localhost:5000"
	DefaultAPIVersion = "v1"
	DefaultTimeoutMs  = 30000
	// DefaultPassword is the password of every seeded account
	DefaultPassword = "password"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		Timeout:    DefaultTimeoutMs,
		Accounts: Accounts{
			Guardian:   Account{Username: "Graatand", Password: DefaultPassword},
			Department: Account{Username: "Tobias", Password: DefaultPassword},
			Citizen:    Account{Username: "Kurt", Password: DefaultPassword},
		},
		Reporters:   []string{"console"},
		ValidateSSL: BoolPtr(true),
		Bail:        BoolPtr(false),
		Verbose:     BoolPtr(false),
		NoColor:     BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.BaseURL == d.BaseURL &&
		c.APIVersion == d.APIVersion &&
		c.Timeout == d.Timeout &&
		c.Accounts == d.Accounts &&
		c.Proxy == d.Proxy &&
		c.RateLimit == d.RateLimit &&
		len(c.Headers) == 0 &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.GetBail() == d.GetBail() &&
		c.GetVerbose() == d.GetVerbose() &&
		c.GetNoColor() == d.GetNoColor()
}
