// Package config loads ldapadm configuration from file, environment and
// defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mithridate/ldapadm/internal/directory"
	"github.com/mithridate/ldapadm/internal/ldap"
	"github.com/mithridate/ldapadm/internal/logger"
)

// Config is the full ldapadm configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`
	Identity  IdentityConfig  `mapstructure:"identity" yaml:"identity"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `default:"INFO" mapstructure:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `default:"text" mapstructure:"format" validate:"oneof=text json" yaml:"format"`
	Output string `default:"stderr" mapstructure:"output" validate:"required" yaml:"output"`
}

// DirectoryConfig describes the directory endpoint and session credentials.
type DirectoryConfig struct {
	URL          string        `mapstructure:"url" validate:"required" yaml:"url"`
	BindDN       string        `mapstructure:"bind_dn" yaml:"bind_dn"`
	BindPassword string        `mapstructure:"bind_password" yaml:"bind_password"`
	Timeout      time.Duration `default:"30s" mapstructure:"timeout" validate:"gt=0" yaml:"timeout"`

	StartTLS bool `default:"true" mapstructure:"start_tls" yaml:"start_tls"`
	SkipTLS  bool `mapstructure:"skip_tls" yaml:"skip_tls"`

	KerberosRealm  string `mapstructure:"kerberos_realm" yaml:"kerberos_realm"`
	KerberosKeytab string `mapstructure:"kerberos_keytab" yaml:"kerberos_keytab"`
	KerberosConfig string `mapstructure:"kerberos_config" yaml:"kerberos_config"`
	KerberosSPN    string `mapstructure:"kerberos_spn" yaml:"kerberos_spn"`

	MaxRetries     int           `default:"3" mapstructure:"max_retries" validate:"gte=0" yaml:"max_retries"`
	InitialBackoff time.Duration `default:"500ms" mapstructure:"initial_backoff" validate:"gt=0" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `default:"30s" mapstructure:"max_backoff" validate:"gt=0" yaml:"max_backoff"`
	BackoffFactor  float64       `default:"2.0" mapstructure:"backoff_factor" validate:"gte=1" yaml:"backoff_factor"`
}

// IdentityConfig describes where identities live and how ids are issued.
type IdentityConfig struct {
	BaseDN       string `mapstructure:"base_dn" validate:"required" yaml:"base_dn"`
	UserBase     string `mapstructure:"user_base" yaml:"user_base"`
	GroupBase    string `mapstructure:"group_base" yaml:"group_base"`
	ComputerBase string `mapstructure:"computer_base" yaml:"computer_base"`

	UsersGroup     string `default:"Domain Users" mapstructure:"users_group" yaml:"users_group"`
	GuestsGroup    string `default:"Domain Guests" mapstructure:"guests_group" yaml:"guests_group"`
	ComputersGroup string `default:"Domain Computers" mapstructure:"computers_group" yaml:"computers_group"`

	// CounterDN overrides the entry carrying the allocation counters;
	// empty means the domain entry.
	CounterDN string `mapstructure:"counter_dn" yaml:"counter_dn"`

	AllocateRetries int           `default:"5" mapstructure:"allocate_retries" validate:"gte=0" yaml:"allocate_retries"`
	AllocateBackoff time.Duration `default:"50ms" mapstructure:"allocate_backoff" validate:"gt=0" yaml:"allocate_backoff"`
}

// Load reads configuration from the given file (or the default search
// paths when empty), environment variables prefixed LDAPADM_, and
// built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ldapadm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ldapadm")
		v.AddConfigPath("/etc/ldapadm")
	}

	v.SetEnvPrefix("LDAPADM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file is fine unless the caller named one explicitly.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	// Defaults go in first so values read from file or environment,
	// explicit zeros included, overwrite them rather than the reverse.
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoggerConfig adapts the logging section for logger.Init.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// LDAPConfig adapts the directory section for the transport layer.
func (c *Config) LDAPConfig() *ldap.Config {
	cfg := ldap.DefaultConfig()
	cfg.URL = c.Directory.URL
	cfg.BindDN = c.Directory.BindDN
	cfg.BindPassword = c.Directory.BindPassword
	cfg.Timeout = c.Directory.Timeout
	cfg.StartTLS = c.Directory.StartTLS
	cfg.SkipTLS = c.Directory.SkipTLS
	cfg.KerberosRealm = c.Directory.KerberosRealm
	cfg.KerberosKeytab = c.Directory.KerberosKeytab
	cfg.KerberosConfig = c.Directory.KerberosConfig
	cfg.KerberosSPN = c.Directory.KerberosSPN
	cfg.MaxRetries = c.Directory.MaxRetries
	cfg.InitialBackoff = c.Directory.InitialBackoff
	cfg.MaxBackoff = c.Directory.MaxBackoff
	cfg.BackoffFactor = c.Directory.BackoffFactor
	return cfg
}

// DirectoryOptions adapts the identity section for the domain layer.
func (c *Config) DirectoryOptions() *directory.Options {
	return &directory.Options{
		BaseDN:       c.Identity.BaseDN,
		UserBase:     c.Identity.UserBase,
		GroupBase:    c.Identity.GroupBase,
		ComputerBase: c.Identity.ComputerBase,
		WellKnown: directory.WellKnownGroups{
			Users:     c.Identity.UsersGroup,
			Guests:    c.Identity.GuestsGroup,
			Computers: c.Identity.ComputersGroup,
		},
		CounterDN:       c.Identity.CounterDN,
		AllocateRetries: c.Identity.AllocateRetries,
		AllocateBackoff: c.Identity.AllocateBackoff,
	}
}
