// Package cmdutil provides shared utilities for ldapadm commands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/mithridate/ldapadm/internal/config"
	"github.com/mithridate/ldapadm/internal/directory"
	"github.com/mithridate/ldapadm/internal/logger"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigPath   string
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	Verbose      bool
}

// LoadConfig loads the configuration file and applies flag overrides.
// It also initializes the logger from the resulting configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if Flags.URL != "" {
		cfg.Directory.URL = Flags.URL
	}
	if Flags.BindDN != "" {
		cfg.Directory.BindDN = Flags.BindDN
	}
	if Flags.BindPassword != "" {
		cfg.Directory.BindPassword = Flags.BindPassword
	}
	if Flags.BaseDN != "" {
		cfg.Identity.BaseDN = Flags.BaseDN
	}
	if Flags.Verbose {
		cfg.Logging.Level = "DEBUG"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// OpenDirectory loads configuration and opens a directory session.
// The caller owns the returned session and must Close it.
func OpenDirectory(ctx context.Context) (*directory.Directory, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := directory.Open(ctx, cfg.LDAPConfig(), cfg.DirectoryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to directory: %w", err)
	}

	return dir, nil
}
