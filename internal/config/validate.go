package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScraping(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTheaters()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Backend {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path must be set for the sqlite backend")
		}
	case "postgres":
		if strings.TrimSpace(c.Database.PostgresDSN) == "" {
			return errors.New("database.postgres_dsn must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("database.backend must be \"sqlite\" or \"postgres\", got %q", c.Database.Backend)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.MediaRoot == "" {
		return errors.New("paths.media_root must be set")
	}
	if c.Paths.PostersDir == "" {
		return errors.New("paths.posters_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateScraping() error {
	if c.Scraping.TimeoutSeconds <= 0 {
		return errors.New("scraping.timeout_seconds must be positive")
	}
	if c.Scraping.Workers <= 0 {
		return errors.New("scraping.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}

func (c *Config) validateTheaters() error {
	seen := make(map[int64]struct{}, len(c.Theaters))
	for i, theater := range c.Theaters {
		if theater.ID <= 0 {
			return fmt.Errorf("theaters[%d]: id must be positive", i)
		}
		if _, dup := seen[theater.ID]; dup {
			return fmt.Errorf("theaters[%d]: duplicate id %d", i, theater.ID)
		}
		seen[theater.ID] = struct{}{}
		if strings.TrimSpace(theater.Name) == "" {
			return fmt.Errorf("theaters[%d]: name must be set", i)
		}
		if theater.Source == "" {
			return fmt.Errorf("theaters[%d]: source must be set", i)
		}
	}
	return nil
}
