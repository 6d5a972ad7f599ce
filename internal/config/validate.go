package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInspection(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateInspection() error {
	switch c.Inspection.Collaborators {
	case CollaboratorsLLM, CollaboratorsRemote:
	default:
		return fmt.Errorf("inspection.collaborators must be %q or %q, got %q", CollaboratorsLLM, CollaboratorsRemote, c.Inspection.Collaborators)
	}
	if _, err := currency.ParseISO(c.Inspection.DefaultCurrency); err != nil {
		return fmt.Errorf("inspection.default_currency %q is not an ISO 4217 code", c.Inspection.DefaultCurrency)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.Inspection.Collaborators != CollaboratorsLLM {
		return nil
	}
	if _, err := url.ParseRequestURI(c.LLM.BaseURL); err != nil {
		return fmt.Errorf("llm.base_url is invalid: %w", err)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if !c.Remote.Enabled && c.Inspection.Collaborators != CollaboratorsRemote {
		return nil
	}
	if c.Remote.BaseURL == "" {
		return errors.New("remote.base_url must be set when remote collaborators are used (or set CONDISH_REMOTE_URL)")
	}
	if _, err := url.ParseRequestURI(c.Remote.BaseURL); err != nil {
		return fmt.Errorf("remote.base_url is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendSQLite, StoreBackendMemory:
	case StoreBackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr must be set when store.backend is redis")
		}
		if c.Store.RedisDB < 0 {
			return errors.New("store.redis_db must not be negative")
		}
	default:
		return fmt.Errorf("store.backend must be one of sqlite, redis, memory; got %q", c.Store.Backend)
	}
	if c.Store.MaxBytes < 1024 {
		return errors.New("store.max_bytes must be at least 1024")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error; got %q", c.Logging.Level)
	}
	return nil
}
