package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeRemote()
	c.normalizeInspection()
	c.normalizeStore()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("CONDISH_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("CONDISH_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if strings.TrimSpace(c.LLM.Referer) == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	if strings.TrimSpace(c.LLM.Title) == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		if value, ok := os.LookupEnv("CONDISH_REMOTE_URL"); ok {
			c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeoutSeconds
	}
	if c.Remote.RetryCount < 0 {
		c.Remote.RetryCount = 0
	}
}

func (c *Config) normalizeInspection() {
	c.Inspection.Collaborators = strings.ToLower(strings.TrimSpace(c.Inspection.Collaborators))
	if c.Inspection.Collaborators == "" {
		c.Inspection.Collaborators = CollaboratorsLLM
	}
	c.Inspection.Region = strings.TrimSpace(c.Inspection.Region)
	if c.Inspection.Region == "" {
		c.Inspection.Region = defaultRegion
	}
	c.Inspection.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.Inspection.DefaultCurrency))
	if c.Inspection.DefaultCurrency == "" {
		c.Inspection.DefaultCurrency = defaultCurrency
	}
	if c.Inspection.AnalyzeTimeoutSeconds <= 0 {
		c.Inspection.AnalyzeTimeoutSeconds = defaultAnalyzeTimeoutSeconds
	}
	if c.Inspection.SettlementTimeoutSeconds <= 0 {
		c.Inspection.SettlementTimeoutSeconds = defaultSettlementTimeoutSeconds
	}
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	if c.Store.MaxBytes <= 0 {
		c.Store.MaxBytes = defaultStoreMaxBytes
	}
	c.Store.RedisAddr = strings.TrimSpace(c.Store.RedisAddr)
	if value, ok := os.LookupEnv("CONDISH_REDIS_ADDR"); ok && strings.TrimSpace(value) != "" {
		c.Store.RedisAddr = strings.TrimSpace(value)
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = defaultRedisAddr
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = defaultStoreKeyPrefix
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
