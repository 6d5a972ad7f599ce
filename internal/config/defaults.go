package config

const (
	defaultConfigPath               = "~/.config/condish/config.toml"
	defaultDataDir                  = "~/.local/share/condish"
	defaultLogDir                   = "~/.local/share/condish/logs"
	defaultReportDir                = "~/.local/share/condish/reports"
	defaultAPIBind                  = "127.0.0.1:7488"
	defaultLLMBaseURL               = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                 = "google/gemini-2.5-flash"
	defaultLLMReferer               = "https://github.com/anasstissir/multimodel-condishAI"
	defaultLLMTitle                 = "Condish Inspector"
	defaultLLMTimeoutSeconds        = 60
	defaultRemoteTimeoutSeconds     = 90
	defaultRemoteRetryCount         = 2
	defaultRegion                   = "United States"
	defaultCurrency                 = "USD"
	defaultAnalyzeTimeoutSeconds    = 90
	defaultSettlementTimeoutSeconds = 120
	defaultStoreBackend             = StoreBackendSQLite
	defaultStoreMaxBytes            = 4 << 20
	defaultRedisAddr                = "127.0.0.1:6379"
	defaultStoreKeyPrefix           = "condish:"
	defaultNotifyRequestTimeout     = 10
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Collaborator implementations.
const (
	CollaboratorsLLM    = "llm"
	CollaboratorsRemote = "remote"
)

// Store backends.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
			APIBind:   defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Remote: Remote{
			TimeoutSeconds: defaultRemoteTimeoutSeconds,
			RetryCount:     defaultRemoteRetryCount,
		},
		Inspection: Inspection{
			Collaborators:            CollaboratorsLLM,
			Region:                   defaultRegion,
			DefaultCurrency:          defaultCurrency,
			AnalyzeTimeoutSeconds:    defaultAnalyzeTimeoutSeconds,
			SettlementTimeoutSeconds: defaultSettlementTimeoutSeconds,
		},
		Store: Store{
			Backend:   defaultStoreBackend,
			MaxBytes:  defaultStoreMaxBytes,
			RedisAddr: defaultRedisAddr,
			KeyPrefix: defaultStoreKeyPrefix,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Inspection:     true,
			Settlement:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
