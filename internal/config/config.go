package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Secrets  SecretsConfig
	Submit   SubmitConfig
	External ExternalAPIConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type StorageConfig struct {
	HistoryFile string
	AuditDB     string
}

// SecretsConfig holds the access keys guarding stop and history-clear.
// The defaults match the original deployment; override them in production.
type SecretsConfig struct {
	StopKey  string
	ClearKey string
}

type SubmitConfig struct {
	RatePerMinute int
	Burst         int
}

type ExternalAPIConfig struct {
	ResolverURL string
	TokenURL    string
	ActionURL   string
	Timeout     int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Host: getEnv("HOST", "localhost"),
		},
		Storage: StorageConfig{
			HistoryFile: getEnv("HISTORY_FILE", "data/history.json"),
			AuditDB:     getEnv("AUDIT_DB", "data/audit.db"),
		},
		Secrets: SecretsConfig{
			StopKey:  getEnv("STOP_KEY", "stopnow"),
			ClearKey: getEnv("CLEAR_KEY", "shareddd"),
		},
		Submit: SubmitConfig{
			RatePerMinute: getEnvAsInt("SUBMIT_RATE", 30),
			Burst:         getEnvAsInt("SUBMIT_BURST", 10),
		},
		External: ExternalAPIConfig{
			ResolverURL: getEnv("RESOLVER_URL", ""),
			TokenURL:    getEnv("TOKEN_URL", ""),
			ActionURL:   getEnv("ACTION_URL", ""),
			Timeout:     getEnvAsInt("EXTERNAL_API_TIMEOUT", 30),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
