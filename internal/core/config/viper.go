package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FK_SERVER_PORT.
const EnvPrefix = "FK"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"host":          "server.host",
	"port":          "server.port",
	"db-url":        "database.url",
	"redis-addr":    "cache.redis_addr",
	"locale":        "evaluation.locale",
	"timezone":      "evaluation.timezone",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"regex-timeout": "evaluation.regex_timeout",
}

// LoadConfig loads configuration with precedence
// CLI flags > environment > config file > defaults.
// flags may be nil; only flags the user changed override lower layers.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			RequestTimeout:  v.GetDuration("server.request_timeout"),
			MaxMessageBytes: v.GetInt("server.max_message_bytes"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Cache: CacheConfig{
			RedisAddr: v.GetString("cache.redis_addr"),
			TTL:       v.GetDuration("cache.ttl"),
		},
		Evaluation: EvaluationConfig{
			RegexTimeout: v.GetDuration("evaluation.regex_timeout"),
			Locale:       v.GetString("evaluation.locale"),
			Timezone:     v.GetString("evaluation.timezone"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.max_message_bytes", d.Server.MaxMessageBytes)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.ttl", d.Cache.TTL.String())
	v.SetDefault("evaluation.regex_timeout", d.Evaluation.RegexTimeout.String())
	v.SetDefault("evaluation.locale", d.Evaluation.Locale)
	v.SetDefault("evaluation.timezone", d.Evaluation.Timezone)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// errSecretInConfig rejects HMAC secrets found in a config file.
var errSecretInConfig = fmt.Errorf("HMAC secrets not allowed in config files (use %s_HMAC_SECRET environment variable)", EnvPrefix)

func validateNoSecretsInConfig(v *viper.Viper) error {
	for _, key := range []string{"hmac_secret", "server.hmac_secret", "auth.hmac_secret"} {
		if v.InConfig(key) {
			return errSecretInConfig
		}
	}
	return nil
}
