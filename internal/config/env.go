package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces every override variable.
const EnvPrefix = "TASKREWARD_"

// ApplyEnv overrides file values with TASKREWARD_* environment variables.
// Unset or unparsable variables leave the current value alone.
func (c *Config) ApplyEnv() {
	setString("ADDR", &c.Server.Addr)
	setString("DATA_DIR", &c.Data.Dir)
	setInt("LOG_MAX", &c.Activity.MaxEntries)

	setString("SYNC_AUTH_URL", &c.Sync.AuthURL)
	setString("SYNC_DATA_URL", &c.Sync.DataURL)
	setDuration("SYNC_INTERVAL", &c.Sync.Interval)
	setString("SYNC_TIMEZONE", &c.Sync.Timezone)

	setString("CLOUD_ADDR", &c.Cloud.Addr)
	setString("DB_DRIVER", &c.Cloud.DBDriver)
	setString("DB_DSN", &c.Cloud.DSN)
	setString("JWT_SECRET", &c.Cloud.JWTSecret)
	setDuration("TOKEN_TTL", &c.Cloud.TokenTTL)
	if v := getEnv("CORS_ORIGINS"); v != "" {
		c.Cloud.CORSOrigins = splitList(v)
	}
	setString("REDIS_ADDR", &c.Cloud.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Cloud.Redis.Password)
	setInt("REDIS_DB", &c.Cloud.Redis.DB)

	setString("TELEGRAM_TOKEN", &c.Telegram.Token)
	if v := getEnv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	setString("TELEGRAM_MIN_LEVEL", &c.Telegram.MinLevel)

	setString("BACKUP_DIR", &c.Backup.Dir)
	setString("S3_BUCKET", &c.Backup.S3Bucket)
	setString("S3_PREFIX", &c.Backup.S3Prefix)
	setString("S3_REGION", &c.Backup.S3Region)
	setString("S3_ENDPOINT", &c.Backup.S3Endpoint)
	setString("S3_ACCESS_KEY", &c.Backup.S3AccessKey)
	setString("S3_SECRET_KEY", &c.Backup.S3SecretKey)
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func setString(key string, dst *string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	v := getEnv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(key string, dst *time.Duration) {
	v := getEnv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
