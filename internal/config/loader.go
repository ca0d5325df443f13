package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies COURTBOT_* environment variable overrides, and
// returns the final Config. A missing file is not an error: defaults plus
// environment overrides make a complete configuration on their own. The
// returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known COURTBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Scan ──
	setDuration(&cfg.Scan.Interval, "COURTBOT_SCAN_INTERVAL")
	setDuration(&cfg.Scan.FetchTimeout, "COURTBOT_SCAN_FETCH_TIMEOUT")
	setInt(&cfg.Scan.Concurrency, "COURTBOT_SCAN_CONCURRENCY")
	setFloat64(&cfg.Scan.MinProfitPct, "COURTBOT_SCAN_MIN_PROFIT_PCT")
	setFloat64(&cfg.Scan.ValueMarginThreshold, "COURTBOT_SCAN_VALUE_MARGIN_THRESHOLD")
	setInt(&cfg.Scan.TopN, "COURTBOT_SCAN_TOP_N")
	setBool(&cfg.Scan.RequireTwoSources, "COURTBOT_SCAN_REQUIRE_TWO_SOURCES")
	setBool(&cfg.Scan.Calculations, "COURTBOT_SCAN_CALCULATIONS")

	// ── Sources ──
	setBool(&cfg.Sources.Demo.Enabled, "COURTBOT_SOURCES_DEMO_ENABLED")
	setStringSlice(&cfg.Sources.Demo.Bookmakers, "COURTBOT_SOURCES_DEMO_BOOKMAKERS")
	setInt64(&cfg.Sources.Demo.Seed, "COURTBOT_SOURCES_DEMO_SEED")
	setBool(&cfg.Sources.OddsAPI.Enabled, "COURTBOT_SOURCES_ODDSAPI_ENABLED")
	setStr(&cfg.Sources.OddsAPI.BaseURL, "COURTBOT_SOURCES_ODDSAPI_BASE_URL")
	setStr(&cfg.Sources.OddsAPI.APIKey, "COURTBOT_SOURCES_ODDSAPI_API_KEY")
	setStringSlice(&cfg.Sources.OddsAPI.Sports, "COURTBOT_SOURCES_ODDSAPI_SPORTS")
	setStr(&cfg.Sources.OddsAPI.Regions, "COURTBOT_SOURCES_ODDSAPI_REGIONS")
	setDuration(&cfg.Sources.OddsAPI.Timeout, "COURTBOT_SOURCES_ODDSAPI_TIMEOUT")
	setBool(&cfg.Sources.Oddsportal.Enabled, "COURTBOT_SOURCES_ODDSPORTAL_ENABLED")
	setStr(&cfg.Sources.Oddsportal.URL, "COURTBOT_SOURCES_ODDSPORTAL_URL")
	setBool(&cfg.Sources.Oddsportal.Headless, "COURTBOT_SOURCES_ODDSPORTAL_HEADLESS")
	setDuration(&cfg.Sources.Oddsportal.Timeout, "COURTBOT_SOURCES_ODDSPORTAL_TIMEOUT")
	setDuration(&cfg.Sources.RateLimit, "COURTBOT_SOURCES_RATE_LIMIT")
	setInt(&cfg.Sources.MaxRetries, "COURTBOT_SOURCES_MAX_RETRIES")
	setDuration(&cfg.Sources.RetryBackoff, "COURTBOT_SOURCES_RETRY_BACKOFF")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "COURTBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "COURTBOT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "COURTBOT_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMin, "COURTBOT_SERVER_RATE_LIMIT_PER_MIN")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "COURTBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "COURTBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "COURTBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "COURTBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "COURTBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "COURTBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "COURTBOT_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.SnapshotTTLMinutes, "COURTBOT_REDIS_SNAPSHOT_TTL_MINUTES")

	// ── Export ──
	setBool(&cfg.Export.Enabled, "COURTBOT_EXPORT_ENABLED")
	setStr(&cfg.Export.Dir, "COURTBOT_EXPORT_DIR")
	setStr(&cfg.Export.Format, "COURTBOT_EXPORT_FORMAT")
	setBool(&cfg.Export.Append, "COURTBOT_EXPORT_APPEND")
	setBool(&cfg.Export.S3.Enabled, "COURTBOT_EXPORT_S3_ENABLED")
	setStr(&cfg.Export.S3.Endpoint, "COURTBOT_EXPORT_S3_ENDPOINT")
	setStr(&cfg.Export.S3.Region, "COURTBOT_EXPORT_S3_REGION")
	setStr(&cfg.Export.S3.Bucket, "COURTBOT_EXPORT_S3_BUCKET")
	setStr(&cfg.Export.S3.AccessKey, "COURTBOT_EXPORT_S3_ACCESS_KEY")
	setStr(&cfg.Export.S3.SecretKey, "COURTBOT_EXPORT_S3_SECRET_KEY")
	setBool(&cfg.Export.S3.UseSSL, "COURTBOT_EXPORT_S3_USE_SSL")
	setBool(&cfg.Export.S3.ForcePathStyle, "COURTBOT_EXPORT_S3_FORCE_PATH_STYLE")
	setStr(&cfg.Export.S3.Prefix, "COURTBOT_EXPORT_S3_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "COURTBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "COURTBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "COURTBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "COURTBOT_NOTIFY_EVENTS")
	setFloat64(&cfg.Notify.MinProfitPct, "COURTBOT_NOTIFY_MIN_PROFIT_PCT")

	// ── Top-level ──
	setStr(&cfg.Mode, "COURTBOT_MODE")
	setStr(&cfg.LogLevel, "COURTBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
