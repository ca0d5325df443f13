package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Sources
	out.Sources = cfg.Sources
	redact(&out.Sources.OddsAPI.APIKey)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Export / S3
	out.Export = cfg.Export
	redact(&out.Export.S3.AccessKey)
	redact(&out.Export.S3.SecretKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Sources.Demo.Bookmakers != nil {
		out.Sources.Demo.Bookmakers = make([]string, len(cfg.Sources.Demo.Bookmakers))
		copy(out.Sources.Demo.Bookmakers, cfg.Sources.Demo.Bookmakers)
	}
	if cfg.Sources.OddsAPI.Sports != nil {
		out.Sources.OddsAPI.Sports = make([]string, len(cfg.Sources.OddsAPI.Sports))
		copy(out.Sources.OddsAPI.Sports, cfg.Sources.OddsAPI.Sports)
	}
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
