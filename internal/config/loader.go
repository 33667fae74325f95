package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/alertbridge/alertbridge/internal/alert"
)

// Load reads the optional YAML file. An empty path or a missing file yields
// an empty File: the environment alone is a complete configuration source.
func Load(path string) (*File, error) {
	cfg := &File{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveListen applies the PORT env override and the default port.
func ResolveListen(f *File) Listen {
	l := f.Listen
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			l.Port = p
		}
	}
	if l.Port == 0 {
		l.Port = DefaultPort
	}
	return l
}

// ResolveLogLevel applies the LOG_LEVEL env override.
func ResolveLogLevel(f *File) string {
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		return lvl
	}
	return f.LogLevel
}

// ResolveGotify builds the gotify backend config from file + env.
func ResolveGotify(f *File, log zerolog.Logger) (GotifyConfig, error) {
	c := f.Gotify
	c.URL = envOr("GOTIFY_URL", c.URL)
	c.AppToken = envOr("GOTIFY_APP_TOKEN", c.AppToken)
	if strings.TrimSpace(c.URL) == "" {
		return GotifyConfig{}, fmt.Errorf("GOTIFY_URL not defined in ENV")
	}
	if strings.TrimSpace(c.AppToken) == "" {
		return GotifyConfig{}, fmt.Errorf("GOTIFY_APP_TOKEN not defined in ENV")
	}
	c.Priorities = resolvePriorities("GOTIFY", map[alert.Level]int{
		alert.LevelOk:       3,
		alert.LevelWarning:  5,
		alert.LevelCritical: 8,
	}, c.Priorities, log)
	return c, nil
}

// ResolveNtfy builds the ntfy backend config from file + env.
func ResolveNtfy(f *File, log zerolog.Logger) (NtfyConfig, error) {
	c := f.Ntfy
	c.URL = envOr("NTFY_URL", c.URL)
	c.Topic = envOr("NTFY_TOPIC", c.Topic)
	c.User = envOr("NTFY_USER", c.User)
	c.Password = envOr("NTFY_PASSWORD", c.Password)
	c.Token = envOr("NTFY_TOKEN", c.Token)
	if strings.TrimSpace(c.URL) == "" {
		return NtfyConfig{}, fmt.Errorf("NTFY_URL not defined in ENV")
	}
	if strings.TrimSpace(c.Topic) == "" {
		return NtfyConfig{}, fmt.Errorf("NTFY_TOPIC not defined in ENV")
	}
	c.Priorities = resolvePriorities("NTFY", map[alert.Level]int{
		alert.LevelOk:       3,
		alert.LevelWarning:  4,
		alert.LevelCritical: 5,
	}, c.Priorities, log)

	switch {
	case c.User != "" && c.Password != "":
		log.Info().Msg("using user/password authentication")
	case c.Token != "":
		log.Info().Msg("using token authentication")
	default:
		log.Info().Msg("no authentication specified")
	}
	return c, nil
}

// ResolveDiscord builds the discord backend config from file + env.
func ResolveDiscord(f *File) (DiscordConfig, error) {
	c := f.Discord
	c.Webhook = envOr("DISCORD_WEBHOOK", c.Webhook)
	if strings.TrimSpace(c.Webhook) == "" {
		return DiscordConfig{}, fmt.Errorf("DISCORD_WEBHOOK not defined in ENV")
	}
	return c, nil
}

// ResolveApprise builds the apprise backend config from file + env. Keys and
// URLs are both optional; with neither set the bridge pushes to the stateless
// /notify endpoint and assumes the Apprise instance has its own URLs set.
func ResolveApprise(f *File, log zerolog.Logger) (AppriseConfig, error) {
	c := f.Apprise
	c.Host = envOr("APPRISE_HOST", c.Host)
	if strings.TrimSpace(c.Host) == "" {
		return AppriseConfig{}, fmt.Errorf("APPRISE_HOST must be defined")
	}
	if raw := strings.TrimSpace(os.Getenv("APPRISE_STATELESS_URLS")); raw != "" {
		c.StatelessURLs = splitList(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("APPRISE_PERSISTENT_KEYS")); raw != "" {
		c.PersistentKeys = splitList(raw)
	}
	c.Tag = envOr("APPRISE_TAG", c.Tag)

	if len(c.StatelessURLs) == 0 && len(c.PersistentKeys) == 0 {
		log.Warn().Msgf("no APPRISE_STATELESS_URLS or APPRISE_PERSISTENT_KEYS were defined, will assume stateless (POST %s/notify) and that the Apprise instance has APPRISE_STATELESS_URLS set", c.Host)
	}
	return c, nil
}

// resolvePriorities layers file values then {PREFIX}_{Level}_PRIORITY env
// overrides on top of the backend defaults. A malformed override keeps the
// previous value with a warning; the priority table is not worth refusing to
// start over.
func resolvePriorities(prefix string, defaults, file map[alert.Level]int, log zerolog.Logger) map[alert.Level]int {
	out := make(map[alert.Level]int, len(defaults))
	for lvl, p := range defaults {
		out[lvl] = p
	}
	for lvl, p := range file {
		if _, ok := out[lvl]; ok {
			out[lvl] = p
		}
	}
	levels := []alert.Level{alert.LevelOk, alert.LevelWarning, alert.LevelCritical}
	for _, lvl := range levels {
		key := fmt.Sprintf("%s_%s_PRIORITY", prefix, lvl)
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		p, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn().Msgf("value of %q for ENV %s could not be parsed as integer, using default priority instead", raw, key)
			continue
		}
		out[lvl] = p
	}
	for _, lvl := range levels {
		log.Info().Msgf("using priority %d for severity level %q", out[lvl], lvl)
	}
	return out
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if t := strings.TrimSpace(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}
