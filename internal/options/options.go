// Package options resolves the notifier behavior options shared by every
// bridge binary. Resolution happens once at startup: explicit overrides win,
// then environment variables, then the unset default. The result is immutable
// for the process lifetime.
package options

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables recognized by every bridge.
const (
	EnvLevelInTitle           = "LEVEL_IN_TITLE"
	EnvIndicateResolved       = "INDICATE_RESOLVED"
	EnvAllowResolvedType      = "ALLOW_RESOLVED_TYPE"
	EnvUnresolvedTimeoutTypes = "UNRESOLVED_TIMEOUT_TYPES"
	EnvUnresolvedTimeout      = "UNRESOLVED_TIMEOUT"
)

// ResolvedType names one side of an alert's resolved flag.
type ResolvedType string

const (
	Resolved   ResolvedType = "resolved"
	Unresolved ResolvedType = "unresolved"
)

// Options holds the shared notifier options. Nil slices/pointers mean unset:
// nil AllowedResolveTypes forwards everything, nil ResolverTimeout disables
// debouncing, empty ResolverTypes debounces all alert types.
type Options struct {
	LevelInTitle        *bool
	ResolvedIndicator   *bool
	AllowedResolveTypes []ResolvedType
	ResolverTimeout     *time.Duration
	ResolverTypes       []string
}

// ConfigError marks a startup option that could not be parsed. The process
// must not start serving with one of these.
type ConfigError struct {
	Var   string
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("could not parse '%s' env: %v", e.Var, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Resolve fills unset fields of overrides from the environment. Malformed
// booleans only warn (the default is kept); malformed resolve-type lists and
// timeouts are terminal.
func Resolve(overrides Options, log zerolog.Logger) (Options, error) {
	opts := overrides

	if opts.LevelInTitle == nil {
		v, err := ParseBool(os.Getenv(EnvLevelInTitle))
		if err != nil {
			log.Warn().Err(err).
				Msgf("could not parse %s to a truthy value, will use notifier default", EnvLevelInTitle)
		} else {
			opts.LevelInTitle = v
		}
	}

	if opts.ResolvedIndicator == nil {
		v, err := ParseBool(os.Getenv(EnvIndicateResolved))
		if err != nil {
			log.Warn().Err(err).
				Msgf("could not parse %s to a truthy value, will use notifier default", EnvIndicateResolved)
		} else {
			opts.ResolvedIndicator = v
		}
	}

	if opts.AllowedResolveTypes == nil {
		raw := os.Getenv(EnvAllowResolvedType)
		if strings.TrimSpace(raw) != "" {
			types, err := ParseResolvedTypes(raw)
			if err != nil {
				return Options{}, &ConfigError{Var: EnvAllowResolvedType, cause: err}
			}
			opts.AllowedResolveTypes = types
		}
	}

	if opts.ResolverTypes == nil {
		raw := os.Getenv(EnvUnresolvedTimeoutTypes)
		if strings.TrimSpace(raw) != "" {
			opts.ResolverTypes = ParseAlertTypes(raw)
		}
	}

	if opts.ResolverTimeout == nil {
		raw := os.Getenv(EnvUnresolvedTimeout)
		if raw != "" {
			ms, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return Options{}, &ConfigError{Var: EnvUnresolvedTimeout, cause: fmt.Errorf("not a number: %q", raw)}
			}
			if ms < 0 {
				return Options{}, &ConfigError{Var: EnvUnresolvedTimeout, cause: fmt.Errorf("must be non-negative, got %d", ms)}
			}
			d := time.Duration(ms) * time.Millisecond
			opts.ResolverTimeout = &d
		}
	}

	return opts, nil
}

// ParseBool coerces an option string. Exactly 1/true and 0/false are
// recognized (trimmed, case-insensitive); empty means unset (nil, no error).
func ParseBool(s string) (*bool, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return nil, nil
	case "1", "true":
		b := true
		return &b, nil
	case "0", "false":
		b := false
		return &b, nil
	default:
		return nil, fmt.Errorf("cannot interpret %q as a boolean", s)
	}
}

// ParseResolvedTypes parses a comma-separated list restricted to the
// resolved/unresolved literals. Any other token fails the whole list.
func ParseResolvedTypes(s string) ([]ResolvedType, error) {
	var bad []string
	seen := make(map[ResolvedType]struct{})
	var types []ResolvedType
	for _, tok := range strings.Split(s, ",") {
		t := ResolvedType(strings.ToLower(strings.TrimSpace(tok)))
		if t != Resolved && t != Unresolved {
			bad = append(bad, string(t))
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("invalid resolve types found, values must be either 'resolved' or 'unresolved', invalid found: %s",
			strings.Join(bad, ","))
	}
	return types, nil
}

// ParseAlertTypes parses a comma-separated alert type list: trimmed,
// lower-cased, deduplicated. Membership is not validated against the known
// type enumeration; unknown types simply never match an alert.
func ParseAlertTypes(s string) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, tok := range strings.Split(s, ",") {
		t := strings.ToLower(strings.TrimSpace(tok))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}

// ResolvedAllowed is the resolution filter: with no configured types every
// alert is forwarded, otherwise the alert's resolved state must be a member.
func ResolvedAllowed(types []ResolvedType, resolved bool) bool {
	if types == nil {
		return true
	}
	for _, t := range types {
		if (t == Resolved && resolved) || (t == Unresolved && !resolved) {
			return true
		}
	}
	return false
}
