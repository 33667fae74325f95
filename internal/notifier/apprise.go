package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/parser"
)

const upstreamFailureHint = "HINT: status 424 means a dependency upstream of Apprise failed. This is usually a connection or authentication issue. Check Apprise logs to see more details."

// Apprise pushes through an Apprise API instance, either to its stateless
// /notify endpoint (optionally with explicit service URLs) or to persistent
// configuration keys.
type Apprise struct {
	log      zerolog.Logger
	client   *http.Client
	endpoint config.URLData
	urls     []string
	keys     []string
	tag      string
}

func NewApprise(cfg config.AppriseConfig, log zerolog.Logger) (*Apprise, error) {
	endpoint, err := config.NormalizeWebAddress(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("could not parse apprise host: %w", err)
	}
	log.Debug().Msgf("apprise host config URL %q normalized to %q", cfg.Host, endpoint.Normal)

	a := &Apprise{
		log:      log.With().Str("component", "apprise").Logger(),
		client:   newHTTPClient(),
		endpoint: endpoint,
		urls:     cfg.StatelessURLs,
		keys:     cfg.PersistentKeys,
		tag:      cfg.Tag,
	}
	a.logConfigSummary()
	a.courtesyChecks()
	return a, nil
}

func (a *Apprise) Name() string { return "apprise" }

func (a *Apprise) logConfigSummary() {
	summary := []string{fmt.Sprintf("using Apprise @ %s", a.endpoint.Normal)}
	if len(a.urls) == 0 && len(a.keys) == 0 {
		summary = append(summary, "pushing to stateless endpoint (/notify)")
	} else {
		if len(a.urls) > 0 {
			summary = append(summary, fmt.Sprintf("pushing to stateless URLs '%s'", strings.Join(a.urls, ",")))
		}
		if len(a.keys) > 0 {
			summary = append(summary, fmt.Sprintf("pushing to persistent keys '%s'", strings.Join(a.keys, ",")))
		}
	}
	if a.tag != "" {
		summary = append(summary, fmt.Sprintf("with tag '%s'", a.tag))
	}
	a.log.Debug().Msg(strings.Join(summary, " | "))
}

// courtesyChecks probes the instance and configured keys at startup so an
// obviously broken setup surfaces before the first alert. Warn-only.
func (a *Apprise) courtesyChecks() {
	if err := config.PortReachable(a.endpoint.URL.Hostname(), a.endpoint.Port, time.Second); err != nil {
		a.log.Warn().Err(err).Msg("unable to detect if apprise server is reachable")
		return
	}

	if len(a.keys) == 0 {
		return
	}
	anyOk := false
	for _, key := range a.keys {
		resp, err := a.client.Get(config.JoinURL(a.endpoint.URL, "json/urls", key).String())
		if err != nil {
			a.log.Warn().Err(err).Msgf("failed to get details for config %s", shortKey(key))
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusNoContent {
			a.log.Warn().Msgf("details for config %s returned no content, double check the key is set correctly or that the apprise config is not empty", shortKey(key))
			continue
		}
		anyOk = true
	}
	if !anyOk {
		a.log.Warn().Msg("no apprise configs were valid")
	}
}

type appriseBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
	Tag   string `json:"tag,omitempty"`
	URLs  string `json:"urls,omitempty"`
}

func (a *Apprise) Push(ctx context.Context, al *alert.Alert, n parser.CommonAlert) error {
	body := appriseBody{
		Title: n.TitleAndSubtitle(),
		Body:  n.Message,
		Type:  notifyType(al.Level),
		Tag:   a.tag,
	}

	var failures []error
	attempts := 0

	for _, key := range a.keys {
		attempts++
		target := config.JoinURL(a.endpoint.URL, "notify", key).String()
		if err := postJSON(ctx, a.client, target, body, nil); err != nil {
			err = a.withUpstreamHint(err)
			a.log.Error().Err(err).Msgf("failed to send notification with key %s", shortKey(key))
			failures = append(failures, err)
		}
	}

	if len(a.urls) > 0 || len(a.keys) == 0 {
		attempts++
		stateless := body
		stateless.URLs = strings.Join(a.urls, ",")
		target := config.JoinURL(a.endpoint.URL, "notify").String()
		if err := postJSON(ctx, a.client, target, stateless, nil); err != nil {
			err = a.withUpstreamHint(err)
			a.log.Error().Err(err).Msg("failed to send notification using stateless URLs")
			failures = append(failures, err)
		}
	}

	if attempts > 0 && len(failures) == attempts {
		return &PushError{Backend: a.Name(), cause: errors.Join(failures...)}
	}
	return nil
}

func (a *Apprise) withUpstreamHint(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.Status == http.StatusFailedDependency {
		return fmt.Errorf("%w | %s", err, upstreamFailureHint)
	}
	return err
}

func notifyType(level alert.Level) string {
	switch level {
	case alert.LevelWarning:
		return "warning"
	case alert.LevelCritical:
		return "failure"
	default:
		return "info"
	}
}

func shortKey(key string) string {
	if len(key) > 10 {
		return key[:10] + "..."
	}
	return key
}
