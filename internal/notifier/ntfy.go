package notifier

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/parser"
)

// Ntfy publishes to an ntfy topic via the server's JSON publish endpoint.
type Ntfy struct {
	log        zerolog.Logger
	client     *http.Client
	serverURL  string
	topic      string
	user       string
	password   string
	token      string
	priorities map[alert.Level]int
}

func NewNtfy(cfg config.NtfyConfig, log zerolog.Logger) (*Ntfy, error) {
	endpoint, err := config.NormalizeWebAddress(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", endpoint.Normal).Str("topic", cfg.Topic).Msg("ntfy server configured")
	return &Ntfy{
		log:        log.With().Str("component", "ntfy").Logger(),
		client:     newHTTPClient(),
		serverURL:  endpoint.Normal,
		topic:      cfg.Topic,
		user:       cfg.User,
		password:   cfg.Password,
		token:      cfg.Token,
		priorities: cfg.Priorities,
	}, nil
}

func (n *Ntfy) Name() string { return "ntfy" }

type ntfyMessage struct {
	Topic    string `json:"topic"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

func (n *Ntfy) Push(ctx context.Context, a *alert.Alert, c parser.CommonAlert) error {
	body := c.Message
	if body == "" {
		// ntfy rejects empty message bodies, always send *something*
		body = c.Title
	}
	msg := ntfyMessage{
		Topic:    n.topic,
		Title:    c.TitleAndSubtitle(),
		Message:  body,
		Priority: n.priorities[a.Level],
	}
	err := postJSON(ctx, n.client, n.serverURL, msg, func(req *http.Request) {
		switch {
		case n.user != "" && n.password != "":
			req.SetBasicAuth(n.user, n.password)
		case n.token != "":
			req.Header.Set("Authorization", "Bearer "+n.token)
		}
	})
	if err != nil {
		n.log.Debug().
			Str("url", n.serverURL).
			Str("auth", n.redactedAuth()).
			Interface("payload", msg).
			Msg("ntfy payload")
		return &PushError{Backend: n.Name(), cause: err}
	}
	return nil
}

func (n *Ntfy) redactedAuth() string {
	switch {
	case n.user != "" && n.password != "":
		return Redact(n.user) + ":" + Redact(n.password)
	case n.token != "":
		return "Bearer " + Redact(n.token)
	default:
		return "none"
	}
}
