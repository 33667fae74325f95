package notifier

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/parser"
)

// Gotify pushes to a gotify server's application message endpoint.
type Gotify struct {
	log        zerolog.Logger
	client     *http.Client
	messageURL string
	token      string
	priorities map[alert.Level]int
}

func NewGotify(cfg config.GotifyConfig, log zerolog.Logger) (*Gotify, error) {
	endpoint, err := config.NormalizeWebAddress(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", endpoint.Normal).Msg("gotify server configured")
	return &Gotify{
		log:        log.With().Str("component", "gotify").Logger(),
		client:     newHTTPClient(),
		messageURL: config.JoinURL(endpoint.URL, "message").String(),
		token:      cfg.AppToken,
		priorities: cfg.Priorities,
	}, nil
}

func (g *Gotify) Name() string { return "gotify" }

type gotifyMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

func (g *Gotify) Push(ctx context.Context, a *alert.Alert, n parser.CommonAlert) error {
	msg := gotifyMessage{
		Title:    n.TitleAndSubtitle(),
		Message:  n.Message,
		Priority: g.priorities[a.Level],
	}
	err := postJSON(ctx, g.client, g.messageURL, msg, func(req *http.Request) {
		req.Header.Set("X-Gotify-Key", g.token)
	})
	if err != nil {
		g.log.Debug().
			Str("url", g.messageURL).
			Str("app", Redact(g.token)).
			Interface("payload", msg).
			Msg("gotify payload")
		return &PushError{Backend: g.Name(), cause: err}
	}
	return nil
}
