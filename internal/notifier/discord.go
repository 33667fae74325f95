package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/parser"
)

// Embed colors per severity level.
const (
	discordColorOk       = 0x58b9ff
	discordColorWarning  = 0xfa8020
	discordColorCritical = 0xfa2020
)

// Discord posts a single embed to a channel webhook. Content is rendered in
// markdown mode upstream.
type Discord struct {
	log        zerolog.Logger
	client     *http.Client
	webhookURL string
}

func NewDiscord(cfg config.DiscordConfig, log zerolog.Logger) (*Discord, error) {
	id, token, err := ParseWebhookURL(cfg.Webhook)
	if err != nil {
		return nil, err
	}
	log.Info().Str("webhook_id", id).Str("webhook_token", Redact(token)).Msg("discord webhook configured")
	return &Discord{
		log:        log.With().Str("component", "discord").Logger(),
		client:     newHTTPClient(),
		webhookURL: cfg.Webhook,
	}, nil
}

// ParseWebhookURL extracts the id and token from a Discord webhook URL
// (.../api/webhooks/{id}/{token}). Catching a malformed URL at startup beats
// a 404 on the first alert.
func ParseWebhookURL(webhook string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(webhook))
	if err != nil {
		return "", "", fmt.Errorf("parsing webhook URL: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", "", fmt.Errorf("could not find id and token in webhook URL, is it properly formed?")
	}
	token = segments[len(segments)-1]
	id = segments[len(segments)-2]
	if id == "" || token == "" {
		return "", "", fmt.Errorf("could not find id and token in webhook URL, is it properly formed?")
	}
	return id, token, nil
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordWebhookBody struct {
	Embeds []discordEmbed `json:"embeds"`
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Push(ctx context.Context, a *alert.Alert, n parser.CommonAlert) error {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Subtitle,
		Color:       embedColor(a.Level),
	}
	if n.Message != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Message", Value: n.Message})
	}
	err := postJSON(ctx, d.client, d.webhookURL, discordWebhookBody{Embeds: []discordEmbed{embed}}, nil)
	if err != nil {
		return &PushError{Backend: d.Name(), cause: err}
	}
	return nil
}

func embedColor(level alert.Level) int {
	switch level {
	case alert.LevelWarning:
		return discordColorWarning
	case alert.LevelCritical:
		return discordColorCritical
	default:
		return discordColorOk
	}
}
