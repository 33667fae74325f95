package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/config"
	"github.com/alertbridge/alertbridge/internal/parser"
)

func newApprise(t *testing.T, cfg config.AppriseConfig) *Apprise {
	t.Helper()
	a, err := NewApprise(cfg, testLog)
	require.NoError(t, err)
	return a
}

// drop the GET probes courtesyChecks makes at construction time so the
// push assertions below only see POSTs.
func postsOnly(reqs []capturedRequest) []capturedRequest {
	var out []capturedRequest
	for _, r := range reqs {
		if r.Method == http.MethodPost {
			out = append(out, r)
		}
	}
	return out
}

func TestApprisePushPersistentKeys(t *testing.T) {
	cap, srv := newCaptureServer(t)

	a := newApprise(t, config.AppriseConfig{
		Host:           srv.URL,
		PersistentKeys: []string{"komodo", "infra"},
		Tag:            "alerts",
	})

	c := parser.CommonAlert{Title: "[Warning] ServerDisk", Subtitle: "on MyServer", Message: "Used 40/50GB"}
	require.NoError(t, a.Push(context.Background(), testAlert(t, alert.LevelWarning), c))

	posts := postsOnly(cap.all())
	require.Len(t, posts, 2)
	assert.Equal(t, "/notify/komodo", posts[0].Path)
	assert.Equal(t, "/notify/infra", posts[1].Path)

	var body appriseBody
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, "[Warning] ServerDisk on MyServer", body.Title)
	assert.Equal(t, "Used 40/50GB", body.Body)
	assert.Equal(t, "warning", body.Type)
	assert.Equal(t, "alerts", body.Tag)
	assert.Empty(t, body.URLs)
}

func TestApprisePushStatelessURLs(t *testing.T) {
	cap, srv := newCaptureServer(t)

	a := newApprise(t, config.AppriseConfig{
		Host:          srv.URL,
		StatelessURLs: []string{"ntfys://host/topic", "discord://id/token"},
	})

	require.NoError(t, a.Push(context.Background(), testAlert(t, alert.LevelCritical), parser.CommonAlert{Title: "t"}))

	posts := postsOnly(cap.all())
	require.Len(t, posts, 1)
	assert.Equal(t, "/notify", posts[0].Path)

	var body appriseBody
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, "ntfys://host/topic,discord://id/token", body.URLs)
	assert.Equal(t, "failure", body.Type)
}

func TestApprisePushStatelessWhenNothingConfigured(t *testing.T) {
	cap, srv := newCaptureServer(t)

	a := newApprise(t, config.AppriseConfig{Host: srv.URL})

	require.NoError(t, a.Push(context.Background(), testAlert(t, alert.LevelOk), parser.CommonAlert{Title: "t"}))

	posts := postsOnly(cap.all())
	require.Len(t, posts, 1)
	assert.Equal(t, "/notify", posts[0].Path)
}

func TestApprisePushAllFailuresReturnPushError(t *testing.T) {
	cap, srv := newCaptureServer(t)
	cap.setResponse(http.StatusFailedDependency, `{"error": "upstream said no"}`)

	a := newApprise(t, config.AppriseConfig{
		Host:           srv.URL,
		PersistentKeys: []string{"komodo"},
	})

	err := a.Push(context.Background(), testAlert(t, alert.LevelCritical), parser.CommonAlert{Title: "t"})
	require.Error(t, err)
	var perr *PushError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "apprise", perr.Backend)
	assert.Contains(t, err.Error(), upstreamFailureHint)
}

func TestAppriseNotifyType(t *testing.T) {
	assert.Equal(t, "info", notifyType(alert.LevelOk))
	assert.Equal(t, "warning", notifyType(alert.LevelWarning))
	assert.Equal(t, "failure", notifyType(alert.LevelCritical))
}

func TestShortKey(t *testing.T) {
	assert.Equal(t, "komodo", shortKey("komodo"))
	assert.Equal(t, "abcdefghij...", shortKey("abcdefghijklmnop"))
}
