package notifier

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertbridge/alertbridge/internal/alert"
)

var testLog = zerolog.Nop()

// capture records every request a backend test server receives.
type capture struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func newCaptureServer(t *testing.T) (*capture, *httptest.Server) {
	t.Helper()
	c := &capture{status: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.requests = append(c.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		status := c.status
		respBody := c.body
		c.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return c, srv
}

func (c *capture) setResponse(status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.body = body
}

func (c *capture) all() []capturedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedRequest(nil), c.requests...)
}

func (c *capture) lastJSON(t *testing.T, out any) capturedRequest {
	t.Helper()
	reqs := c.all()
	require.NotEmpty(t, reqs)
	last := reqs[len(reqs)-1]
	require.NoError(t, json.Unmarshal(last.Body, out))
	return last
}

func testAlert(t *testing.T, level alert.Level) *alert.Alert {
	t.Helper()
	var a alert.Alert
	raw := `{
		"level": "` + string(level) + `",
		"resolved": false,
		"target": {"type": "Server", "id": "MyServer"},
		"data": {"type": "ServerCpu", "data": {"percentage": 90, "name": "MyInstance"}}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	return &a
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "XXX...ken", Redact("my-secret-token"))
	assert.Equal(t, "XXX", Redact("ab"))
	assert.Equal(t, "XXX", Redact(""))
}

func TestStatusErrorPrefersAPIErrorField(t *testing.T) {
	e := &statusError{Status: 400, Body: `{"error": "bad topic"}`}
	assert.Contains(t, e.Error(), "bad topic")

	e = &statusError{Status: 500, Body: "not json"}
	assert.Contains(t, e.Error(), "not json")

	e = &statusError{Status: 503}
	assert.Contains(t, e.Error(), "503")
}
