// Package notifier holds the outbound clients for each notification
// backend. Push failures are reported, never retried: the caller logs and
// moves on, since the webhook sender has already been answered.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/parser"
)

// Notifier pushes one normalized alert to a concrete backend.
type Notifier interface {
	Name() string
	Push(ctx context.Context, a *alert.Alert, n parser.CommonAlert) error
}

// PushError wraps a backend rejection or transport failure.
type PushError struct {
	Backend string
	cause   error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("error occurred while trying to push to %s: %v", e.Backend, e.cause)
}

func (e *PushError) Unwrap() error { return e.cause }

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}

// Redact keeps only the last three characters of a secret for log output.
func Redact(secret string) string {
	if len(secret) <= 3 {
		return "XXX"
	}
	return "XXX..." + secret[len(secret)-3:]
}

// postJSON sends body as JSON and fails on any non-2xx status, including an
// excerpt of the response body in the error.
func postJSON(ctx context.Context, client *http.Client, url string, body any, decorate func(*http.Request)) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Status: resp.StatusCode, Body: string(excerpt)}
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("response NOT OK, status %d", e.Status)
	}
	if msg := apiErrorMessage(e.Body); msg != "" {
		return fmt.Sprintf("response NOT OK, status %d, api response error: %s", e.Status, msg)
	}
	return fmt.Sprintf("response NOT OK, status %d, api response body: %s", e.Status, e.Body)
}

func apiErrorMessage(body string) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ""
	}
	return parsed.Error
}
