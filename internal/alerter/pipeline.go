// Package alerter decides whether and when an inbound alert is forwarded to
// the backend. It applies the resolved-type filter first, then the debounce
// window that suppresses transient fire/clear pairs.
package alerter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/metrics"
	"github.com/alertbridge/alertbridge/internal/options"
)

// PushFunc performs the actual backend push for an approved alert.
type PushFunc func(a *alert.Alert)

// pending is one armed debounce timer. Ownership transfers to whichever
// event (fire, cancel, replace) takes it out of the map first.
type pending struct {
	cancel context.CancelFunc
}

// Pipeline owns the per-identity timer bank. Safe for concurrent Dispatch
// from multiple in-flight requests; the mutex is never held across a push.
type Pipeline struct {
	log   zerolog.Logger
	opts  options.Options
	types map[string]struct{}

	mu     sync.Mutex
	timers map[string]*pending
}

// NewPipeline builds a pipeline from resolved options.
func NewPipeline(opts options.Options, log zerolog.Logger) *Pipeline {
	types := make(map[string]struct{}, len(opts.ResolverTypes))
	for _, t := range opts.ResolverTypes {
		types[t] = struct{}{}
	}
	return &Pipeline{
		log:    log.With().Str("component", "pipeline").Logger(),
		opts:   opts,
		types:  types,
		timers: make(map[string]*pending),
	}
}

// Dispatch runs the filter and debounce decision for a and invokes push on
// the paths that forward. Immediate forwards call push in the caller's
// goroutine; deferred forwards fire from the timer goroutine.
func (p *Pipeline) Dispatch(a *alert.Alert, push PushFunc) {
	if !options.ResolvedAllowed(p.opts.AllowedResolveTypes, a.Resolved) {
		state := "unresolved"
		if a.Resolved {
			state = "resolved"
		}
		p.log.Debug().
			Str("alert", a.Identity()).
			Str("state", state).
			Msgf("not pushing %s because it is %s which is not included in allowed resolved types", a.Friendly(), state)
		metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonFiltered).Inc()
		return
	}

	if p.opts.ResolverTimeout == nil || (len(p.types) > 0 && !p.debounceEligible(a)) {
		p.log.Debug().Str("alert", a.Identity()).Msgf("pushing %s", a.Friendly())
		push(a)
		return
	}

	id := a.Identity()

	if a.Resolved {
		p.mu.Lock()
		if t, ok := p.timers[id]; ok {
			// A clear arriving inside the window means the condition was
			// transient: neither state deserves a notification.
			t.cancel()
			delete(p.timers, id)
			p.mu.Unlock()
			p.log.Debug().Str("alert", id).
				Msgf("not pushing %s because it is resolved and had an unresolved notification waiting to be pushed (now canceled)", a.Friendly())
			metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonTransient).Inc()
			return
		}
		p.mu.Unlock()
		// No pending unresolved: either it already went out or never existed.
		p.log.Debug().Str("alert", id).Msgf("pushing %s", a.Friendly())
		push(a)
		return
	}

	timeout := *p.opts.ResolverTimeout
	ctx, cancel := context.WithCancel(context.Background())
	entry := &pending{cancel: cancel}

	p.mu.Lock()
	if old, ok := p.timers[id]; ok {
		old.cancel()
		p.log.Debug().Str("alert", id).
			Msgf("%s -- replacing previously waiting notification of same type (reset timeout)", a.Friendly())
		metrics.AlertsSuppressed.WithLabelValues(metrics.ReasonReplaced).Inc()
	}
	p.timers[id] = entry
	p.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(timeout):
		}
		// The timeout and a cancellation can race; only the owner still in
		// the map gets to push.
		p.mu.Lock()
		owned := p.timers[id] == entry
		if owned {
			delete(p.timers, id)
		}
		p.mu.Unlock()
		if !owned {
			return
		}
		p.log.Debug().Str("alert", id).Dur("timeout", timeout).
			Msgf("%s -- timeout lapsed, pushing", a.Friendly())
		push(a)
	}()

	p.log.Debug().Str("alert", id).Dur("timeout", timeout).
		Msgf("%s -- set timeout", a.Friendly())
}

// Stop cancels all pending timers. Used on shutdown; in-flight debounce
// windows are intentionally lost.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.timers {
		t.cancel()
		delete(p.timers, id)
	}
}

// PendingCount reports armed timers. Exposed for health reporting.
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

func (p *Pipeline) debounceEligible(a *alert.Alert) bool {
	_, ok := p.types[strings.ToLower(a.Data.Type)]
	return ok
}
