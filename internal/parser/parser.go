// Package parser normalizes a platform alert into the common
// title/subtitle/message triple every backend pushes from.
package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alertbridge/alertbridge/internal/alert"
	"github.com/alertbridge/alertbridge/internal/format"
)

// CommonAlert is the normalized notification shape. Subtitle and Message may
// be empty. Built fresh per inbound alert, never persisted.
type CommonAlert struct {
	Title    string
	Subtitle string
	Message  string
}

// TitleAndSubtitle joins the two header fields the way single-title backends
// (gotify, ntfy, apprise) present them.
func (c CommonAlert) TitleAndSubtitle() string {
	if c.Subtitle != "" {
		return c.Title + " " + c.Subtitle
	}
	return c.Title
}

// Options controls rendering. Nil booleans take the notifier default
// (LevelInTitle on, ResolvedIndicator off).
type Options struct {
	LevelInTitle      *bool
	ResolvedIndicator *bool
	Markdown          bool
}

// ParseError wraps whatever went wrong while interpreting the data payload.
// The caller recovers: logs the raw payload and still answers the webhook.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error occurred while trying to parse alert data: %v", e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

const nonePlaceholder = "(None)"

// Parse renders alert a into a CommonAlert. A three-line summary is logged
// unconditionally, with best-effort partial values on the error path.
func Parse(a *alert.Alert, opts Options, log zerolog.Logger) (CommonAlert, error) {
	levelInTitle := true
	if opts.LevelInTitle != nil {
		levelInTitle = *opts.LevelInTitle
	}
	resolvedIndicator := false
	if opts.ResolvedIndicator != nil {
		resolvedIndicator = *opts.ResolvedIndicator
	}

	mode := format.Plain
	if opts.Markdown {
		mode = format.Markdown
	}

	var title, subtitle []string
	var message []string

	defer func() {
		log.Info().
			Str("title", strings.Join(title, " ")).
			Str("subtitle", joinOr(subtitle, nonePlaceholder)).
			Str("message", joinOr(message, nonePlaceholder)).
			Msg("alert summary")
	}()

	if levelInTitle {
		title = append(title, fmt.Sprintf("[%s]", a.Level))
	}
	dataType := a.Data.Type
	if dataType == "" {
		dataType = alert.TypeNone
	}
	title = append(title, dataType)
	if resolvedIndicator && a.Resolved {
		title = append(title, "✅")
	}

	if name, ok := a.Data.StringAttr("name"); ok {
		subtitle = append(subtitle, fmt.Sprintf("for %s", name))
	}
	if serverName, ok := a.Data.StringAttr("server_name"); ok {
		subtitle = append(subtitle, fmt.Sprintf("on %s", serverName))
	}

	var err error
	message, err = renderMessage(a.Data.Payload)
	if err != nil {
		return CommonAlert{}, &ParseError{cause: err}
	}

	sub := strings.Join(subtitle, " ")
	if sub != "" {
		sub = mode.Bold(sub)
	}
	return CommonAlert{
		Title:    strings.Join(title, " "),
		Subtitle: sub,
		Message:  strings.Join(message, " "),
	}, nil
}

// renderMessage is the single exhaustive dispatch over the closed payload
// set. Adding a variant without a case here is a compile-visible hole, not a
// silent fallthrough.
func renderMessage(p alert.Payload) ([]string, error) {
	var message []string
	switch v := p.(type) {
	case nil:
		// alert carried no data object at all
	case alert.ServerCpu:
		if v.Percentage == nil {
			return nil, missingField(alert.TypeServerCpu, "percentage")
		}
		message = append(message, fmt.Sprintf("Hit %s%%", format.Number(*v.Percentage, 0)))
	case alert.ServerMem:
		if v.UsedGB == nil || v.TotalGB == nil {
			return nil, missingField(alert.TypeServerMem, "used_gb/total_gb")
		}
		message = append(message, fmt.Sprintf("Used %s/%sGB",
			format.Number(*v.UsedGB, 2), format.Number(*v.TotalGB, 2)))
	case alert.ServerDisk:
		if v.UsedGB == nil || v.TotalGB == nil {
			return nil, missingField(alert.TypeServerDisk, "used_gb/total_gb")
		}
		message = append(message, fmt.Sprintf("Disk at %s used %s/%sGB",
			v.Path, format.Number(*v.UsedGB, 2), format.Number(*v.TotalGB, 2)))
	case alert.StackImageUpdateAvailable:
		message = append(message, fmt.Sprintf("Service %s | Image %s", v.Service, v.Image))
	case alert.DeploymentImageUpdateAvailable:
		message = append(message, fmt.Sprintf("Image %s", v.Image))
	case alert.AwsBuilderTerminationFailed:
		message = append(message, fmt.Sprintf("Instance %s | Reason: %s", v.InstanceID, v.Message))
	case alert.None:
	case alert.Generic:
		if v.Err != nil {
			message = append(message, fmt.Sprintf("Err: %s", v.Err.Error))
		}
		if v.From != nil {
			message = append(message, fmt.Sprintf("From %s", *v.From))
		}
		if v.To != nil {
			message = append(message, fmt.Sprintf("To %s", *v.To))
		}
		if v.Version != nil {
			message = append(message, fmt.Sprintf("Version %d.%d.%d",
				v.Version.Major, v.Version.Minor, v.Version.Patch))
		}
	default:
		return nil, fmt.Errorf("unhandled payload variant %T", p)
	}
	return message, nil
}

func missingField(alertType, field string) error {
	return fmt.Errorf("%s alert is missing required field %s", alertType, field)
}

func joinOr(parts []string, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " ")
}
