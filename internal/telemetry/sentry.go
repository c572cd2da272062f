// Package telemetry reports unexpected server errors to Sentry.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// Init configures Sentry. An empty DSN disables reporting and is not an error.
func Init(dsn, environment, release string) error {
	if dsn == "" {
		enabled = false
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		Tags:             map[string]string{"service": "cinestream-api"},
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Never ship credentials.
			if event.Request != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return err
	}
	enabled = true
	return nil
}

func Enabled() bool { return enabled }

// CaptureError sends err with the given tags. It is a no-op when Sentry is disabled.
func CaptureError(err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}
