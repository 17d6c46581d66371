package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// SetupSentry enables error reporting when a DSN is configured; without one
// every capture call is a no-op. The returned flush drains buffered events
// and is safe to call either way.
func SetupSentry(dsn, environment string) (func(), error) {
	flush := func() { sentry.Flush(sentryFlushTimeout) }
	if dsn == "" {
		return flush, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
	return flush, err
}
