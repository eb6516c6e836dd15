// Package logging builds the process logger and reports errors to Sentry.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/landingsite-ai/aifeatures-go/internal/gelf"
	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Service   string
	Level     string
	Format    string
	GelfAddr  string
	SentryDSN string
}

// New returns a logger writing to stderr, plus GELF when GelfAddr is set.
// Sentry is initialized when SentryDSN is set. The returned func flushes and
// releases both and must be called before exit.
func New(opts Options) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.Out = os.Stderr

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if opts.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var closers []func()
	if opts.GelfAddr != "" {
		hook, err := gelf.New(opts.GelfAddr, opts.Service)
		if err != nil {
			log.WithError(err).Warn("GELF init failed")
		} else {
			log.AddHook(hook)
			closers = append(closers, func() { hook.Close() })
			log.WithField("addr", opts.GelfAddr).Debug("GELF logging enabled")
		}
	}
	if opts.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: opts.SentryDSN, ServerName: opts.Service}); err != nil {
			return nil, nil, fmt.Errorf("logging: sentry init: %w", err)
		}
		closers = append(closers, func() { sentry.Flush(2 * time.Second) })
	}

	return log, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// ReportError logs err with its context and sends it to Sentry.
func ReportError(log logrus.FieldLogger, errorType string, err error, context map[string]interface{}) {
	entry := log.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})
	for k, v := range context {
		entry = entry.WithField(k, v)
	}
	entry.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs an event and records it as a Sentry breadcrumb.
func LogEvent(log logrus.FieldLogger, eventType string, data map[string]interface{}) {
	entry := log.WithField("event_type", eventType)
	for k, v := range data {
		entry = entry.WithField(k, v)
	}
	entry.Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
