// Command aifeatures manages hosted forms and their submissions from the
// terminal.
//
// Usage:
//
//	aifeatures forms
//	aifeatures form <formId>
//	aifeatures submissions <formId> [-page N] [-page-size N] [-include-spam]
//	aifeatures show <formId> <submissionId>
//	aifeatures spam <formId> <submissionId>
//	aifeatures delete <formId> <submissionId>
//	aifeatures download <submissionId> <filename> [-dir DIR]
//	aifeatures settings <formId> [-name S] [-redirect URL] [-add-recipient E]... [-remove-recipient E]...
//	aifeatures submit <formId> -field k=v... [-file k=path]... [-captcha-token T]
//
// The site token and API URL come from AIFEATURES_SITE_TOKEN and
// AIFEATURES_API_URL, optionally read from a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/dashboard"
	"github.com/landingsite-ai/aifeatures-go/go/widget"
	"github.com/landingsite-ai/aifeatures-go/internal/config"
	"github.com/landingsite-ai/aifeatures-go/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log, closeLog, err := logging.New(logging.Options{
		Service:   "aifeatures-cli",
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		GelfAddr:  cfg.GelfAddr,
		SentryDSN: cfg.SentryDSN,
	})
	if err != nil {
		logrus.Fatalf("Failed to init logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, log, os.Args[1:], os.Stdout)
	stop()

	code := 0
	if err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, usage.Error())
			code = 2
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", dashboard.ErrorMessage(err))
			if unexpected(err) {
				logging.ReportError(log, "cli", err, map[string]interface{}{"args": os.Args[1:]})
			}
			code = 1
		}
	}
	closeLog()
	os.Exit(code)
}

// unexpected reports whether err is worth sending to Sentry. API answers and
// configuration mistakes are the user's to fix.
func unexpected(err error) bool {
	var apiErr *aifeatures.APIError
	var cfgErr *aifeatures.ConfigError
	var verr widget.ValidationError
	var serr *widget.SubmitError
	var lerr *widget.LoadError
	if errors.Is(err, dashboard.ErrInvalidEmail) || errors.Is(err, dashboard.ErrDuplicateEmail) || errors.Is(err, dashboard.ErrInvalidRedirect) {
		return false
	}
	return !errors.As(err, &apiErr) && !errors.As(err, &cfgErr) && !errors.As(err, &verr) &&
		!errors.As(err, &serr) && !errors.As(err, &lerr)
}
