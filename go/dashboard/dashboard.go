// Package dashboard assembles the admin views over the API client: the forms
// list, a submissions pager per form, the submission triage flow and the
// form settings editor.
package dashboard

import (
	"io"
	"net/http"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/forms"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
	"github.com/sirupsen/logrus"
)

// Options configures a Dashboard.
type Options struct {
	SiteToken  string
	APIURL     string
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Dashboard holds the client and the shared forms store.
type Dashboard struct {
	client *aifeatures.Client
	forms  *forms.Store
	log    logrus.FieldLogger
}

// New validates the site token and builds the dashboard. An invalid token
// yields a *aifeatures.ConfigError and nothing else is constructed.
func New(opts Options) (*Dashboard, error) {
	if err := aifeatures.ValidateSiteToken(opts.SiteToken); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	client := aifeatures.NewClient(opts.SiteToken,
		aifeatures.WithBaseURL(opts.APIURL),
		aifeatures.WithHTTPClient(opts.HTTPClient),
	)
	return &Dashboard{
		client: client,
		forms:  forms.New(client, forms.WithLogger(log.WithField("component", "forms"))),
		log:    log,
	}, nil
}

// Client returns the API client.
func (d *Dashboard) Client() *aifeatures.Client {
	return d.client
}

// Forms returns the forms store shared by every view of this dashboard.
func (d *Dashboard) Forms() *forms.Store {
	return d.forms
}

// Submissions returns a new pager for formID.
func (d *Dashboard) Submissions(formID string, opts submissions.Options) *submissions.Pager {
	if opts.Logger == nil {
		opts.Logger = d.log.WithField("component", "submissions")
	}
	return submissions.New(d.client, formID, opts)
}

// Triage returns the list/detail flow over p. defaultID, when set, is opened
// by OpenDefault once the pager holds it.
func (d *Dashboard) Triage(p *submissions.Pager, defaultID string) *Triage {
	return NewTriage(p, d.client, defaultID, d.log)
}

// Settings returns an editor for form. onSaved may be nil.
func (d *Dashboard) Settings(form aifeatures.Form, onSaved func(aifeatures.Form)) *Settings {
	return NewSettings(d.forms, form, onSaved)
}
