package service

import (
	"context"
	"strings"
	"time"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/storage"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/sirupsen/logrus"
)

type FormService struct {
	forms     *repository.FormRepo
	subs      *repository.SubmissionRepo
	blobs     storage.BlobStore
	publicURL string
	log       logrus.FieldLogger
}

func NewFormService(forms *repository.FormRepo, subs *repository.SubmissionRepo, blobs storage.BlobStore, publicURL string, log logrus.FieldLogger) *FormService {
	return &FormService{
		forms:     forms,
		subs:      subs,
		blobs:     blobs,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

func (s *FormService) PublicURL() string {
	return s.publicURL
}

func (s *FormService) List(ctx context.Context, siteID string) ([]aifeatures.Form, error) {
	forms, err := s.forms.FindBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	out := make([]aifeatures.Form, 0, len(forms))
	for i := range forms {
		out = append(out, forms[i].ToAPI(s.publicURL))
	}
	return out, nil
}

// Get returns a form of siteID. An empty siteID looks the form up on any site.
func (s *FormService) Get(ctx context.Context, siteID, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, siteID, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	return form, nil
}

func (s *FormService) Create(ctx context.Context, siteID string, in aifeatures.CreateFormInput) (*models.Form, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.EmailRecipients = normalizeEmails(in.EmailRecipients)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	now := time.Now().UTC()
	form := &models.Form{
		ID:              newID("form_"),
		SiteID:          siteID,
		Name:            in.Name,
		EmailRecipients: models.Strings(in.EmailRecipients),
		RedirectURL:     optional(in.RedirectURL),
		WebhookURL:      optional(in.WebhookURL),
		Domains:         models.Strings(in.Domains),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.forms.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Update applies a partial update. Keys absent from the request are left
// alone; null clears the redirect and webhook URLs.
func (s *FormService) Update(ctx context.Context, siteID, id string, in aifeatures.UpdateFormInput) (*models.Form, error) {
	form, err := s.Get(ctx, siteID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validate.Var(name, "required,max=200"); err != nil {
			return nil, &ValidationError{Fields: []string{"name"}}
		}
		form.Name = name
	}
	if in.EmailRecipients != nil {
		list := normalizeEmails(in.EmailRecipients)
		if err := validate.Var(list, "dive,email"); err != nil {
			return nil, &ValidationError{Fields: []string{"email_recipients"}}
		}
		form.EmailRecipients = models.Strings(list)
	}
	if in.RedirectURL.Set {
		if in.RedirectURL.Value != nil {
			if err := validate.Var(*in.RedirectURL.Value, "redirect"); err != nil {
				return nil, &ValidationError{Fields: []string{"redirect_url"}}
			}
		}
		form.RedirectURL = in.RedirectURL.Value
	}
	if in.WebhookURL.Set {
		if in.WebhookURL.Value != nil {
			if err := validate.Var(*in.WebhookURL.Value, "url"); err != nil {
				return nil, &ValidationError{Fields: []string{"webhook_url"}}
			}
		}
		form.WebhookURL = in.WebhookURL.Value
	}
	if in.Domains != nil {
		if err := validate.Var(in.Domains, "dive,hostname"); err != nil {
			return nil, &ValidationError{Fields: []string{"domains"}}
		}
		form.Domains = models.Strings(in.Domains)
	}
	form.UpdatedAt = time.Now().UTC()

	if err := s.forms.Save(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes the form, its submissions and their attachments.
func (s *FormService) Delete(ctx context.Context, siteID, id string) error {
	if _, err := s.Get(ctx, siteID, id); err != nil {
		return err
	}
	subs, err := s.subs.FindAllByForm(ctx, id)
	if err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return err
	}
	for i := range subs {
		removeBlobs(ctx, s.blobs, s.log, &subs[i])
	}
	return nil
}

func normalizeEmails(list []string) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
