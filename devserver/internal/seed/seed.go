// Package seed fills an empty dev database with a demo site.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/storage"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
)

const SiteID = "site_demo"

type Seeder struct {
	sites *repository.SiteRepo
	forms *repository.FormRepo
	subs  *repository.SubmissionRepo
	blobs storage.BlobStore
}

func New(sites *repository.SiteRepo, forms *repository.FormRepo, subs *repository.SubmissionRepo, blobs storage.BlobStore) *Seeder {
	return &Seeder{sites: sites, forms: forms, subs: subs, blobs: blobs}
}

type demoSubmission struct {
	id          string
	fields      []service.Field
	attachments []aifeatures.Attachment
	ip, ua      string
	at          string
	read, spam  bool
}

func fields(kv ...string) []service.Field {
	out := make([]service.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, service.Field{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

func file(formID, subID, name string, size int64, contentType string) aifeatures.Attachment {
	return aifeatures.Attachment{
		Name:        name,
		Size:        size,
		R2Key:       formID + "/" + subID + "/" + name,
		ContentType: contentType,
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Run creates the demo site, two forms and five submissions of the first
// form. It reports false when the demo site already exists.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	existing, err := s.sites.FindByID(ctx, SiteID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	site := &models.Site{ID: SiteID, Name: "Example", Domain: "example.com", CreatedAt: mustTime("2024-01-15T10:00:00Z")}
	if err := s.sites.Create(ctx, site); err != nil {
		return false, fmt.Errorf("seed: site: %w", err)
	}

	forms := []*models.Form{
		{
			ID:              "form_1",
			SiteID:          SiteID,
			Name:            "Contact Form",
			EmailRecipients: models.Strings([]string{"hello@example.com"}),
			RedirectURL:     aifeatures.String("/thank-you"),
			Domains:         models.Strings([]string{"example.com", "www.example.com"}),
			CaptchaEnabled:  true,
			CaptchaProvider: "turnstile",
			CaptchaSiteKey:  "1x00000000000000000000AA",
			CreatedAt:       mustTime("2024-01-15T10:30:00Z"),
			UpdatedAt:       mustTime("2024-01-15T10:30:00Z"),
		},
		{
			ID:              "form_2",
			SiteID:          SiteID,
			Name:            "Newsletter Signup",
			EmailRecipients: models.Strings([]string{"marketing@example.com", "newsletter@example.com"}),
			WebhookURL:      aifeatures.String("https://example.com/webhook"),
			Domains:         models.Strings([]string{"example.com"}),
			CreatedAt:       mustTime("2024-02-20T14:00:00Z"),
			UpdatedAt:       mustTime("2024-03-01T09:15:00Z"),
		},
	}
	for _, f := range forms {
		if err := s.forms.Create(ctx, f); err != nil {
			return false, fmt.Errorf("seed: form %s: %w", f.ID, err)
		}
	}

	demo := []demoSubmission{
		{
			id:     "sub_1",
			fields: fields("name", "John Doe", "email", "john@example.com", "message", "Hello! I would like to learn more about your services. Please find my resume attached."),
			attachments: []aifeatures.Attachment{
				file("form_1", "sub_1", "resume.pdf", 156000, "application/pdf"),
				file("form_1", "sub_1", "cover-letter.docx", 24500, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"),
			},
			ip: "192.168.1.1", ua: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", at: "2024-03-10T15:30:00Z",
		},
		{
			id:          "sub_2",
			fields:      fields("name", "Jane Smith", "email", "jane@company.com", "phone", "+1 555-123-4567", "message", "We are interested in partnering with you. Could we schedule a call this week?"),
			attachments: []aifeatures.Attachment{file("form_1", "sub_2", "proposal.pdf", 245000, "application/pdf")},
			ip:          "10.0.0.42", ua: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", at: "2024-03-09T09:15:00Z",
			read: true,
		},
		{
			id:     "sub_3",
			fields: fields("name", "Test User", "email", "test@test.com", "message", "This is a test submission"),
			ip:     "1.2.3.4", ua: "curl/7.64.1", at: "2024-03-08T20:00:00Z",
			read: true, spam: true,
		},
		{
			id:          "sub_4",
			fields:      fields("name", "Alice Johnson", "email", "alice@startup.io", "company", "TechStartup Inc", "message", "Looking for a website builder for our new product launch. What pricing options do you have?"),
			attachments: []aifeatures.Attachment{file("form_1", "sub_4", "mockup.png", 1240000, "image/png")},
			ip:          "203.0.113.50", ua: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", at: "2024-03-07T11:45:00Z",
		},
		{
			id:     "sub_5",
			fields: fields("name", "Bob Williams", "email", "bob.w@enterprise.com", "message", "Need enterprise features - SSO, custom branding, dedicated support."),
			ip:     "198.51.100.25", ua: "Mozilla/5.0 (X11; Linux x86_64)", at: "2024-03-06T16:20:00Z",
			read: true,
		},
	}
	for _, d := range demo {
		if err := s.submission(ctx, d); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Seeder) submission(ctx context.Context, d demoSubmission) error {
	data, err := service.EncodeFields(d.fields)
	if err != nil {
		return fmt.Errorf("seed: %s: %w", d.id, err)
	}
	ip, ua := d.ip, d.ua
	sub := &models.Submission{
		ID:          d.id,
		FormID:      "form_1",
		Data:        data,
		IPAddress:   &ip,
		UserAgent:   &ua,
		IsRead:      d.read,
		IsSpam:      d.spam,
		SubmittedAt: mustTime(d.at),
	}
	sub.SetAttachments(d.attachments)

	for _, a := range d.attachments {
		body := "Mock file content for " + a.Name
		if err := s.blobs.Put(ctx, a.R2Key, strings.NewReader(body), int64(len(body)), a.ContentType); err != nil {
			return fmt.Errorf("seed: %s: %w", a.R2Key, err)
		}
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return fmt.Errorf("seed: %s: %w", d.id, err)
	}
	return nil
}
