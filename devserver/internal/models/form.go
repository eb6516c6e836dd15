package models

import (
	"encoding/json"
	"time"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"gorm.io/datatypes"
)

// Form is the stored form. List columns are JSON arrays.
type Form struct {
	ID              string         `gorm:"primaryKey"`
	SiteID          string         `gorm:"index"`
	Name            string
	EmailRecipients datatypes.JSON
	RedirectURL     *string
	WebhookURL      *string
	Domains         datatypes.JSON
	CaptchaEnabled  bool
	CaptchaProvider string
	CaptchaSiteKey  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Strings encodes a list column.
func Strings(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return datatypes.JSON(data)
}

func decodeStrings(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// Recipients decodes the recipients column.
func (f *Form) Recipients() []string {
	return decodeStrings(f.EmailRecipients)
}

// DomainList decodes the domains column.
func (f *Form) DomainList() []string {
	return decodeStrings(f.Domains)
}

// ToAPI renders the form as the API returns it. publicURL is the origin the
// widget posts to.
func (f *Form) ToAPI(publicURL string) aifeatures.Form {
	out := aifeatures.Form{
		ID:              f.ID,
		Name:            f.Name,
		EndpointURL:     publicURL + "/f/" + f.ID,
		EmailRecipients: f.Recipients(),
		RedirectURL:     f.RedirectURL,
		WebhookURL:      f.WebhookURL,
		Domains:         f.DomainList(),
		Captcha:         aifeatures.Captcha{Enabled: f.CaptchaEnabled},
		CreatedAt:       f.CreatedAt.UTC(),
		UpdatedAt:       f.UpdatedAt.UTC(),
	}
	if f.CaptchaEnabled {
		out.Captcha.Provider = f.CaptchaProvider
		out.Captcha.SiteKey = f.CaptchaSiteKey
	}
	return out
}

// PublicConfig is served to the embeddable widget.
type PublicConfig struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	EndpointURL      string  `json:"endpoint_url"`
	TurnstileSiteKey *string `json:"turnstile_sitekey"`
}

// ToPublic renders the widget configuration.
func (f *Form) ToPublic(publicURL string) PublicConfig {
	cfg := PublicConfig{ID: f.ID, Name: f.Name, EndpointURL: publicURL + "/f/" + f.ID}
	if f.CaptchaEnabled && f.CaptchaSiteKey != "" {
		key := f.CaptchaSiteKey
		cfg.TurnstileSiteKey = &key
	}
	return cfg
}
