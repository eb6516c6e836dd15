package aifeatures

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Captcha describes the CAPTCHA settings of a form.
type Captcha struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider,omitempty"`
	SiteKey  string `json:"site_key,omitempty"`
}

// Form is a hosted form.
type Form struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	EndpointURL     string    `json:"endpoint_url"`
	EmailRecipients []string  `json:"email_recipients"`
	RedirectURL     *string   `json:"redirect_url"`
	WebhookURL      *string   `json:"webhook_url"`
	Domains         []string  `json:"domains"`
	Captcha         Captcha   `json:"captcha"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Attachment is a file uploaded with a submission.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	R2Key       string `json:"r2_key"`
	ContentType string `json:"content_type"`
}

// SubmissionMetadata is recorded by the API when a submission arrives.
type SubmissionMetadata struct {
	IPAddress   *string   `json:"ip_address"`
	UserAgent   *string   `json:"user_agent"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submission is one visitor submission of a form.
type Submission struct {
	ID          string             `json:"id"`
	Data        map[string]any     `json:"data"`
	Attachments []Attachment       `json:"attachments"`
	Metadata    SubmissionMetadata `json:"metadata"`
	IsRead      bool               `json:"is_read"`
	IsSpam      bool               `json:"is_spam"`

	keys []string
}

// UnmarshalJSON decodes a submission and remembers the order of its data keys.
func (s *Submission) UnmarshalJSON(b []byte) error {
	type plain Submission
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Submission(p)
	s.keys = objectKeys(raw.Data)
	return nil
}

// Keys returns the data keys in the order the server sent them. Submissions
// built in code report their keys sorted.
func (s Submission) Keys() []string {
	if len(s.keys) == len(s.Data) {
		ok := true
		for _, k := range s.keys {
			if _, found := s.Data[k]; !found {
				ok = false
				break
			}
		}
		if ok {
			return append([]string(nil), s.keys...)
		}
	}
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func objectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
		keys = append(keys, key)
	}
	return keys
}

// SubmissionPage is one page of a form's submissions.
type SubmissionPage struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

type formsListResponse struct {
	Forms []Form `json:"forms"`
}

// CreateFormInput is the body of a form creation.
type CreateFormInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	EmailRecipients []string `json:"email_recipients,omitempty" validate:"omitempty,dive,email"`
	RedirectURL     string   `json:"redirect_url,omitempty" validate:"omitempty,redirect"`
	WebhookURL      string   `json:"webhook_url,omitempty" validate:"omitempty,url"`
	Domains         []string `json:"domains,omitempty" validate:"omitempty,dive,hostname"`
}

// OptionalString is a field that can be left out, set, or explicitly cleared.
type OptionalString struct {
	Value *string
	Set   bool
}

// SetString returns an OptionalString carrying s.
func SetString(s string) OptionalString {
	return OptionalString{Value: &s, Set: true}
}

// ClearString returns an OptionalString that sends null.
func ClearString() OptionalString {
	return OptionalString{Set: true}
}

// UpdateFormInput is a partial form update. Nil slices and unset optionals
// are not sent; a non-nil empty slice clears the list.
type UpdateFormInput struct {
	Name            *string
	EmailRecipients []string
	RedirectURL     OptionalString
	WebhookURL      OptionalString
	Domains         []string
}

// MarshalJSON emits only the fields that were set.
func (in UpdateFormInput) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if in.Name != nil {
		body["name"] = *in.Name
	}
	if in.EmailRecipients != nil {
		body["email_recipients"] = in.EmailRecipients
	}
	if in.RedirectURL.Set {
		body["redirect_url"] = in.RedirectURL.Value
	}
	if in.WebhookURL.Set {
		body["webhook_url"] = in.WebhookURL.Value
	}
	if in.Domains != nil {
		body["domains"] = in.Domains
	}
	return json.Marshal(body)
}

// UnmarshalJSON is the inverse of MarshalJSON: absent keys stay unset and a
// null redirect or webhook URL clears it.
func (in *UpdateFormInput) UnmarshalJSON(b []byte) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	*in = UpdateFormInput{}
	if raw, ok := body["name"]; ok {
		if err := json.Unmarshal(raw, &in.Name); err != nil {
			return err
		}
	}
	if raw, ok := body["email_recipients"]; ok {
		in.EmailRecipients = []string{}
		if err := json.Unmarshal(raw, &in.EmailRecipients); err != nil {
			return err
		}
		if in.EmailRecipients == nil {
			in.EmailRecipients = []string{}
		}
	}
	if raw, ok := body["domains"]; ok {
		in.Domains = []string{}
		if err := json.Unmarshal(raw, &in.Domains); err != nil {
			return err
		}
		if in.Domains == nil {
			in.Domains = []string{}
		}
	}
	for key, opt := range map[string]*OptionalString{"redirect_url": &in.RedirectURL, "webhook_url": &in.WebhookURL} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		opt.Set = true
		if err := json.Unmarshal(raw, &opt.Value); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSubmissionInput changes the triage flags of a submission.
type UpdateSubmissionInput struct {
	IsRead *bool `json:"is_read,omitempty"`
	IsSpam *bool `json:"is_spam,omitempty"`
}

// ListSubmissionsOptions holds optional parameters for GetSubmissions.
type ListSubmissionsOptions struct {
	Limit       *int
	Offset      *int
	IncludeSpam *bool
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
