package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/forms"
)

// Messages shown by the settings editor. They are stored as the editor error
// and returned to the caller.
var (
	ErrInvalidEmail    = errors.New("Please enter a valid email address")
	ErrDuplicateEmail  = errors.New("This email is already added")
	ErrInvalidRedirect = errors.New("Please enter a valid URL or path")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("redirect", func(fl validator.FieldLevel) bool {
		return aifeatures.IsRedirectURL(fl.Field().String())
	})
	return v
}

// SettingsState is a snapshot of the editor.
type SettingsState struct {
	Form        aifeatures.Form
	Name        string
	RedirectURL string
	Recipients  []string
	Saving      bool
	LastSaved   time.Time
	Err         error
}

// Settings edits the name, redirect URL and email recipients of a form.
// Every change is saved right away through the forms store.
type Settings struct {
	store   *forms.Store
	onSaved func(aifeatures.Form)

	mu          sync.Mutex
	form        aifeatures.Form
	name        string
	redirectURL string
	recipients  []string
	saving      bool
	lastSaved   time.Time
	err         error
}

// NewSettings creates an editor for form. onSaved may be nil.
func NewSettings(store *forms.Store, form aifeatures.Form, onSaved func(aifeatures.Form)) *Settings {
	s := &Settings{store: store, onSaved: onSaved}
	s.Reset(form)
	return s
}

// Reset discards local edits and starts over from form.
func (s *Settings) Reset(form aifeatures.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	s.name = form.Name
	s.redirectURL = ""
	if form.RedirectURL != nil {
		s.redirectURL = *form.RedirectURL
	}
	s.recipients = append([]string{}, form.EmailRecipients...)
	s.err = nil
}

// State returns a snapshot of the editor.
func (s *Settings) State() SettingsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SettingsState{
		Form:        s.form,
		Name:        s.name,
		RedirectURL: s.redirectURL,
		Recipients:  append([]string{}, s.recipients...),
		Saving:      s.saving,
		LastSaved:   s.lastSaved,
		Err:         s.err,
	}
}

// SetName edits the name locally.
func (s *Settings) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// CommitName saves the name when it differs from the stored form.
func (s *Settings) CommitName(ctx context.Context) error {
	s.mu.Lock()
	name := s.name
	changed := name != s.form.Name
	s.mu.Unlock()
	if !changed {
		return nil
	}
	return s.save(ctx, aifeatures.UpdateFormInput{Name: aifeatures.String(name)})
}

// SetRedirectURL edits the redirect URL locally.
func (s *Settings) SetRedirectURL(u string) {
	s.mu.Lock()
	s.redirectURL = u
	s.mu.Unlock()
}

// CommitRedirectURL saves the redirect URL when it changed. A blank value
// clears it.
func (s *Settings) CommitRedirectURL(ctx context.Context) error {
	s.mu.Lock()
	u := strings.TrimSpace(s.redirectURL)
	current := ""
	if s.form.RedirectURL != nil {
		current = *s.form.RedirectURL
	}
	changed := u != current || (u == "" && s.form.RedirectURL != nil)
	s.mu.Unlock()
	if !changed {
		return nil
	}
	if u == "" {
		return s.save(ctx, aifeatures.UpdateFormInput{RedirectURL: aifeatures.ClearString()})
	}
	if err := validate.Var(u, "redirect"); err != nil {
		return s.fail(ErrInvalidRedirect)
	}
	return s.save(ctx, aifeatures.UpdateFormInput{RedirectURL: aifeatures.SetString(u)})
}

// AddRecipient adds an address and saves the list. Blank input is ignored.
func (s *Settings) AddRecipient(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if !strings.Contains(email, "@") || checkmail.ValidateFormat(email) != nil {
		return s.fail(ErrInvalidEmail)
	}

	s.mu.Lock()
	for _, r := range s.recipients {
		if r == email {
			s.err = ErrDuplicateEmail
			s.mu.Unlock()
			return ErrDuplicateEmail
		}
	}
	s.recipients = append(s.recipients, email)
	s.err = nil
	list := append([]string{}, s.recipients...)
	s.mu.Unlock()

	return s.save(ctx, aifeatures.UpdateFormInput{EmailRecipients: list})
}

// RemoveRecipient drops an address and saves the list.
func (s *Settings) RemoveRecipient(ctx context.Context, email string) error {
	s.mu.Lock()
	kept := make([]string, 0, len(s.recipients))
	for _, r := range s.recipients {
		if r != email {
			kept = append(kept, r)
		}
	}
	s.recipients = kept
	list := append([]string{}, kept...)
	s.mu.Unlock()

	return s.save(ctx, aifeatures.UpdateFormInput{EmailRecipients: list})
}

func (s *Settings) fail(err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return err
}

func (s *Settings) save(ctx context.Context, input aifeatures.UpdateFormInput) error {
	s.mu.Lock()
	s.saving = true
	s.err = nil
	id := s.form.ID
	s.mu.Unlock()

	updated, err := s.store.Update(ctx, id, input)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.form = *updated
	s.lastSaved = time.Now()
	s.mu.Unlock()

	if s.onSaved != nil {
		s.onSaved(*updated)
	}
	return nil
}
