// Package forms keeps the list of a site's forms.
//
// Mutations trust the server response and splice it into the local list
// without refetching, so changes made elsewhere (another admin session)
// only show up after Refetch.
package forms

import (
	"context"
	"io"
	"sync"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=store.go -destination=mock/api.go -package=mock

// API is the part of the API client the store needs.
type API interface {
	GetForms(ctx context.Context) ([]aifeatures.Form, error)
	CreateForm(ctx context.Context, input aifeatures.CreateFormInput) (*aifeatures.Form, error)
	UpdateForm(ctx context.Context, formID string, input aifeatures.UpdateFormInput) (*aifeatures.Form, error)
	DeleteForm(ctx context.Context, formID string) error
}

// State is a snapshot of the store.
type State struct {
	Forms   []aifeatures.Form
	Loading bool
	Err     error
}

// Store is the in-memory forms list. Safe for concurrent use.
type Store struct {
	api      API
	log      logrus.FieldLogger
	onChange func(State)

	mu      sync.Mutex
	forms   []aifeatures.Form
	loading bool
	err     error
	seq     uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithOnChange registers a callback run after every state change.
func WithOnChange(fn func(State)) Option {
	return func(s *Store) { s.onChange = fn }
}

// New creates a store. It reports Loading until the first Load completes.
func New(api API, opts ...Option) *Store {
	l := logrus.New()
	l.Out = io.Discard
	s := &Store{
		api:     api,
		log:     l,
		forms:   []aifeatures.Form{},
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot safe to keep.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	forms := make([]aifeatures.Form, len(s.forms))
	copy(forms, s.forms)
	return State{Forms: forms, Loading: s.loading, Err: s.err}
}

func (s *Store) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// Find returns the form with id from the local list.
func (s *Store) Find(id string) (aifeatures.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.forms {
		if f.ID == id {
			return f, true
		}
	}
	return aifeatures.Form{}, false
}

// Load fetches the complete list. Failures are kept in State.Err.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.err = nil
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)

	forms, err := s.api.GetForms(ctx)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.log.WithError(err).Warn("fetch forms failed")
	} else {
		if forms == nil {
			forms = []aifeatures.Form{}
		}
		s.forms = forms
	}
	st = s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

// Refetch is Load under the name callers use after a mutation elsewhere.
func (s *Store) Refetch(ctx context.Context) {
	s.Load(ctx)
}

// Create creates a form and appends it.
func (s *Store) Create(ctx context.Context, input aifeatures.CreateFormInput) (*aifeatures.Form, error) {
	form, err := s.api.CreateForm(ctx, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.forms = append(s.forms, *form)
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return form, nil
}

// Update applies a partial update and replaces the matching entry with the
// server's copy.
func (s *Store) Update(ctx context.Context, formID string, input aifeatures.UpdateFormInput) (*aifeatures.Form, error) {
	form, err := s.api.UpdateForm(ctx, formID, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.forms {
		if s.forms[i].ID == formID {
			s.forms[i] = *form
		}
	}
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return form, nil
}

// Delete deletes a form and filters it out.
func (s *Store) Delete(ctx context.Context, formID string) error {
	if err := s.api.DeleteForm(ctx, formID); err != nil {
		return err
	}
	s.mu.Lock()
	kept := make([]aifeatures.Form, 0, len(s.forms))
	for _, f := range s.forms {
		if f.ID != formID {
			kept = append(kept, f)
		}
	}
	s.forms = kept
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return nil
}
