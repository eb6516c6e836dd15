// Package submissions keeps a paginated view of a form's submissions.
package submissions

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/sirupsen/logrus"
)

// DefaultPageSize is used when Options.PageSize is not set.
const DefaultPageSize = 25

// ErrEmptyPage is recorded when the API answers without a page.
var ErrEmptyPage = errors.New("submissions: empty response")

//go:generate mockgen -source=pager.go -destination=mock/source.go -package=mock

// Source is the part of the API client the pager needs.
type Source interface {
	GetSubmissions(ctx context.Context, formID string, opts *aifeatures.ListSubmissionsOptions) (*aifeatures.SubmissionPage, error)
	UpdateSubmission(ctx context.Context, submissionID string, input aifeatures.UpdateSubmissionInput) (*aifeatures.Submission, error)
	DeleteSubmission(ctx context.Context, submissionID string) error
}

// Options configures a Pager.
type Options struct {
	PageSize    int
	IncludeSpam bool
	// OnChange is called after every state transition, outside the lock.
	OnChange func(State)
	Logger   logrus.FieldLogger
}

// State is a snapshot of the pager.
type State struct {
	FormID          string
	Submissions     []aifeatures.Submission
	Total           int
	Page            int
	PageSize        int
	Loading         bool
	Err             error
	HasNextPage     bool
	HasPreviousPage bool
}

// Pager holds one page of submissions and the triage mutations on it.
// Fetch failures are kept in State.Err and never clear loaded data.
type Pager struct {
	src      Source
	onChange func(State)
	log      logrus.FieldLogger

	mu          sync.Mutex
	formID      string
	includeSpam bool
	page        int
	pageSize    int
	total       int
	subs        []aifeatures.Submission
	loading     bool
	err         error
	seq         uint64
}

// New creates a pager for formID. Nothing is fetched until Refetch or one of
// the setters is called.
func New(src Source, formID string, opts Options) *Pager {
	size := opts.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Pager{
		src:         src,
		onChange:    opts.OnChange,
		log:         log,
		formID:      formID,
		includeSpam: opts.IncludeSpam,
		pageSize:    size,
		loading:     formID != "",
		subs:        []aifeatures.Submission{},
	}
}

// State returns a snapshot safe to keep.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Pager) stateLocked() State {
	subs := make([]aifeatures.Submission, len(p.subs))
	copy(subs, p.subs)
	totalPages := int(math.Ceil(float64(p.total) / float64(p.pageSize)))
	return State{
		FormID:          p.formID,
		Submissions:     subs,
		Total:           p.total,
		Page:            p.page,
		PageSize:        p.pageSize,
		Loading:         p.loading,
		Err:             p.err,
		HasNextPage:     p.page < totalPages-1,
		HasPreviousPage: p.page > 0,
	}
}

func (p *Pager) notify(s State) {
	if p.onChange != nil {
		p.onChange(s)
	}
}

// Find returns the loaded submission with id.
func (p *Pager) Find(id string) (aifeatures.Submission, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subs {
		if s.ID == id {
			return s, true
		}
	}
	return aifeatures.Submission{}, false
}

// ------------------------------------------------------------------
// Fetch triggers
// ------------------------------------------------------------------

// Refetch reloads the current page.
func (p *Pager) Refetch(ctx context.Context) {
	p.fetch(ctx)
}

// SetFormID switches the pager to another form and reloads.
func (p *Pager) SetFormID(ctx context.Context, formID string) {
	p.mu.Lock()
	p.formID = formID
	p.mu.Unlock()
	p.fetch(ctx)
}

// SetPage moves to page (0-based) and reloads that page.
func (p *Pager) SetPage(ctx context.Context, page int) {
	if page < 0 {
		page = 0
	}
	p.mu.Lock()
	p.page = page
	p.mu.Unlock()
	p.fetch(ctx)
}

// SetPageSize changes the page size and always returns to the first page.
func (p *Pager) SetPageSize(ctx context.Context, size int) {
	if size < 1 {
		size = 1
	}
	p.mu.Lock()
	p.pageSize = size
	p.page = 0
	p.mu.Unlock()
	p.fetch(ctx)
}

func (p *Pager) fetch(ctx context.Context) {
	p.mu.Lock()
	if p.formID == "" {
		p.loading = false
		s := p.stateLocked()
		p.mu.Unlock()
		p.notify(s)
		return
	}
	p.seq++
	seq := p.seq
	formID := p.formID
	opts := &aifeatures.ListSubmissionsOptions{
		Limit:  aifeatures.Int(p.pageSize),
		Offset: aifeatures.Int(p.page * p.pageSize),
	}
	if p.includeSpam {
		opts.IncludeSpam = aifeatures.Bool(true)
	}
	p.loading = true
	p.err = nil
	s := p.stateLocked()
	p.mu.Unlock()
	p.notify(s)

	page, err := p.src.GetSubmissions(ctx, formID, opts)

	p.mu.Lock()
	if seq != p.seq {
		// a newer fetch owns the state
		p.mu.Unlock()
		p.log.WithFields(logrus.Fields{"form_id": formID, "seq": seq}).Debug("discarding stale submissions page")
		return
	}
	p.loading = false
	if err != nil {
		p.err = err
		p.log.WithError(err).WithField("form_id", formID).Warn("fetch submissions failed")
	} else if page == nil {
		p.err = ErrEmptyPage
	} else {
		p.subs = page.Submissions
		if p.subs == nil {
			p.subs = []aifeatures.Submission{}
		}
		p.total = page.Total
	}
	s = p.stateLocked()
	p.mu.Unlock()
	p.notify(s)
}

// ------------------------------------------------------------------
// Mutations
// ------------------------------------------------------------------

// MarkAsRead flags a submission as read. A submission already read on the
// current page is left alone.
func (p *Pager) MarkAsRead(ctx context.Context, id string) error {
	if s, ok := p.Find(id); ok && s.IsRead {
		return nil
	}
	return p.update(ctx, id, aifeatures.UpdateSubmissionInput{IsRead: aifeatures.Bool(true)})
}

// MarkAsSpam flags a submission as spam.
func (p *Pager) MarkAsSpam(ctx context.Context, id string) error {
	if s, ok := p.Find(id); ok && s.IsSpam {
		return nil
	}
	return p.update(ctx, id, aifeatures.UpdateSubmissionInput{IsSpam: aifeatures.Bool(true)})
}

func (p *Pager) update(ctx context.Context, id string, input aifeatures.UpdateSubmissionInput) error {
	updated, err := p.src.UpdateSubmission(ctx, id, input)
	if err != nil {
		return err
	}

	p.mu.Lock()
	for i := range p.subs {
		if p.subs[i].ID != id {
			continue
		}
		if updated != nil && updated.ID == id {
			p.subs[i] = *updated
		} else {
			if input.IsRead != nil {
				p.subs[i].IsRead = *input.IsRead
			}
			if input.IsSpam != nil {
				p.subs[i].IsSpam = *input.IsSpam
			}
		}
		break
	}
	s := p.stateLocked()
	p.mu.Unlock()
	p.notify(s)
	return nil
}

// Delete removes a submission on the server, drops it from the page and
// decrements the total.
func (p *Pager) Delete(ctx context.Context, id string) error {
	if err := p.src.DeleteSubmission(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	kept := make([]aifeatures.Submission, 0, len(p.subs))
	for _, s := range p.subs {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	p.subs = kept
	if p.total > 0 {
		p.total--
	}
	s := p.stateLocked()
	p.mu.Unlock()
	p.notify(s)
	return nil
}
