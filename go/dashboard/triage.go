package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/go/submissions"
	"github.com/sirupsen/logrus"
)

// ErrNoSelection is returned by Download when no submission is open.
var ErrNoSelection = errors.New("dashboard: no submission open")

// SubmissionReader loads single submissions and their attachments.
type SubmissionReader interface {
	GetSubmission(ctx context.Context, submissionID string) (*aifeatures.Submission, error)
	DownloadAttachment(ctx context.Context, submissionID, filename string) (*aifeatures.Download, error)
}

// Triage switches between the submissions list and one open submission.
// Opening an unread submission marks it read.
type Triage struct {
	pager     *submissions.Pager
	reader    SubmissionReader
	defaultID string
	log       logrus.FieldLogger

	mu          sync.Mutex
	selected    *aifeatures.Submission
	autoOpened  bool
	downloading string
}

// NewTriage creates a triage flow over p.
func NewTriage(p *submissions.Pager, reader SubmissionReader, defaultID string, log logrus.FieldLogger) *Triage {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Triage{pager: p, reader: reader, defaultID: defaultID, log: log}
}

// Open shows submission id. It is taken from the current page when present
// and fetched otherwise.
func (t *Triage) Open(ctx context.Context, id string) (Detail, error) {
	sub, ok := t.pager.Find(id)
	if !ok {
		fetched, err := t.reader.GetSubmission(ctx, id)
		if err != nil {
			return Detail{}, err
		}
		sub = *fetched
	}

	if !sub.IsRead {
		if err := t.pager.MarkAsRead(ctx, id); err != nil {
			t.log.WithError(err).WithField("submission_id", id).Warn("mark as read failed")
		} else if updated, found := t.pager.Find(id); found {
			sub = updated
		} else {
			sub.IsRead = true
		}
	}

	t.mu.Lock()
	t.selected = &sub
	t.mu.Unlock()
	return NewDetail(sub), nil
}

// OpenDefault opens the default submission the first time the current page
// holds it. It reports whether a submission was opened.
func (t *Triage) OpenDefault(ctx context.Context) (Detail, bool, error) {
	t.mu.Lock()
	if t.defaultID == "" || t.autoOpened {
		t.mu.Unlock()
		return Detail{}, false, nil
	}
	if _, ok := t.pager.Find(t.defaultID); !ok {
		t.mu.Unlock()
		return Detail{}, false, nil
	}
	t.autoOpened = true
	id := t.defaultID
	t.mu.Unlock()

	d, err := t.Open(ctx, id)
	if err != nil {
		return Detail{}, false, err
	}
	return d, true, nil
}

// Back returns to the list.
func (t *Triage) Back() {
	t.mu.Lock()
	t.selected = nil
	t.mu.Unlock()
}

// Selected returns the open submission, or nil on the list.
func (t *Triage) Selected() *aifeatures.Submission {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected == nil {
		return nil
	}
	s := *t.selected
	return &s
}

// Downloading returns the attachment currently being downloaded.
func (t *Triage) Downloading() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.downloading
}

// Download saves an attachment of the open submission into dir and returns
// the written path.
func (t *Triage) Download(ctx context.Context, filename, dir string) (string, error) {
	t.mu.Lock()
	if t.selected == nil {
		t.mu.Unlock()
		return "", ErrNoSelection
	}
	id := t.selected.ID
	t.downloading = filename
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.downloading = ""
		t.mu.Unlock()
	}()

	dl, err := t.reader.DownloadAttachment(ctx, id, filename)
	if err != nil {
		t.log.WithError(err).WithField("filename", filename).Error("download failed")
		return "", err
	}
	path, err := dl.SaveTo(dir)
	if err != nil {
		return "", fmt.Errorf("dashboard: %w", err)
	}
	return path, nil
}
