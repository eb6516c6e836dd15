package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/storage"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/landingsite-ai/aifeatures-go/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

type SubmissionService struct {
	subs  *repository.SubmissionRepo
	forms *repository.FormRepo
	blobs storage.BlobStore
	log   logrus.FieldLogger
}

func NewSubmissionService(subs *repository.SubmissionRepo, forms *repository.FormRepo, blobs storage.BlobStore, log logrus.FieldLogger) *SubmissionService {
	return &SubmissionService{subs: subs, forms: forms, blobs: blobs, log: log}
}

// Page is one page of a form's submissions as the API returns it.
type Page struct {
	Submissions []models.SubmissionResponse `json:"submissions"`
	Total       int                         `json:"total"`
	Limit       int                         `json:"limit"`
	Offset      int                         `json:"offset"`
}

func (s *SubmissionService) List(ctx context.Context, siteID, formID string, limit, offset int, includeSpam bool) (*Page, error) {
	form, err := s.forms.FindByID(ctx, siteID, formID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	subs, total, err := s.subs.FindByForm(ctx, formID, offset, limit, includeSpam)
	if err != nil {
		return nil, err
	}
	page := &Page{
		Submissions: make([]models.SubmissionResponse, 0, len(subs)),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}
	for i := range subs {
		page.Submissions = append(page.Submissions, subs[i].ToAPI())
	}
	return page, nil
}

// Get returns a submission whose form belongs to siteID.
func (s *SubmissionService) Get(ctx context.Context, siteID, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	form, err := s.forms.FindByID(ctx, siteID, sub.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *SubmissionService) Update(ctx context.Context, siteID, id string, in aifeatures.UpdateSubmissionInput) (*models.Submission, error) {
	if _, err := s.Get(ctx, siteID, id); err != nil {
		return nil, err
	}
	if err := s.subs.UpdateFlags(ctx, id, in.IsRead, in.IsSpam); err != nil {
		return nil, err
	}
	return s.Get(ctx, siteID, id)
}

func (s *SubmissionService) Delete(ctx context.Context, siteID, id string) error {
	sub, err := s.Get(ctx, siteID, id)
	if err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		return err
	}
	removeBlobs(ctx, s.blobs, s.log, sub)
	return nil
}

// Attachment opens the named attachment of a submission.
func (s *SubmissionService) Attachment(ctx context.Context, siteID, id, filename string) (*aifeatures.Attachment, *storage.Object, error) {
	sub, err := s.Get(ctx, siteID, id)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range sub.AttachmentList() {
		if a.Name != filename {
			continue
		}
		obj, err := s.blobs.Get(ctx, a.R2Key)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		if err != nil {
			return nil, nil, err
		}
		if a.ContentType != "" {
			obj.ContentType = a.ContentType
		}
		return &a, obj, nil
	}
	return nil, nil, ErrAttachmentNotFound
}

// ------------------------------------------------------------------
// Intake
// ------------------------------------------------------------------

// Field is one submitted name/value pair, in request order.
type Field struct {
	Name  string
	Value string
}

// Upload is a file part of a submission.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// IntakeInput is a visitor submission posted by the widget.
type IntakeInput struct {
	FormID       string
	Fields       []Field
	Files        []Upload
	CaptchaToken string
	IPAddress    string
	UserAgent    string
}

// Intake stores a widget submission. Forms with captcha enabled require the
// token; it is not verified against the provider.
func (s *SubmissionService) Intake(ctx context.Context, in IntakeInput) (*models.Submission, error) {
	form, err := s.forms.FindByID(ctx, "", in.FormID)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	if form.CaptchaEnabled && strings.TrimSpace(in.CaptchaToken) == "" {
		return nil, ErrCaptchaRequired
	}
	if len(in.Fields) == 0 && len(in.Files) == 0 {
		return nil, ErrEmptySubmission
	}

	data, err := EncodeFields(in.Fields)
	if err != nil {
		return nil, err
	}
	sub := &models.Submission{
		ID:          newID("sub_"),
		FormID:      form.ID,
		Data:        data,
		IPAddress:   optional(in.IPAddress),
		UserAgent:   optional(in.UserAgent),
		SubmittedAt: time.Now().UTC(),
	}

	attachments := make([]aifeatures.Attachment, 0, len(in.Files))
	taken := map[string]bool{}
	for _, f := range in.Files {
		name := uniqueName(path.Base(f.Filename), taken)
		key := form.ID + "/" + sub.ID + "/" + name
		if err := s.blobs.Put(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), f.ContentType); err != nil {
			sub.SetAttachments(attachments)
			removeBlobs(ctx, s.blobs, s.log, sub)
			return nil, err
		}
		attachments = append(attachments, aifeatures.Attachment{
			Name:        name,
			Size:        int64(len(f.Data)),
			R2Key:       key,
			ContentType: f.ContentType,
		})
	}
	sub.SetAttachments(attachments)

	if err := s.subs.Create(ctx, sub); err != nil {
		removeBlobs(ctx, s.blobs, s.log, sub)
		return nil, err
	}
	logging.LogEvent(s.log, "submission_received", map[string]interface{}{
		"form_id":     form.ID,
		"id":          sub.ID,
		"attachments": len(attachments),
	})
	return sub, nil
}

// EncodeFields encodes fields as a JSON object in request order. A repeated
// name collects its values into an array at the first position.
func EncodeFields(fields []Field) ([]byte, error) {
	var order []string
	values := map[string][]string{}
	for _, f := range fields {
		if _, ok := values[f.Name]; !ok {
			order = append(order, f.Name)
		}
		values[f.Name] = append(values[f.Name], f.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var v any = values[name]
		if len(values[name]) == 1 {
			v = values[name][0]
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func uniqueName(name string, taken map[string]bool) string {
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	out := name
	ext := path.Ext(name)
	for n := 2; taken[out]; n++ {
		out = strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
	}
	taken[out] = true
	return out
}

func removeBlobs(ctx context.Context, blobs storage.BlobStore, log logrus.FieldLogger, sub *models.Submission) {
	for _, a := range sub.AttachmentList() {
		if err := blobs.Delete(ctx, a.R2Key); err != nil {
			log.WithError(err).WithField("key", a.R2Key).Warn("failed to remove attachment")
		}
	}
}
