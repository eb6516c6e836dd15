package repository

import (
	"context"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"gorm.io/gorm"
)

type SubmissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByForm returns one page of a form's submissions, newest first, and the
// total matching count.
func (r *SubmissionRepo) FindByForm(ctx context.Context, formID string, offset, limit int, includeSpam bool) ([]models.Submission, int, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{}).Where("form_id = ?", formID)
	if !includeSpam {
		q = q.Where("is_spam = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Submission
	err := q.Order("submitted_at DESC").Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, int(total), nil
}

func (r *SubmissionRepo) FindAllByForm(ctx context.Context, formID string) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).Where("form_id = ?", formID).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateFlags sets the triage flags that are non-nil.
func (r *SubmissionRepo) UpdateFlags(ctx context.Context, id string, isRead, isSpam *bool) error {
	updates := map[string]any{}
	if isRead != nil {
		updates["is_read"] = *isRead
	}
	if isSpam != nil {
		updates["is_spam"] = *isSpam
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(updates).Error
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Submission{}).Error
}
