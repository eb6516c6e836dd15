package repository

import (
	"context"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"gorm.io/gorm"
)

type FormRepo struct {
	db *gorm.DB
}

func NewFormRepo(db *gorm.DB) *FormRepo {
	return &FormRepo{db: db}
}

func (r *FormRepo) Create(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Create(form).Error
}

// FindByID returns the form if it belongs to siteID. An empty siteID matches
// any site.
func (r *FormRepo) FindByID(ctx context.Context, siteID, id string) (*models.Form, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if siteID != "" {
		q = q.Where("site_id = ?", siteID)
	}
	var form models.Form
	err := q.First(&form).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepo) FindBySite(ctx context.Context, siteID string) ([]models.Form, error) {
	var forms []models.Form
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at ASC").
		Find(&forms).Error
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *FormRepo) Save(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Save(form).Error
}

// Delete removes the form and its submissions in one transaction.
func (r *FormRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Form{}).Error
	})
}
