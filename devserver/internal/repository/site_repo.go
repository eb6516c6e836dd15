package repository

import (
	"context"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"gorm.io/gorm"
)

type SiteRepo struct {
	db *gorm.DB
}

func NewSiteRepo(db *gorm.DB) *SiteRepo {
	return &SiteRepo{db: db}
}

func (r *SiteRepo) Create(ctx context.Context, site *models.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *SiteRepo) FindByID(ctx context.Context, id string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).First(&site, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}
