package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/auth"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/models"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/repository"
)

type SiteService struct {
	sites      *repository.SiteRepo
	orgKeyHash string
	jwtSecret  string
}

// NewSiteService keeps only a bcrypt hash of the organization key.
func NewSiteService(sites *repository.SiteRepo, orgKey, jwtSecret string) (*SiteService, error) {
	hash, err := auth.HashPassword(orgKey)
	if err != nil {
		return nil, err
	}
	return &SiteService{sites: sites, orgKeyHash: hash, jwtSecret: jwtSecret}, nil
}

type CreateSiteInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	Domain string `json:"domain" validate:"omitempty,hostname"`
}

// Create registers a site for the organization and returns its site token.
func (s *SiteService) Create(ctx context.Context, orgKey string, in CreateSiteInput) (*models.Site, string, error) {
	if !strings.HasPrefix(orgKey, "sk_") || !auth.CheckPassword(s.orgKeyHash, orgKey) {
		return nil, "", ErrInvalidOrgKey
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, "", validationError(err)
	}

	site := &models.Site{
		ID:        newID("site_"),
		Name:      in.Name,
		Domain:    in.Domain,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sites.Create(ctx, site); err != nil {
		return nil, "", err
	}
	token, err := s.Token(site.ID)
	if err != nil {
		return nil, "", err
	}
	return site, token, nil
}

// Token issues a site token for an existing site id.
func (s *SiteService) Token(siteID string) (string, error) {
	return auth.GenerateToken(s.jwtSecret, siteID)
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
