package handler

import (
	"net/http"
	"strings"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/sirupsen/logrus"
)

type SiteHandler struct {
	svc *service.SiteService
	log logrus.FieldLogger
}

func NewSiteHandler(svc *service.SiteService, log logrus.FieldLogger) *SiteHandler {
	return &SiteHandler{svc: svc, log: log}
}

// Create exchanges the organization key for a new site and its token.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgKey := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	var req service.CreateSiteInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	site, token, err := h.svc.Create(r.Context(), orgKey, req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create site")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"site":       site,
		"site_token": token,
	})
}
