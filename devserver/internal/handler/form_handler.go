package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/auth"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/sirupsen/logrus"
)

type FormHandler struct {
	svc *service.FormService
	log logrus.FieldLogger
}

func NewFormHandler(svc *service.FormService, log logrus.FieldLogger) *FormHandler {
	return &FormHandler{svc: svc, log: log}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context(), auth.SiteID(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to fetch forms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req aifeatures.CreateFormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	form, err := h.svc.Create(r.Context(), auth.SiteID(r.Context()), req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create form")
		return
	}
	writeJSON(w, http.StatusCreated, form.ToAPI(h.svc.PublicURL()))
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to fetch form")
		return
	}
	writeJSON(w, http.StatusOK, form.ToAPI(h.svc.PublicURL()))
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req aifeatures.UpdateFormInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	form, err := h.svc.Update(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "formId"), req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update form")
		return
	}
	writeJSON(w, http.StatusOK, form.ToAPI(h.svc.PublicURL()))
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "formId")); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete form")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
