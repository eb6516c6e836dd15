package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/auth"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
	"github.com/sirupsen/logrus"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
	log logrus.FieldLogger
}

func NewSubmissionHandler(svc *service.SubmissionService, log logrus.FieldLogger) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, log: log}
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	includeSpam, _ := strconv.ParseBool(q.Get("include_spam"))

	page, err := h.svc.List(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "formId"), limit, offset, includeSpam)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to fetch submissions")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "subId"))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to fetch submission")
		return
	}
	writeJSON(w, http.StatusOK, sub.ToAPI())
}

func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req aifeatures.UpdateSubmissionInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sub, err := h.svc.Update(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "subId"), req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update submission")
		return
	}
	writeJSON(w, http.StatusOK, sub.ToAPI())
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "subId")); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete submission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubmissionHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	filename, err := pathParam(r, "filename")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}
	att, obj, err := h.svc.Attachment(r.Context(), auth.SiteID(r.Context()), chi.URLParam(r, "subId"), filename)
	if err != nil {
		writeServiceError(w, h.log, err, "Download failed")
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Name))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.log.WithError(err).WithField("key", att.R2Key).Warn("attachment stream interrupted")
	}
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when the
// request carries one, leaving escapes such as %2C in the value.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
