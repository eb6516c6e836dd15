package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to statuses. Unknown errors are
// logged and reported as fallback.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrFormNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrAttachmentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCaptchaRequired),
		errors.Is(err, service.ErrEmptySubmission),
		errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidOrgKey):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.WithError(err).Error(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
