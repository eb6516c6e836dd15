package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/service"
	"github.com/landingsite-ai/aifeatures-go/go/widget"
	"github.com/sirupsen/logrus"
)

// WidgetHandler serves the unauthenticated endpoints the embeddable form uses.
type WidgetHandler struct {
	forms     *service.FormService
	subs      *service.SubmissionService
	maxUpload int64
	log       logrus.FieldLogger
}

func NewWidgetHandler(forms *service.FormService, subs *service.SubmissionService, maxUploadMB int, log logrus.FieldLogger) *WidgetHandler {
	return &WidgetHandler{forms: forms, subs: subs, maxUpload: int64(maxUploadMB) << 20, log: log}
}

func (h *WidgetHandler) Config(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.Get(r.Context(), "", chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load form")
		return
	}
	writeJSON(w, http.StatusOK, form.ToPublic(h.forms.PublicURL()))
}

func (h *WidgetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	in, err := h.readSubmission(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Submission too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	in.FormID = chi.URLParam(r, "formId")
	in.IPAddress = clientIP(r)
	in.UserAgent = r.UserAgent()

	sub, err := h.subs.Intake(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err, "Submission failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": sub.ID})
}

// readSubmission walks the multipart body part by part so the field order
// of the request is kept.
func (h *WidgetHandler) readSubmission(r *http.Request) (service.IntakeInput, error) {
	var in service.IntakeInput
	mr, err := r.MultipartReader()
	if err != nil {
		return in, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return in, nil
		}
		if err != nil {
			return in, err
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return in, err
		}

		name := part.FormName()
		switch {
		case name == "":
			continue
		case part.FileName() != "":
			in.Files = append(in.Files, service.Upload{
				Field:       name,
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			})
		case name == widget.CaptchaField:
			in.CaptchaToken = string(data)
		default:
			in.Fields = append(in.Fields, service.Field{Name: name, Value: string(data)})
		}
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
