package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/auth"
	"github.com/landingsite-ai/aifeatures-go/devserver/internal/handler"
	mw "github.com/landingsite-ai/aifeatures-go/devserver/internal/middleware"
	"github.com/sirupsen/logrus"
)

func New(
	jwtSecret string,
	log logrus.FieldLogger,
	siteH *handler.SiteHandler,
	formH *handler.FormHandler,
	subH *handler.SubmissionHandler,
	widgetH *handler.WidgetHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery(log))
	r.Use(mw.Logger(log))
	r.Use(mw.CORS)

	// Widget endpoints, called from embedding sites
	r.Get("/f/{formId}/config", widgetH.Config)
	r.Post("/f/{formId}", widgetH.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		// Organization key
		r.Post("/sites", siteH.Create)

		// Site token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			// Forms
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Get("/forms/{formId}", formH.Get)
			r.Patch("/forms/{formId}", formH.Update)
			r.Delete("/forms/{formId}", formH.Delete)

			// Submissions
			r.Get("/forms/{formId}/submissions", subH.List)
			r.Get("/submissions/{subId}", subH.Get)
			r.Patch("/submissions/{subId}", subH.Update)
			r.Delete("/submissions/{subId}", subH.Delete)
			r.Get("/submissions/{subId}/attachments/{filename}", subH.Attachment)
		})
	})

	return r
}
