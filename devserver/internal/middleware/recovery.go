package middleware

import (
	"fmt"
	"net/http"

	"github.com/landingsite-ai/aifeatures-go/internal/logging"
	"github.com/sirupsen/logrus"
)

// Recovery turns a handler panic into a 500 and reports it.
func Recovery(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.ReportError(log, "panic", fmt.Errorf("%v", rec), map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Internal server error"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
