package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
)

// requestLogger logs every request and reports it to the recorder, if any
func requestLogger(recorder RequestRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				duration := time.Since(start)

				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}

				log.WithFields(log.Fields{
					"method":    r.Method,
					"route":     route,
					"status":    status,
					"duration":  duration,
					"requestID": middleware.GetReqID(r.Context()),
					"remote":    r.RemoteAddr,
				}).Info("HTTP request")

				if recorder != nil {
					recorder.RecordHTTPRequest(r.Method, route, status, duration)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
