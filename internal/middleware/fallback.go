package middleware

import (
	"net/http"

	"github.com/HammerMeetNail/fittrack/internal/handlers"
)

// headerRecorder keeps the status and headers a handler writes and drops the body.
type headerRecorder struct {
	header http.Header
	status int
}

func (h *headerRecorder) Header() http.Header         { return h.header }
func (h *headerRecorder) Write(b []byte) (int, error) { return len(b), nil }
func (h *headerRecorder) WriteHeader(code int)        { h.status = code }

// JSONFallback answers requests that match no route with an error envelope
// instead of the mux's plain-text 404 and 405 bodies. The Allow header of a 405
// is kept.
func JSONFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &headerRecorder{header: http.Header{}, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		switch rec.status {
		case http.StatusMethodNotAllowed:
			if allow := rec.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			handlers.WriteError(w, http.StatusMethodNotAllowed, handlers.KindMethodNotAllowed, "Method not allowed")
		default:
			handlers.WriteError(w, http.StatusNotFound, handlers.KindNotFound, "Route not found")
		}
	})
}
