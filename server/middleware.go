package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// requestID keeps the caller's X-Request-Id or assigns one, and echoes it.
// The id is stored under chi's key so middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests writes one line per request, tagged with the session
// generation current when the request finished.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log := h.log.With(
			"request_id", middleware.GetReqID(r.Context()),
			"route", routeOf(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Millisecond),
			"generation", h.sess.Generation(),
		)
		switch {
		case status >= http.StatusInternalServerError:
			log.Errorf("%s %s", r.Method, r.URL.Path)
		case status >= http.StatusBadRequest:
			log.Warnf("%s %s", r.Method, r.URL.Path)
		case r.URL.Path == "/healthz":
			log.Debugf("%s %s", r.Method, r.URL.Path)
		default:
			log.Infof("%s %s", r.Method, r.URL.Path)
		}
	})
}

// recoverPanics answers a panicking handler with a 500 envelope
func (h *Handler) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.log.Errorw("Handler panicked",
				"request_id", middleware.GetReqID(r.Context()),
				"route", routeOf(r),
				"panic", rec,
			)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// routeOf prefers the matched chi pattern so ids stay out of log keys
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// bearerToken returns the token from an Authorization header.
// A missing header is not an error; the client falls back to its configured token.
func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", nil
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errors.New("authorization header must be a bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
