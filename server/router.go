package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the JSON API
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.logRequests)
	r.Use(h.recoverPanics)

	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.generate)
		r.Get("/session", h.getSession)
		r.Get("/events", h.events)
		r.Post("/thumbnails", h.thumbnails)
		r.Get("/videos/{id}", h.video)
		r.Get("/captions", h.listCaptions)
		r.Get("/captions/{id}", h.downloadCaption)
		r.Post("/chat", h.chat)
		r.Get("/chat", h.chatHistory)
		r.Delete("/chat", h.resetChat)
	})
	return r
}
