package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, withLogging, withGZip)

	router.Get("/api/ping", h.ping)
	router.Get("/api/documents/{collection}/{id}", h.readDocument)

	// routes carrying a body are signed when a hash key is configured
	router.Group(func(r chi.Router) {
		r.Use(h.withHashCheck)

		r.Post("/api/documents/{collection}", h.createDocument)
		r.Patch("/api/documents/{collection}/{id}", h.updateDocument)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
