// internal/app/features/pwa/routes.go
package pwa

import "github.com/go-chi/chi/v5"

// Routes are mounted at the router root, not under a prefix: the service
// worker's scope is derived from its URL path.
func Routes(r chi.Router, h *Handler) {
	r.Get("/sw.js", h.ServeServiceWorker)
	r.Get("/manifest.webmanifest", h.ServeManifest)
}
