// internal/app/features/consent/routes.go
package consent

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeConsent)
	r.Post("/", h.HandleConsentPost)
	return r
}
