// internal/app/features/trips/routes.go
package trips

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/new", h.ServeNewTrip)
	r.Post("/", h.HandleCreateTrip)
	return r
}
