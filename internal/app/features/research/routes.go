// internal/app/features/research/routes.go
package research

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeResearch)
	r.Get("/export.csv", h.ServeExportCSV)
	return r
}
