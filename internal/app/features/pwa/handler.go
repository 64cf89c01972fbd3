// internal/app/features/pwa/handler.go
package pwa

import (
	"embed"
	"io"
	"net/http"

	"go.uber.org/zap"
)

//go:embed static/sw.js static/manifest.webmanifest
var staticFS embed.FS

// Handler serves the installable-app plumbing: the service worker and the
// web app manifest.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeServiceWorker serves /sw.js. It must come from the origin root so
// the worker can control every page, hence the Service-Worker-Allowed
// header and the root-level route.
func (h *Handler) ServeServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Service-Worker-Allowed", "/")
	h.serveFile(w, "static/sw.js")
}

// ServeManifest serves /manifest.webmanifest.
func (h *Handler) ServeManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	h.serveFile(w, "static/manifest.webmanifest")
}

func (h *Handler) serveFile(w http.ResponseWriter, name string) {
	f, err := staticFS.Open(name)
	if err != nil {
		h.Log.Error("failed to open embedded file: " + name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	io.Copy(w, f)
}
