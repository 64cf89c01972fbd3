// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/natpac/tripcollect/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler clears the visitor's session.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /logout                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// The deletion cookie still went out in most failure modes; the
		// worst case is the user clicks logout again.
		h.Log.Warn("logout: session save failed", zap.Error(err))
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
