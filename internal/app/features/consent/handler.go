// internal/app/features/consent/handler.go
package consent

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	profiles "github.com/natpac/tripcollect/internal/app/store/profiles"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/app/system/authz"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConsentWriter persists the participant's consent decision.
type ConsentWriter interface {
	SetConsent(ctx context.Context, userID primitive.ObjectID, consent bool) error
}

type Handler struct {
	Profiles   ConsentWriter
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Profiles:   profiles.New(db),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type consentFormData struct {
	viewdata.BaseVM
	Error string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /consent                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeConsent(w http.ResponseWriter, r *http.Request) {
	if authz.HasConsented(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "consent", consentFormData{
		BaseVM: viewdata.NewBaseVM(r, "Research consent", "/dashboard"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /consent                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleConsentPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/consent")
		return
	}

	// The checkbox must actually be ticked; an unticked box posts nothing.
	if r.FormValue("agree") != "on" {
		templates.Render(w, r, "consent", consentFormData{
			BaseVM: viewdata.NewBaseVM(r, "Research consent", "/dashboard"),
			Error:  "Please tick the box to confirm you agree.",
		})
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// The durable write is best-effort: the session flag is what gates the
	// trip form, and the profile record catches up on a later attempt.
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.SetConsent(ctx, userID, true); err != nil {
		h.Log.Error("consent write failed",
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
	}

	if err := h.SessionMgr.MarkConsented(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "A server error occurred.", "/consent")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
