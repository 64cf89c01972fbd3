// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	profiles "github.com/natpac/tripcollect/internal/app/store/profiles"
	userstore "github.com/natpac/tripcollect/internal/app/store/users"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/app/system/authutil"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserFinder is the slice of the user store the login flow needs.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ConsentReader resolves the stored consent flag at sign-in.
type ConsentReader interface {
	HasConsented(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type Handler struct {
	Users      UserFinder
	Profiles   ConsentReader
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger

	RequireConfirm bool // reject unconfirmed password accounts
	GoogleEnabled  bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	requireConfirm, googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:          userstore.New(db),
		Profiles:       profiles.New(db),
		Log:            logger,
		SessionMgr:     sessionMgr,
		ErrLog:         errLog,
		RequireConfirm: requireConfirm,
		GoogleEnabled:  googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
	Confirmed     bool // true right after following a confirmation link
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		Error:         oauthErrorMessage(query.Get(r, "error")),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
		Confirmed:     query.Get(r, "confirmed") == "1",
	})
}

// oauthErrorMessage maps the error codes the Google flow redirects back
// with to something a person can act on.
func oauthErrorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "google_denied":
		return "Google sign-in was cancelled."
	case "google_not_configured":
		return "Google sign-in is not available right now."
	case "password_account":
		return "That email is registered with a password. Log in with your password instead."
	case "unverified_email":
		return "Your Google account's email address is not verified."
	case "invalid_state", "invalid_code", "token_exchange", "user_info":
		return "Google sign-in failed. Please try again."
	default:
		return "Sign-in failed. Please try again."
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := authutil.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.AuthMethod == "google" {
		h.renderFormWithError(w, r, "That account uses Google sign-in. Please use the Google button below.", email)
		return
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}

	if h.RequireConfirm && !u.Confirmed() {
		h.renderFormWithError(w, r,
			"Please confirm your email address first. Check your inbox for the confirmation link.", email)
		return
	}

	h.createSessionAndRedirect(w, r, u)
}

// createSessionAndRedirect signs the user in and sends them on. The consent
// flag is resolved here once and cached in the session; a missing profile or
// an unreachable profile collection just means no consent yet.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, u *models.User) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	consent, err := h.Profiles.HasConsented(ctx, u.ID)
	if err != nil {
		h.Log.Warn("consent lookup failed, treating as not consented",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
		consent = false
	}

	su := &auth.SessionUser{
		ID:      u.ID.Hex(),
		Email:   u.Email,
		Consent: consent,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "A server error occurred.", "/login")
		return
	}

	ret := strings.TrimSpace(r.FormValue("return"))
	dest := urlutil.SafeReturn(ret, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	// From POST, "return" will be in the form; from GET it rides the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Log in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
