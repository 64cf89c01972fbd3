// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	profiles "github.com/natpac/tripcollect/internal/app/store/profiles"
	userstore "github.com/natpac/tripcollect/internal/app/store/users"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/app/system/authutil"
	"github.com/natpac/tripcollect/internal/app/system/mailer"
	"github.com/natpac/tripcollect/internal/app/system/timeouts"
	"github.com/natpac/tripcollect/internal/app/system/viewdata"
	"github.com/natpac/tripcollect/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserCreator is the slice of the user store the signup flow needs.
type UserCreator interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	ConfirmByToken(ctx context.Context, token string) (*models.User, error)
}

// ProfileIniter seeds the consent profile for a fresh account.
type ProfileIniter interface {
	Init(ctx context.Context, userID primitive.ObjectID) error
}

type Handler struct {
	Users      UserCreator
	Profiles   ProfileIniter
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Mailer     *mailer.Mailer

	BaseURL        string // prefix for the confirmation link
	RequireConfirm bool   // gate login behind an email confirmation
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	mail *mailer.Mailer,
	baseURL string,
	requireConfirm bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:          userstore.New(db),
		Profiles:       profiles.New(db),
		Log:            logger,
		SessionMgr:     sessionMgr,
		ErrLog:         errLog,
		Mailer:         mail,
		BaseURL:        baseURL,
		RequireConfirm: requireConfirm,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	PasswordRules string
}

type pendingData struct {
	viewdata.BaseVM
	Email string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		PasswordRules: authutil.PasswordRules(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	email := authutil.NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if err := authutil.ValidateEmail(email); err != nil {
		h.renderFormWithError(w, r, "Please enter a valid email address.", email)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderFormWithError(w, r, err.Error(), email)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password hash failed", err, "A server error occurred.", "/signup")
		return
	}

	u := models.User{
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   "password",
	}
	if h.RequireConfirm {
		u.ConfirmToken = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, u)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.renderFormWithError(w, r, "An account with that email already exists. Try logging in instead.", email)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB create user", err, "A server error occurred.", "/signup")
		return
	}

	// Seed the consent profile so later reads find an explicit "not yet
	// consented" record. The account works fine without it.
	if err := h.Profiles.Init(ctx, created.ID); err != nil {
		h.Log.Warn("profile init failed",
			zap.String("user_id", created.ID.Hex()),
			zap.Error(err))
	}

	if h.RequireConfirm {
		h.sendConfirmEmail(created)
		templates.Render(w, r, "signup_pending", pendingData{
			BaseVM: viewdata.NewBaseVM(r, "Confirm your email", "/"),
			Email:  created.Email,
		})
		return
	}

	// Confirmation not required: straight into a session.
	su := &auth.SessionUser{ID: created.ID.Hex(), Email: created.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		// The account exists; let them log in the long way.
		h.Log.Warn("signup: session save failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) sendConfirmEmail(u models.User) {
	email := mailer.BuildConfirmEmail(mailer.ConfirmEmailData{
		SiteName:   viewdata.SiteName,
		ConfirmURL: h.BaseURL + "/signup/confirm?token=" + u.ConfirmToken,
	})
	email.To = u.Email

	if err := h.Mailer.Send(email); err != nil {
		h.Log.Error("confirmation email send failed",
			zap.String("email", u.Email),
			zap.Error(err))
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup/confirm?token=…                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeConfirm(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.ConfirmByToken(ctx, token)
	switch {
	case errors.Is(err, userstore.ErrTokenNotFound):
		h.ErrLog.LogBadRequest(w, r, "confirm token not found", err,
			"That confirmation link is invalid or was already used.", "/login")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB confirm token", err, "A server error occurred.", "/login")
		return
	}

	h.Log.Info("email confirmed", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/login?confirmed=1", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		Error:         msg,
		Email:         email,
		PasswordRules: authutil.PasswordRules(),
	})
}
