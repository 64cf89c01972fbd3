// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	authgooglefeature "github.com/natpac/tripcollect/internal/app/features/authgoogle"
	consentfeature "github.com/natpac/tripcollect/internal/app/features/consent"
	dashboardfeature "github.com/natpac/tripcollect/internal/app/features/dashboard"
	errorsfeature "github.com/natpac/tripcollect/internal/app/features/errors"
	healthfeature "github.com/natpac/tripcollect/internal/app/features/health"
	homefeature "github.com/natpac/tripcollect/internal/app/features/home"
	loginfeature "github.com/natpac/tripcollect/internal/app/features/login"
	logoutfeature "github.com/natpac/tripcollect/internal/app/features/logout"
	pwafeature "github.com/natpac/tripcollect/internal/app/features/pwa"
	researchfeature "github.com/natpac/tripcollect/internal/app/features/research"
	signupfeature "github.com/natpac/tripcollect/internal/app/features/signup"
	tripsfeature "github.com/natpac/tripcollect/internal/app/features/trips"
	userstore "github.com/natpac/tripcollect/internal/app/store/users"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/app/system/mailer"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. Everything the handlers need is
// built here once and wired through constructor injection.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-fetch the user record on every request so a deleted account
	// signs the browser out on its next click.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Boot the template engine once at startup. Dev mode reloads
	// templates per request for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
	}, logger)

	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	// Session context and CSRF protection wrap everything. The CSRF token
	// reaches templates through viewdata.NewBaseVM.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrf.Protect(
		[]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Installable-app plumbing; the worker must be served from the root.
	pwaHandler := pwafeature.NewHandler(logger)
	pwafeature.Routes(r, pwaHandler)

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(
		deps.MongoDatabase, sessionMgr, errLog,
		appCfg.RequireEmailConfirm, googleEnabled, logger,
	)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(
		deps.MongoDatabase, sessionMgr, errLog, mail,
		appCfg.BaseURL, appCfg.RequireEmailConfirm, logger,
	)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	googleHandler := authgooglefeature.NewHandler(
		deps.MongoDatabase, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.NotFound(errorsHandler.NotFound)

	// Signed-in area. Consent is the stricter gate: the dashboards and
	// the trip form sit behind it, the consent page itself does not.
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)

		consentHandler := consentfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
		pr.Mount("/consent", consentfeature.Routes(consentHandler))

		pr.Group(func(cr chi.Router) {
			cr.Use(sessionMgr.RequireConsent)

			dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
			cr.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

			tripsHandler := tripsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
			cr.Mount("/trips", tripsfeature.Routes(tripsHandler))

			researchHandler := researchfeature.NewHandler(deps.MongoDatabase, errLog, logger)
			cr.Mount("/research", researchfeature.Routes(researchHandler))
		})
	})

	return r, nil
}
