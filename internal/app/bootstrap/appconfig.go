// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, request limits); AppConfig is everything specific to
// the trip survey itself. Values come from config files, TRIPCOLLECT_*
// environment variables, or command-line flags, loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name
	SessionDomain string        // cookie domain (blank means current host)
	SessionMaxAge time.Duration // how long a session cookie lives

	// CSRF protection
	CSRFKey string // 32-byte secret for the CSRF token authenticator

	// Base URL for links placed in emails and OAuth redirects
	BaseURL string

	// Email confirmation gate: when true, password accounts must follow
	// the emailed confirmation link before they can log in.
	RequireEmailConfirm bool

	// SMTP configuration; an empty host puts the mailer in log-only mode.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	// Google OAuth configuration; both empty disables the Google button.
	GoogleClientID     string
	GoogleClientSecret string
}
