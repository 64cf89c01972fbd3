// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// Feature template sets register themselves via init(), so there is
// nothing to preload here yet.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("tripcollect starting",
		zap.String("base_url", appCfg.BaseURL),
		zap.Bool("require_email_confirm", appCfg.RequireEmailConfirm),
		zap.Bool("google_oauth", appCfg.GoogleClientID != ""))
	return nil
}
