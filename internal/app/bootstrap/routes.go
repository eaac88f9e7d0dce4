// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/playdesk/clubledger/internal/app/features/health"
	opsjobsfeature "github.com/playdesk/clubledger/internal/app/features/opsjobs"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// The billing engine's HTTP surface is deliberately small: liveness and
// readiness probes plus operator endpoints to trigger a job run out of
// schedule. The product API in front of this engine lives elsewhere.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	healthfeature.Routes(r, healthHandler)

	opsHandler := opsjobsfeature.NewHandler(rt.invoiceJob, rt.overdueJob, rt.migrator, logger)
	opsjobsfeature.Routes(r, opsHandler)

	return r, nil
}
