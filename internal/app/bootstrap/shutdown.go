// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the scheduler, event publisher, and DB
// connections. The scheduler stops first so no job run starts against
// closing backends.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if rt.sched != nil {
		rt.sched.Stop()
	}
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			logger.Error("event publisher close failed", zap.Error(err))
		}
	}
	if deps.LegacyPool != nil {
		deps.LegacyPool.Close()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
