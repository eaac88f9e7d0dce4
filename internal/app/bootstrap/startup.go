// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/playdesk/clubledger/internal/app/billing"
	"github.com/playdesk/clubledger/internal/app/events"
	eventskafka "github.com/playdesk/clubledger/internal/app/events/kafka"
	"github.com/playdesk/clubledger/internal/app/gateway/accounting"
	"github.com/playdesk/clubledger/internal/app/gateway/messaging"
	"github.com/playdesk/clubledger/internal/app/jobs"
	"github.com/playdesk/clubledger/internal/app/legacy"
	"github.com/playdesk/clubledger/internal/app/system/scheduler"
	"go.uber.org/zap"
)

// runtime bundles the long-lived pieces built during Startup so that
// BuildHandler can expose them and Shutdown can tear them down.
type runtime struct {
	billing    *billing.Service
	invoiceJob *jobs.InvoiceJob
	overdueJob *jobs.OverdueJob
	migrator   *jobs.Migrator
	publisher  events.Publisher
	sched      *scheduler.Scheduler
}

var rt runtime

// Startup builds the billing service, the jobs, and the scheduler after
// DB connections and schema setup are complete, but before the HTTP
// handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	var publisher events.Publisher = events.Nop{}
	if len(appCfg.KafkaBrokers) > 0 {
		publisher = eventskafka.NewPublisher(appCfg.KafkaBrokers, appCfg.KafkaTopic)
		logger.Info("kafka event publishing enabled",
			zap.Strings("brokers", appCfg.KafkaBrokers),
			zap.String("topic", appCfg.KafkaTopic))
	}

	svc := billing.NewService(db, logger)
	svc.Mirror = accounting.New(appCfg.AccountingBaseURL, appCfg.AccountingAPIKey, logger)
	svc.Events = publisher
	svc.AccountingCategoryID = appCfg.AccountingCategoryID

	messenger := messaging.NewLogMessenger(logger)

	invoiceJob := jobs.NewInvoiceJob(db, logger)
	overdueJob := jobs.NewOverdueJob(db, messenger, appCfg.OverdueGrace, logger)
	overdueJob.Events = publisher

	var migrator *jobs.Migrator
	if deps.LegacyPool != nil {
		migrator = jobs.NewMigrator(legacy.NewPostgresSource(deps.LegacyPool), db, logger)
	}

	rt = runtime{
		billing:    svc,
		invoiceJob: invoiceJob,
		overdueJob: overdueJob,
		migrator:   migrator,
		publisher:  publisher,
	}

	if !appCfg.JobsEnabled {
		logger.Info("scheduled jobs disabled in this instance")
		return nil
	}

	sched, err := scheduler.New(appCfg.SchedulerTimezone, logger)
	if err != nil {
		return err
	}
	if err := sched.AddJob(appCfg.InvoiceCron, invoiceJob.Name(), func(ctx context.Context) error {
		_, err := invoiceJob.Run(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.AddJob(appCfg.OverdueCron, overdueJob.Name(), func(ctx context.Context) error {
		_, err := overdueJob.Run(ctx)
		return err
	}); err != nil {
		return err
	}
	sched.Start()
	rt.sched = sched
	return nil
}
