// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the billing engine.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, invoice_cron, etc.
//   - Environment variables: CLUBLEDGER_MONGO_URI, CLUBLEDGER_INVOICE_CRON, etc.
//   - Command-line flags: --mongo_uri, --invoice_cron, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "clubledger", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Legacy ledger migration source
	{Name: "legacy_pg_dsn", Default: "", Desc: "Postgres DSN of the legacy ledger (blank disables the migrator)"},

	// Kafka event publishing
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka broker addresses (blank disables publishing)"},
	{Name: "kafka_topic", Default: "clubledger.billing", Desc: "Kafka topic for billing events"},

	// Accounting mirror
	{Name: "accounting_base_url", Default: "", Desc: "Base URL of the external accounting API (blank disables mirroring)"},
	{Name: "accounting_api_key", Default: "", Desc: "API key for the external accounting API"},
	{Name: "accounting_category_id", Default: "", Desc: "Accounting-side category id for membership income"},

	// Job scheduling
	{Name: "jobs_enabled", Default: true, Desc: "Run the scheduled billing jobs in this instance"},
	{Name: "invoice_cron", Default: "0 6 1 * *", Desc: "Cron expression for the monthly invoice job"},
	{Name: "overdue_cron", Default: "0 7 * * *", Desc: "Cron expression for the overdue suspension job"},
	{Name: "scheduler_timezone", Default: "America/Sao_Paulo", Desc: "Timezone the cron expressions evaluate in"},
	{Name: "overdue_grace", Default: "0s", Desc: "Grace window added to due dates before suspension (e.g., 72h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or jobs are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLUBLEDGER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		LegacyPgDSN: appValues.String("legacy_pg_dsn"),

		KafkaBrokers: splitList(appValues.String("kafka_brokers")),
		KafkaTopic:   appValues.String("kafka_topic"),

		AccountingBaseURL:    appValues.String("accounting_base_url"),
		AccountingAPIKey:     appValues.String("accounting_api_key"),
		AccountingCategoryID: appValues.String("accounting_category_id"),

		JobsEnabled:       appValues.Bool("jobs_enabled"),
		InvoiceCron:       appValues.String("invoice_cron"),
		OverdueCron:       appValues.String("overdue_cron"),
		SchedulerTimezone: appValues.String("scheduler_timezone"),
		OverdueGrace:      appValues.Duration("overdue_grace", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Catching bad URIs and cron expressions here fails fast instead of at
// the first scheduled trigger.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.OverdueGrace < 0 {
		return fmt.Errorf("overdue_grace must not be negative")
	}
	if appCfg.JobsEnabled && appCfg.SchedulerTimezone == "" {
		return fmt.Errorf("scheduler_timezone is required when jobs are enabled")
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
