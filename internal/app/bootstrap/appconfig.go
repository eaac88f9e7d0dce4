// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// framework-level settings (ports, TLS, log level); AppConfig is where
// everything specific to the billing engine lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Legacy ledger source. When the DSN is empty the migrator is
	// unavailable and the rest of the engine runs normally.
	LegacyPgDSN string

	// Kafka event publishing. Empty broker list disables publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// Accounting mirror. Missing credentials degrade to a no-op mirror.
	AccountingBaseURL    string
	AccountingAPIKey     string
	AccountingCategoryID string

	// Job scheduling
	JobsEnabled       bool
	InvoiceCron       string // cron expression for the monthly invoice job
	OverdueCron       string // cron expression for the overdue suspension job
	SchedulerTimezone string // fixed timezone all cron expressions evaluate in
	OverdueGrace      time.Duration
}
