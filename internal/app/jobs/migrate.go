// internal/app/jobs/migrate.go
package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/playdesk/clubledger/internal/app/legacy"
	transactionstore "github.com/playdesk/clubledger/internal/app/store/transactions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Migrator is the one-shot ETL from the legacy debit/credit ledger into
// transactions.
//
// Idempotency is durable, not process-local: each record is skipped
// when a transaction already references its legacy id, so the migration
// survives restarts and re-runs over identical source data without
// producing duplicates. A final pass compares source row count against
// migrated transaction count and reports any mismatch.
type Migrator struct {
	source       legacy.Source
	transactions *transactionstore.Store
	log          *zap.Logger
}

func NewMigrator(source legacy.Source, db *mongo.Database, logger *zap.Logger) *Migrator {
	return &Migrator{
		source:       source,
		transactions: transactionstore.New(db),
		log:          logger,
	}
}

func (j *Migrator) Name() string { return "legacy-ledger-migration" }

func (j *Migrator) Run(ctx context.Context) (MigrationReport, error) {
	report := MigrationReport{RunID: uuid.NewString(), Source: j.source.Name()}

	records, err := j.source.Records(ctx)
	if err != nil {
		return report, err
	}

	tenantsSeen := make(map[primitive.ObjectID]bool)
	for _, rec := range records {
		tenantsSeen[rec.TenantID] = true
		item := j.migrateRecord(ctx, rec)
		switch item.Action {
		case ActionMigrated:
			report.Migrated++
		case ActionSkipped:
			report.Skipped++
		case ActionError:
			report.Errors++
		}
		report.Items = append(report.Items, item)
	}

	// Validation pass: source rows vs migrated transactions.
	report.SourceCount, err = j.source.Count(ctx)
	if err != nil {
		j.log.Error("migration: source count failed", zap.Error(err))
	}
	for tenantID := range tenantsSeen {
		count, err := j.transactions.CountMigrated(ctx, tenantID)
		if err != nil {
			j.log.Error("migration: destination count failed",
				zap.String("tenant_id", tenantID.Hex()),
				zap.Error(err))
			continue
		}
		report.DestinationCount += count
	}
	if report.SourceCount != report.DestinationCount {
		j.log.Warn("migration: source and destination counts differ",
			zap.Int64("source", report.SourceCount),
			zap.Int64("destination", report.DestinationCount))
	}

	j.log.Info("legacy migration finished",
		zap.String("run_id", report.RunID),
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int64("source_count", report.SourceCount),
		zap.Int64("destination_count", report.DestinationCount))
	return report, nil
}

func (j *Migrator) migrateRecord(ctx context.Context, rec legacy.Record) Item {
	item := Item{TenantID: rec.TenantID.Hex(), LegacyID: rec.LegacyID}

	exists, err := j.transactions.ExistsByLegacyID(ctx, rec.TenantID, rec.LegacyID)
	if err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("migration: legacy id lookup failed",
			zap.String("legacy_id", rec.LegacyID),
			zap.Error(err))
		return item
	}
	if exists {
		item.Action = ActionSkipped
		return item
	}

	if _, err := j.transactions.Create(ctx, legacy.MapRecord(rec)); err != nil {
		item.Action = ActionError
		item.Error = err.Error()
		j.log.Error("migration: creating transaction failed",
			zap.String("legacy_id", rec.LegacyID),
			zap.Error(err))
		return item
	}

	item.Action = ActionMigrated
	return item
}
