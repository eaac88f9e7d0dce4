// internal/app/legacy/postgres.go
package legacy

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostgresSource reads the legacy ledger out of the old product's
// Postgres database. Read-only: the migrator never writes back.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *PostgresSource) Name() string { return "legacy_ledger_entries" }

func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, user_id, category, status, amount_cents,
		       COALESCE(description, ''), created_at, confirmed_at
		FROM legacy_ledger_entries
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			tenantHex   string
			userHex     *string
			confirmedAt *time.Time
		)
		if err := rows.Scan(&rec.LegacyID, &tenantHex, &userHex, &rec.Category,
			&rec.Status, &rec.AmountCents, &rec.Description, &rec.CreatedAt, &confirmedAt); err != nil {
			return nil, err
		}

		tenantID, err := primitive.ObjectIDFromHex(tenantHex)
		if err != nil {
			return nil, err
		}
		rec.TenantID = tenantID

		if userHex != nil {
			if uid, err := primitive.ObjectIDFromHex(*userHex); err == nil {
				rec.UserID = &uid
			}
		}
		rec.ConfirmedAt = confirmedAt
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresSource) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM legacy_ledger_entries`).Scan(&count)
	return count, err
}

var _ Source = (*PostgresSource)(nil)
