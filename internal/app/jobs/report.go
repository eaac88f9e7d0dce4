// Package jobs holds the scheduled billing batches: the monthly invoice
// generator, the overdue suspender, and the legacy ledger migration.
//
// Every job follows the same contract: tenants are processed
// sequentially, memberships within a tenant sequentially, every mutating
// step is guarded by a read-before-write idempotency check, and a
// failure on one item is counted and reported without aborting its
// siblings. Re-running a job, or running it from a duplicate
// deployment, is safe.
package jobs

// Item records the outcome of a single membership or record inside a
// batch run.
type Item struct {
	TenantID     string `json:"tenant_id,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
	LegacyID     string `json:"legacy_id,omitempty"`
	Action       string `json:"action"`
	Error        string `json:"error,omitempty"`
}

// Item actions.
const (
	ActionCreated   = "created"
	ActionSkipped   = "skipped"
	ActionSuspended = "suspended"
	ActionMigrated  = "migrated"
	ActionError     = "error"
)

// InvoiceReport is the structured result of a monthly invoice run.
type InvoiceReport struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Items     []Item `json:"items"`
}

// OverdueReport is the structured result of an overdue suspension run.
type OverdueReport struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"`
	Suspended int    `json:"suspended"`
	Errors    int    `json:"errors"`
	Items     []Item `json:"items"`
}

// MigrationReport is the structured result of a legacy migration run.
// SourceCount and DestinationCount come from the post-run validation
// pass comparing source rows against migrated transactions.
type MigrationReport struct {
	RunID            string `json:"run_id"`
	Source           string `json:"source"`
	Migrated         int    `json:"migrated"`
	Skipped          int    `json:"skipped"`
	Errors           int    `json:"errors"`
	SourceCount      int64  `json:"source_count"`
	DestinationCount int64  `json:"destination_count"`
	Items            []Item `json:"items"`
}
