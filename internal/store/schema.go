package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ColumnSpec describes a column the application expects to exist, with the
// literal used both as the column DEFAULT and as the backfill value for rows
// that predate it.
type ColumnSpec struct {
	Name    string
	Type    string
	Default string
}

// TableSpec pairs a table name with the columns it must carry.
type TableSpec struct {
	Table   string
	Columns []ColumnSpec
}

// expectedColumns lists additive columns that older databases may lack.
// Base tables come from migrations; this covers databases created before a
// column existed, including ones imported from other deployments.
var expectedColumns = []TableSpec{
	{
		Table: "users",
		Columns: []ColumnSpec{
			{Name: "role", Type: "TEXT", Default: "'attendee'"},
			{Name: "is_admin", Type: "BOOLEAN", Default: "0"},
		},
	},
}

// tableColumns returns the column names of a table via PRAGMA table_info.
// A missing table yields an empty set, not an error.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// missingColumns returns the specs absent from the existing column set,
// preserving spec order.
func missingColumns(existing map[string]bool, specs []ColumnSpec) []ColumnSpec {
	var missing []ColumnSpec
	for _, spec := range specs {
		if !existing[spec.Name] {
			missing = append(missing, spec)
		}
	}
	return missing
}

// EnsureColumn adds a single column and backfills NULL rows with its default.
func EnsureColumn(ctx context.Context, db *sql.DB, table string, spec ColumnSpec) error {
	alter := fmt.Sprintf(`ALTER TABLE %q ADD COLUMN %q %s DEFAULT %s`,
		table, spec.Name, spec.Type, spec.Default)
	if _, err := db.ExecContext(ctx, alter); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", table, spec.Name, err)
	}

	backfill := fmt.Sprintf(`UPDATE %q SET %q = %s WHERE %q IS NULL`,
		table, spec.Name, spec.Default, spec.Name)
	if _, err := db.ExecContext(ctx, backfill); err != nil {
		return fmt.Errorf("backfilling column %s.%s: %w", table, spec.Name, err)
	}
	return nil
}

// EnsureSchema brings pre-existing databases up to the expected column set.
// It only ever adds columns. Failures are logged and swallowed so a startup
// against a partially readable database degrades instead of aborting; callers
// rely on the base migration for correctness on fresh databases.
func EnsureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) {
	for _, ts := range expectedColumns {
		existing, err := tableColumns(ctx, db, ts.Table)
		if err != nil {
			logger.Warn("schema check failed", "table", ts.Table, "error", err)
			continue
		}
		if len(existing) == 0 {
			// Table not created yet; migrations own that case.
			continue
		}
		for _, spec := range missingColumns(existing, ts.Columns) {
			if err := EnsureColumn(ctx, db, ts.Table, spec); err != nil {
				logger.Warn("schema upgrade failed",
					"table", ts.Table, "column", spec.Name, "error", err)
				continue
			}
			logger.Info("schema upgraded",
				"table", ts.Table, "column", spec.Name, "default", spec.Default)
		}
	}
}
