package db

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	embedded "github.com/solatis/formkeeper/migrations"
)

// MigrationStatus describes one embedded migration.
type MigrationStatus struct {
	ID          string     `db:"migration_id"`
	Checksum    string     `db:"checksum"`
	Applied     bool       `db:"-"`
	AppliedAt   *time.Time `db:"applied_at"`
	ExecutionMs int64      `db:"execution_ms"`
}

type migration struct {
	ID       string
	Checksum string
	SQL      string
}

var migrationsTableDDL = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS migrations (
		migration_id TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL,
		execution_ms INTEGER NOT NULL
	)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS migrations (
		migration_id TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP WITHOUT TIME ZONE NOT NULL,
		execution_ms INTEGER NOT NULL
	)`,
}

func migrationSource(driver string) (fs.FS, error) {
	switch driver {
	case DriverSQLite:
		return fs.Sub(embedded.SqliteMigrations, "sqlite")
	case DriverPostgres:
		return fs.Sub(embedded.PostgresMigrations, "postgres")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// MigrateUp applies pending migrations in filename order. Each migration
// and its bookkeeping row commit in one transaction. Applied migrations
// whose embedded checksum changed abort the run.
func MigrateUp(ctx context.Context, db *sqlx.DB) (applied []string, err error) {
	migrations, err := prepare(ctx, db)
	if err != nil {
		return nil, err
	}

	done, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	if err := verifyChecksums(migrations, done); err != nil {
		return nil, fmt.Errorf("migration checksum validation failed: %w", err)
	}

	for _, m := range migrations {
		if _, ok := done[m.ID]; ok {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return applied, err
		}
		applied = append(applied, m.ID)
	}
	return applied, nil
}

// MigrateStatus lists every embedded migration with its applied state.
func MigrateStatus(ctx context.Context, db *sqlx.DB) ([]MigrationStatus, error) {
	migrations, err := prepare(ctx, db)
	if err != nil {
		return nil, err
	}

	done, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		if s, ok := done[m.ID]; ok {
			statuses = append(statuses, s)
			continue
		}
		statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
	}
	return statuses, nil
}

// RequireMigrated fails when any embedded migration is pending.
func RequireMigrated(ctx context.Context, db *sqlx.DB) error {
	statuses, err := MigrateStatus(ctx, db)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'formkeeper migrate up' first", s.ID)
		}
	}
	return nil
}

func prepare(ctx context.Context, db *sqlx.DB) ([]migration, error) {
	src, err := migrationSource(db.DriverName())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, migrationsTableDDL[db.DriverName()]); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	migrations, err := parseMigrations(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}
	return migrations, nil
}

func parseMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sum := sha256.Sum256(content)
		migrations = append(migrations, migration{
			ID:       path.Base(name),
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].ID < migrations[j].ID })
	return migrations, nil
}

func appliedMigrations(ctx context.Context, db *sqlx.DB) (map[string]MigrationStatus, error) {
	var rows []MigrationStatus
	err := db.SelectContext(ctx, &rows,
		"SELECT migration_id, checksum, applied_at, execution_ms FROM migrations")
	if err != nil {
		return nil, err
	}

	done := make(map[string]MigrationStatus, len(rows))
	for _, r := range rows {
		r.Applied = true
		done[r.ID] = r
	}
	return done, nil
}

func verifyChecksums(migrations []migration, done map[string]MigrationStatus) error {
	checksums := make(map[string]string, len(migrations))
	for _, m := range migrations {
		checksums[m.ID] = m.Checksum
	}
	for id, s := range done {
		want, ok := checksums[id]
		if !ok {
			return fmt.Errorf("migration %s exists in database but not in embedded files", id)
		}
		if s.Checksum != want {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", id, want, s.Checksum)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sqlx.DB, m migration) error {
	start := time.Now()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
	}
	defer tx.Rollback()

	// lib/pq rejects multiple statements in one Exec.
	for _, stmt := range splitStatements(m.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO migrations (migration_id, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)"),
		m.ID, m.Checksum, time.Now().UTC(), time.Since(start).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
	}
	return nil
}

// splitStatements drops whole-line "--" comments and splits on ';'.
// Migrations must not put ';' inside string literals.
func splitStatements(sql string) []string {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(sql))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
