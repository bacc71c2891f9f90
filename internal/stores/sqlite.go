package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/danieljhkim/lendlog/internal/ledger"
	"github.com/danieljhkim/lendlog/internal/stores/migrations"
)

// SQLiteStore keeps the log in the operations table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the embedded migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns every operation ordered by sequence number.
func (s *SQLiteStore) Load(ctx context.Context) ([]ledger.Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT seq, recorded_at, kind, item, destination, target, new_item, new_destination
FROM operations
ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []ledger.Operation{}
	for rows.Next() {
		var (
			seq                     int64
			recordedAt, kind        string
			item, destination       string
			target                  sql.NullInt64
			newItem, newDestination string
		)
		if err := rows.Scan(&seq, &recordedAt, &kind, &item, &destination, &target, &newItem, &newDestination); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		rec := make([]string, numColumns)
		rec[colTime] = recordedAt
		rec[colKind] = kind
		rec[colItem] = item
		rec[colDestination] = destination
		if target.Valid {
			rec[colTarget] = strconv.FormatInt(target.Int64, 10)
		}
		rec[colNewItem] = newItem
		rec[colNewDestination] = newDestination
		rec[colSeq] = strconv.FormatInt(seq, 10)

		op, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("malformed operation %d: %w", seq, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

// Append inserts ops in a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, ops []ledger.Operation) error {
	if len(ops) == 0 {
		return nil
	}
	if err := checkBatch(nil, ops); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO operations (seq, recorded_at, kind, item, destination, target, new_item, new_destination)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, op := range ops {
		var (
			item, destination, newItem, newDestination string
			target                                     sql.NullInt64
		)
		switch k := op.Kind.(type) {
		case ledger.Lend:
			item, destination = k.Item, k.Destination
		case ledger.Return:
			item, destination = k.Item, k.Destination
		case ledger.Edit:
			target = sql.NullInt64{Int64: k.Target, Valid: true}
			newItem, newDestination = k.NewItem, k.NewDestination
		case ledger.Remove:
			target = sql.NullInt64{Int64: k.Target, Valid: true}
		default:
			return fmt.Errorf("operation %d: unknown kind %T", op.Seq, op.Kind)
		}
		_, err := stmt.ExecContext(ctx,
			op.Seq,
			op.Time.Format(time.RFC3339),
			op.Tag(),
			item,
			destination,
			target,
			newItem,
			newDestination,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %d", ErrDuplicateSeq, op.Seq)
			}
			return fmt.Errorf("insert operation %d: %w", op.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// applyMigrations runs each embedded *.sql file once, in name order,
// recording applied names in schema_migrations.
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}
