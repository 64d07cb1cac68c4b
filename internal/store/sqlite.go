package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/pbaille/sagequill/internal/richtext"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("already exists")
)

// Store handles database operations
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath with the given driver ("sqlite3" for
// mattn/go-sqlite3, "sqlite" for modernc.org/sqlite) and applies the schema.
func New(driver, dbPath string) (*Store, error) {
	dsn, err := buildDSN(driver, dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if err := migrateContentText(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// migrateContentText adds the plain-text search column to databases created
// before it existed and fills it from the stored markup.
func migrateContentText(db *sql.DB) error {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('notes') WHERE name = 'content_text'").Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect notes: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := db.Exec("ALTER TABLE notes ADD COLUMN content_text TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("add content_text: %w", err)
	}
	return backfillContentText(context.Background(), db)
}

func backfillContentText(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT id, content FROM notes")
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	texts := make(map[string]string)
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			rows.Close()
			return fmt.Errorf("scan note: %w", err)
		}
		texts[id] = richtext.PlainText(content)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, text := range texts {
		if _, err := db.ExecContext(ctx, "UPDATE notes SET content_text = ? WHERE id = ?", text, id); err != nil {
			return fmt.Errorf("backfill %s: %w", id, err)
		}
	}
	return nil
}

func buildDSN(driver, dbPath string) (string, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	switch driver {
	case "sqlite3":
		return dbPath + sep + "_foreign_keys=on&_busy_timeout=5000", nil
	case "sqlite":
		return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the time source used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type scanner interface {
	Scan(dest ...any) error
}
