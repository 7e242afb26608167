package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"bookstore-management/logging"
)

// SQLiteBackend keeps the same rows as FileBackend inside one SQLite database. Each row
// is stored as its comma-separated line so both backends share one format.
type SQLiteBackend struct {
	db  *sql.DB
	log *zap.Logger

	insertRowStmt *sql.Stmt
}

// NewSQLiteBackend opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewSQLiteBackend(dbPath string, log *zap.Logger) (*SQLiteBackend, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	b := &SQLiteBackend{db: db, log: logging.OrNop(log)}
	if b.insertRowStmt, err = db.Prepare(`INSERT INTO table_rows(tbl,pos,line) VALUES(?,?,?)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return b, nil
}

// Close releases prepared statements and closes the DB.
func (b *SQLiteBackend) Close() error {
	if b.insertRowStmt != nil {
		b.insertRowStmt.Close()
	}
	return b.db.Close()
}

const schemaVersion = 1

// migrations[i] brings the schema from version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS table_rows (
        tbl  TEXT NOT NULL,
        pos  INTEGER NOT NULL,
        line TEXT NOT NULL,
        PRIMARY KEY (tbl, pos)
    );`,
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := current; v < schemaVersion; v++ {
		if _, err := tx.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func (b *SQLiteBackend) Load(table string) ([][]string, error) {
	rows, err := b.db.Query(`SELECT pos, line FROM table_rows WHERE tbl=? ORDER BY pos`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			pos  int
			line string
		)
		if err := rows.Scan(&pos, &line); err != nil {
			return nil, err
		}
		fields, err := decodeRow(line)
		if err != nil {
			b.log.Debug("row_skipped",
				zap.String("table", table),
				zap.Int("line", pos+1),
				zap.Error(err),
			)
			continue
		}
		out = append(out, fields)
	}
	return out, rows.Err()
}

// Save replaces every row of table in one transaction.
func (b *SQLiteBackend) Save(table string, rows [][]string) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM table_rows WHERE tbl=?`, table); err != nil {
		return err
	}
	insert := tx.Stmt(b.insertRowStmt)
	defer insert.Close()
	for i, fields := range rows {
		line, err := encodeRow(fields)
		if err != nil {
			return fmt.Errorf("encode %s row: %w", table, err)
		}
		if _, err := insert.Exec(table, i, line); err != nil {
			return err
		}
	}
	return tx.Commit()
}
