package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"bookstore-management/logging"
)

// Data file names inside the data directory.
const (
	BooksFile = "books.csv"
	UsersFile = "users.csv"
	AdminFile = "adminPassword.txt"
)

// FileBackend keeps each table in its own flat file: CSV for books and users, a single
// plain line for the admin password.
type FileBackend struct {
	dir string
	log *zap.Logger
}

// NewFileBackend stores tables under dir, creating the directory when needed.
func NewFileBackend(dir string, log *zap.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir, log: logging.OrNop(log)}, nil
}

// Path is the file backing table.
func (f *FileBackend) Path(table string) string {
	switch table {
	case TableBooks:
		return filepath.Join(f.dir, BooksFile)
	case TableUsers:
		return filepath.Join(f.dir, UsersFile)
	case TableAdmin:
		return filepath.Join(f.dir, AdminFile)
	default:
		return filepath.Join(f.dir, table+".csv")
	}
}

func (f *FileBackend) Load(table string) ([][]string, error) {
	path := f.Path(table)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		created, createErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if createErr != nil {
			return nil, fmt.Errorf("create %s: %w", path, createErr)
		}
		return nil, created.Close()
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	if table == TableAdmin {
		if !sc.Scan() {
			return nil, sc.Err()
		}
		password := strings.TrimSpace(sc.Text())
		if password == "" {
			return nil, nil
		}
		return [][]string{{password}}, nil
	}

	var rows [][]string
	line := 0
	for sc.Scan() {
		line++
		fields, err := decodeRow(sc.Text())
		if err != nil {
			f.log.Debug("row_skipped",
				zap.String("table", table),
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, fields)
	}
	return rows, sc.Err()
}

func (f *FileBackend) Save(table string, rows [][]string) error {
	var sb strings.Builder
	if table == TableAdmin {
		if len(rows) > 0 && len(rows[0]) > 0 {
			sb.WriteString(rows[0][0])
		}
	} else {
		for _, fields := range rows {
			line, err := encodeRow(fields)
			if err != nil {
				return fmt.Errorf("encode %s row: %w", table, err)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return os.WriteFile(f.Path(table), []byte(sb.String()), 0o644)
}

// Close is a no-op; files are closed after every Load and Save.
func (f *FileBackend) Close() error { return nil }
