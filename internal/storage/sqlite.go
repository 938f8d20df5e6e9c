package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
)

// SQLiteStorage implements TermStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS terms (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		norm_text TEXT NOT NULL,
		text TEXT NOT NULL,
		db TEXT NOT NULL,
		id TEXT NOT NULL,
		entry_name TEXT NOT NULL,
		status TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		organism TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_terms_grounding ON terms(db, id);
	CREATE INDEX IF NOT EXISTS idx_terms_norm_text ON terms(norm_text);

	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		format TEXT NOT NULL,
		terms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

const termColumns = `norm_text, text, db, id, entry_name, status, source, organism`

func insertTerms(ctx context.Context, tx *sql.Tx, terms []models.Term) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO terms (`+termColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range terms {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("term %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, t.NormText, t.Text, t.Namespace, t.ID, t.EntryName, string(t.Status), t.Source, t.Organism); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceTerms deletes every stored term, inserts terms and records imp in one transaction.
func (s *SQLiteStorage) ReplaceTerms(ctx context.Context, terms []models.Term, imp Import) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM terms`); err != nil {
		return err
	}
	// Restart seq so ordinals match a fresh load.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'terms'`); err != nil {
		return err
	}
	if err := insertTerms(ctx, tx, terms); err != nil {
		return err
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, format, terms, created_at) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Format, len(terms), imp.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendTerms inserts terms in a transaction.
func (s *SQLiteStorage) AppendTerms(ctx context.Context, terms []models.Term) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertTerms(ctx, tx, terms); err != nil {
		return err
	}
	return tx.Commit()
}

func scanTerms(rows *sql.Rows) ([]models.Term, error) {
	defer rows.Close()
	var terms []models.Term
	for rows.Next() {
		var t models.Term
		var status string
		if err := rows.Scan(&t.NormText, &t.Text, &t.Namespace, &t.ID, &t.EntryName, &status, &t.Source, &t.Organism); err != nil {
			return nil, err
		}
		t.Status = models.Status(status)
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// ListTerms returns terms in insertion order with offset and limit.
func (s *SQLiteStorage) ListTerms(ctx context.Context, offset, limit int) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+termColumns+` FROM terms ORDER BY seq LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanTerms(rows)
}

// AllTerms returns every term in insertion order.
func (s *SQLiteStorage) AllTerms(ctx context.Context) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+termColumns+` FROM terms ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return scanTerms(rows)
}

// TermsByGrounding returns every lexical form of one entity.
func (s *SQLiteStorage) TermsByGrounding(ctx context.Context, namespace, id string) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+termColumns+` FROM terms WHERE db = ? AND id = ? ORDER BY seq`,
		namespace, id,
	)
	if err != nil {
		return nil, err
	}
	return scanTerms(rows)
}

// CountTerms returns the total number of terms.
func (s *SQLiteStorage) CountTerms(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms`).Scan(&count)
	return count, err
}

// LatestImport returns the most recent import, or ErrNotFound when the store was never loaded.
func (s *SQLiteStorage) LatestImport(ctx context.Context) (*Import, error) {
	var imp Import
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, format, terms, created_at FROM imports ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.Format, &imp.Terms, &imp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no imports recorded", errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
