package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"heirloom-go/internal/cache/migrations"
	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/model"
)

// SQLiteCache implements the Cache interface using SQLite, so listings
// survive process restarts and can be served while the ledger is
// unreachable. Put replaces the whole row.
type SQLiteCache struct {
	db *sql.DB
}

var _ heirloom.Cache = (*SQLiteCache)(nil)

// NewSQLiteCache opens (or creates) the cache database at path and brings
// its schema up to date. path can be ":memory:" for tests.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// One connection: concurrent listing refreshes serialize here, and an
	// in-memory database keeps its tables across the whole test.
	db.SetMaxOpenConns(1)

	// Wait for locks instead of failing when listings refresh concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring cache database: %w", err)
	}

	return db, nil
}

func (s *SQLiteCache) Put(rec model.Inheritance) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO inheritances
			(id, owner, successor, content_hash, tag, file_name, file_size, timestamp, is_active, is_claimed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner.Hex(), rec.Successor.Hex(), rec.ContentHash, rec.Tag,
		rec.FileName, rec.FileSize, rec.Timestamp.Unix(), rec.IsActive, rec.IsClaimed,
	)
	if err != nil {
		return fmt.Errorf("caching record %d: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteCache) Get(id uint64) (*model.Inheritance, error) {
	row := s.db.QueryRow(`
		SELECT id, owner, successor, content_hash, tag, file_name, file_size, timestamp, is_active, is_claimed
		FROM inheritances WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached record %d: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteCache) Delete(id uint64) error {
	if _, err := s.db.Exec(`DELETE FROM inheritances WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting cached record %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteCache) ByOwner(owner common.Address) ([]model.Inheritance, error) {
	return s.query(`
		SELECT id, owner, successor, content_hash, tag, file_name, file_size, timestamp, is_active, is_claimed
		FROM inheritances WHERE owner = ? ORDER BY id`, owner.Hex())
}

func (s *SQLiteCache) BySuccessor(successor common.Address) ([]model.Inheritance, error) {
	return s.query(`
		SELECT id, owner, successor, content_hash, tag, file_name, file_size, timestamp, is_active, is_claimed
		FROM inheritances WHERE successor = ? ORDER BY id`, successor.Hex())
}

// Close closes the database connection.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

func (s *SQLiteCache) query(q string, arg any) ([]model.Inheritance, error) {
	rows, err := s.db.Query(q, arg)
	if err != nil {
		return nil, fmt.Errorf("listing cached records: %w", err)
	}
	defer rows.Close()

	var out []model.Inheritance
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cached record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing cached records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Inheritance, error) {
	var rec model.Inheritance
	var owner, successor string
	var timestamp int64

	err := row.Scan(&rec.ID, &owner, &successor, &rec.ContentHash, &rec.Tag,
		&rec.FileName, &rec.FileSize, &timestamp, &rec.IsActive, &rec.IsClaimed)
	if err != nil {
		return nil, err
	}

	rec.Owner = common.HexToAddress(owner)
	rec.Successor = common.HexToAddress(successor)
	rec.Timestamp = time.Unix(timestamp, 0).UTC()
	return &rec, nil
}
