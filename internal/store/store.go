package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dshills/gauntlet/internal/review"
)

// Typed errors surfaced to the CLI as distinct user messages.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

const schema = `
CREATE TABLE IF NOT EXISTS reference_documents (
	id         TEXT PRIMARY KEY,
	namespace  TEXT NOT NULL,
	text       TEXT NOT NULL,
	category   TEXT NOT NULL,
	owner      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refdocs_namespace ON reference_documents(namespace);

CREATE TABLE IF NOT EXISTS review_records (
	id         TEXT PRIMARY KEY,
	namespace  TEXT NOT NULL,
	document   TEXT NOT NULL,
	verdicts   TEXT NOT NULL,
	summary    TEXT NOT NULL,
	owner      TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_namespace ON review_records(namespace);
`

// Store is the SQLite-backed persistence gateway. All rows are keyed under
// an application namespace string so multiple tenants can share one file.
type Store struct {
	db        *sql.DB
	namespace string
}

// Open opens (creating if needed) the store at path, scoped to namespace.
func Open(path, namespace string) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace must not be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store schema: %w", mapErr(err))
	}
	return &Store{db: db, namespace: namespace}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReferenceDocuments returns all reference documents in the namespace,
// oldest first.
func (s *Store) ReferenceDocuments(ctx context.Context) ([]review.ReferenceDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, owner, created_at
		 FROM reference_documents WHERE namespace = ? ORDER BY created_at, id`,
		s.namespace)
	if err != nil {
		return nil, fmt.Errorf("reading reference documents: %w", mapErr(err))
	}
	defer rows.Close()

	var docs []review.ReferenceDocument
	for rows.Next() {
		var d review.ReferenceDocument
		if err := rows.Scan(&d.ID, &d.Text, &d.Category, &d.Owner, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reference document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reference documents: %w", mapErr(err))
	}
	return docs, nil
}

// AddReferenceDocument stores a new reference document and returns it.
func (s *Store) AddReferenceDocument(ctx context.Context, text, category, owner string) (review.ReferenceDocument, error) {
	doc := review.ReferenceDocument{
		ID:        uuid.NewString(),
		Text:      text,
		Category:  strings.ToLower(strings.TrimSpace(category)),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_documents (id, namespace, text, category, owner, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, s.namespace, doc.Text, doc.Category, doc.Owner, doc.CreatedAt)
	if err != nil {
		return review.ReferenceDocument{}, fmt.Errorf("storing reference document: %w", mapErr(err))
	}
	return doc, nil
}

// DeleteReferenceDocument removes a reference document by id.
func (s *Store) DeleteReferenceDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reference_documents WHERE namespace = ? AND id = ?`,
		s.namespace, id)
	if err != nil {
		return fmt.Errorf("deleting reference document: %w", mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reference document %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveRecord persists an approved run record. Write-once: records are never
// updated or deleted through this API.
func (s *Store) SaveRecord(ctx context.Context, rec review.Record) error {
	verdicts, err := json.Marshal(rec.Verdicts)
	if err != nil {
		return fmt.Errorf("encoding verdicts: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO review_records (id, namespace, document, verdicts, summary, owner, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, s.namespace, rec.Document, string(verdicts), rec.AggregateSummary,
		rec.Owner, rec.Status, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("storing review record: %w", mapErr(err))
	}
	return nil
}

// Records returns all persisted review records in the namespace, newest
// first.
func (s *Store) Records(ctx context.Context) ([]review.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, verdicts, summary, owner, status, created_at
		 FROM review_records WHERE namespace = ? ORDER BY created_at DESC, id`,
		s.namespace)
	if err != nil {
		return nil, fmt.Errorf("reading review records: %w", mapErr(err))
	}
	defer rows.Close()

	var recs []review.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading review records: %w", mapErr(err))
	}
	return recs, nil
}

// Record returns a single persisted review record by id.
func (s *Store) Record(ctx context.Context, id string) (review.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document, verdicts, summary, owner, status, created_at
		 FROM review_records WHERE namespace = ? AND id = ?`,
		s.namespace, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return review.Record{}, fmt.Errorf("review record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return review.Record{}, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (review.Record, error) {
	var rec review.Record
	var verdicts string
	if err := row.Scan(&rec.ID, &rec.Document, &verdicts, &rec.AggregateSummary,
		&rec.Owner, &rec.Status, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return review.Record{}, err
		}
		return review.Record{}, fmt.Errorf("scanning review record: %w", err)
	}
	if err := json.Unmarshal([]byte(verdicts), &rec.Verdicts); err != nil {
		return review.Record{}, fmt.Errorf("decoding verdicts for record %s: %w", rec.ID, err)
	}
	return rec, nil
}

// mapErr converts driver errors into the store's typed errors where a
// distinct user message is warranted.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "readonly") || strings.Contains(msg, "read-only") ||
		strings.Contains(msg, "permission denied") || strings.Contains(msg, "access is denied") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
