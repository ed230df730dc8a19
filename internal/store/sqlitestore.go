// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// SQLiteStore is the local document store backend: an FTS5 index over
// seeded records. It backs offline evaluation runs and tests.
// Per prd001-store R4.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// SeedRecord is one entry in a YAML seed file.
type SeedRecord struct {
	Collection string           `yaml:"collection"`
	Text       string           `yaml:"text"`
	Meta       types.RecordMeta `yaml:"meta"`
}

// NewSQLiteStore opens or creates the index database at path, creating the
// schema if needed. Per R4.1.
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS collections (name TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			content TEXT NOT NULL,
			kind TEXT NOT NULL,
			institution TEXT,
			program TEXT,
			state TEXT,
			domain TEXT,
			source_url TEXT NOT NULL,
			last_verified TEXT,
			award_year TEXT,
			title TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(content, content=records, content_rowid=rowid)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Add inserts one record and registers its collection. Per R4.2.
func (s *SQLiteStore) Add(ctx context.Context, rec SeedRecord) error {
	if err := rec.Meta.Validate(); err != nil {
		return fmt.Errorf("record %q: %w", rec.Meta.Title, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name) VALUES (?)`, rec.Collection); err != nil {
		return fmt.Errorf("registering collection: %w", err)
	}
	lastVerified := ""
	if !rec.Meta.LastVerified.IsZero() {
		lastVerified = rec.Meta.LastVerified.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, content, kind, institution, program, state, domain, source_url, last_verified, award_year, title)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Collection, rec.Text, string(rec.Meta.Kind), rec.Meta.Institution,
		rec.Meta.Program, rec.Meta.State, string(rec.Meta.Domain),
		rec.Meta.SourceURL, lastVerified, rec.Meta.AwardYear, rec.Meta.Title,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// SeedFromFile loads records from a YAML seed file when the index is
// empty. An already-populated index is left untouched. Per R4.3.
func (s *SQLiteStore) SeedFromFile(ctx context.Context, path string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("checking index population: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading seed file: %w", err)
	}
	var records []SeedRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parsing seed file: %w", err)
	}

	for _, rec := range records {
		if err := s.Add(ctx, rec); err != nil {
			return 0, err
		}
	}
	s.log.Info("seeded local index", zap.Int("records", len(records)), zap.String("path", path))
	return len(records), nil
}

// Query implements Querier over the FTS index. The bm25 rank (negative,
// stronger matches closer to -inf) is converted to a pseudo-distance so
// the retriever's similarity transform applies uniformly across backends.
// Per R4.4.
func (s *SQLiteStore) Query(ctx context.Context, collection, queryText string, nResults int, filter map[string]string) (QueryResponse, error) {
	var registered int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM collections WHERE name = ?`, collection,
	).Scan(&registered); err != nil {
		return QueryResponse{}, fmt.Errorf("checking collection: %w", err)
	}
	if registered == 0 {
		return QueryResponse{}, fmt.Errorf("collection %q: %w", collection, ErrCollectionNotFound)
	}

	match := ftsMatchExpr(queryText)
	if match == "" {
		return QueryResponse{}, nil
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.content, r.kind, r.institution, r.program, r.state, r.domain,
			r.source_url, r.last_verified, r.award_year, r.title, records_fts.rank
		FROM records_fts
		JOIN records r ON r.rowid = records_fts.rowid
		WHERE records_fts MATCH ? AND r.collection = ?`)
	args = append(args, match, collection)

	for _, col := range []string{"kind", "domain", "institution", "state"} {
		if v, ok := filter[col]; ok {
			qb.WriteString(` AND r.` + col + ` = ?`)
			args = append(args, v)
		}
	}

	// Order by rank then rowid so repeated queries are deterministic.
	qb.WriteString(` ORDER BY records_fts.rank, r.rowid LIMIT ?`)
	args = append(args, nResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var out QueryResponse
	for rows.Next() {
		var (
			meta         types.RecordMeta
			content      string
			kind, domain string
			lastVerified sql.NullString
			rank         float64
		)
		if err := rows.Scan(
			&content, &kind, &meta.Institution, &meta.Program, &meta.State,
			&domain, &meta.SourceURL, &lastVerified, &meta.AwardYear,
			&meta.Title, &rank,
		); err != nil {
			return QueryResponse{}, fmt.Errorf("scanning row: %w", err)
		}
		meta.Kind = types.RecordKind(kind)
		meta.Domain = types.Domain(domain)
		if lastVerified.Valid && lastVerified.String != "" {
			if t, err := time.Parse(time.RFC3339, lastVerified.String); err == nil {
				meta.LastVerified = t
			}
		}
		out.Documents = append(out.Documents, content)
		out.Metadatas = append(out.Metadatas, meta)
		out.Distances = append(out.Distances, rankToDistance(rank))
	}
	return out, rows.Err()
}

// rankToDistance maps a bm25 rank to a pseudo-distance. Strong matches
// (large negative rank) approach zero distance; weak matches grow large
// and fall under the retriever's score threshold.
func rankToDistance(rank float64) float64 {
	if rank >= 0 {
		return 3.0
	}
	return 1.0 / -rank
}

// ftsMatchExpr builds a defensive OR query from the alphanumeric tokens of
// free text, since raw FTS5 syntax rejects punctuation.
func ftsMatchExpr(text string) string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var quoted []string
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}
		quoted = append(quoted, `"`+tok+`"`)
	}
	return strings.Join(quoted, " OR ")
}
