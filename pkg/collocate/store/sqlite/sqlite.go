package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
	"github.com/cognicore/collocate/pkg/collocate/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDSource
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, ids: store.NewIDSource()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS ngram_tables (
	corpus TEXT NOT NULL,
	n INTEGER NOT NULL,
	built_at TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(corpus, n)
);

CREATE TABLE IF NOT EXISTS ngram_counts (
	corpus TEXT NOT NULL,
	n INTEGER NOT NULL,
	ngram TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(corpus, n, ngram),
	FOREIGN KEY(corpus, n) REFERENCES ngram_tables(corpus, n) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	corpus TEXT NOT NULL,
	documents INTEGER NOT NULL,
	tokens INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rankings (
	run_id TEXT NOT NULL,
	method TEXT NOT NULL,
	kind TEXT NOT NULL,
	rank INTEGER NOT NULL,
	ngram TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY(run_id, method, kind, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ranking_lists (
	run_id TEXT NOT NULL,
	method TEXT NOT NULL,
	kind TEXT NOT NULL,
	PRIMARY KEY(run_id, method, kind),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return migrate(ctx, db)
}

// migrate upgrades caches created before tables carried a corpus
// fingerprint. Old rows get an empty fingerprint, which never matches a
// corpus, so they are recounted rather than trusted.
func migrate(ctx context.Context, db *sql.DB) error {
	has, err := hasColumn(ctx, db, "ngram_tables", "fingerprint")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = db.ExecContext(ctx, `ALTER TABLE ngram_tables ADD COLUMN fingerprint TEXT NOT NULL DEFAULT ''`)
	return err
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM pragma_table_info('%s')`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// SaveTable replaces the cached table for (corpus, n)
func (s *sqliteStore) SaveTable(ctx context.Context, corpusName string, ct store.CachedTable) error {
	t := ct.Table
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ngram_counts WHERE corpus=? AND n=?`, corpusName, t.N); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO ngram_tables (corpus, n, built_at, fingerprint) VALUES (?, ?, ?, ?)
ON CONFLICT(corpus, n) DO UPDATE SET built_at=excluded.built_at, fingerprint=excluded.fingerprint;
`, corpusName, t.N, time.Now().UTC().Format(time.RFC3339), ct.Fingerprint); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ngram_counts (corpus, n, ngram, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, key := range t.Keys() {
		if _, err := stmt.ExecContext(ctx, corpusName, t.N, key, t.Counts[key]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadTable returns the cached table for (corpus, n), if one was saved
func (s *sqliteStore) LoadTable(ctx context.Context, corpusName string, n int) (store.CachedTable, bool, error) {
	var fingerprint string
	err := s.db.QueryRowContext(ctx, `SELECT fingerprint FROM ngram_tables WHERE corpus=? AND n=?`, corpusName, n).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		return store.CachedTable{}, false, nil
	}
	if err != nil {
		return store.CachedTable{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT ngram, count FROM ngram_counts WHERE corpus=? AND n=?`, corpusName, n)
	if err != nil {
		return store.CachedTable{}, false, err
	}
	defer rows.Close()

	t := ngram.NewTable(n)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return store.CachedTable{}, false, err
		}
		t.Counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return store.CachedTable{}, false, err
	}
	return store.CachedTable{Table: t, Fingerprint: fingerprint}, true, nil
}

// CreateRun records a run, assigning an id and timestamp when missing
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = s.ids.New(r.CreatedAt)
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id=?`, r.ID).Scan(&exists)
	if err == nil {
		return store.Run{}, fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
	}
	if err != sql.ErrNoRows {
		return store.Run{}, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, corpus, documents, tokens, created_at) VALUES (?, ?, ?, ?, ?);
`, r.ID, r.Corpus, r.Documents, r.Tokens, r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns the runs of a corpus, oldest first
func (s *sqliteStore) ListRuns(ctx context.Context, corpusName string) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, corpus, documents, tokens, created_at FROM runs WHERE corpus=? ORDER BY id;
`, corpusName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var r store.Run
		var created string
		if err := rows.Scan(&r.ID, &r.Corpus, &r.Documents, &r.Tokens, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveRanking replaces one ranked list of a run
func (s *sqliteStore) SaveRanking(ctx context.Context, runID, method, kind string, list assoc.RankedList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id=?`, runID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE run_id=? AND method=? AND kind=?`, runID, method, kind); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO ranking_lists (run_id, method, kind) VALUES (?, ?, ?)
ON CONFLICT(run_id, method, kind) DO NOTHING;
`, runID, method, kind); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO rankings (run_id, method, kind, rank, ngram, score) VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range list {
		if _, err := stmt.ExecContext(ctx, runID, method, kind, i+1, c.NGram, c.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRanking returns a stored ranked list in rank order
func (s *sqliteStore) GetRanking(ctx context.Context, runID, method, kind string) (assoc.RankedList, bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM ranking_lists WHERE run_id=? AND method=? AND kind=?
`, runID, method, kind).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT ngram, score FROM rankings WHERE run_id=? AND method=? AND kind=? ORDER BY rank;
`, runID, method, kind)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	list := assoc.RankedList{}
	for rows.Next() {
		var c assoc.Candidate
		if err := rows.Scan(&c.NGram, &c.Score); err != nil {
			return nil, false, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return list, true, nil
}
