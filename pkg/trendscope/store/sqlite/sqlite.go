package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/trendscope/pkg/trendscope/store"
)

// sqliteStore implements store.Store using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite run store with WAL mode enabled, creating the
// schema when needed.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
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

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	seed INTEGER NOT NULL,
	filter TEXT,
	granularity TEXT
);

CREATE TABLE IF NOT EXISTS run_documents (
	run_id TEXT NOT NULL,
	doc_id INTEGER NOT NULL,
	normalized TEXT,
	published_at TEXT,
	cluster_id INTEGER NOT NULL,
	confidence REAL NOT NULL,
	PRIMARY KEY(run_id, doc_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_topics (
	run_id TEXT NOT NULL,
	cluster_id INTEGER NOT NULL,
	label TEXT NOT NULL,
	document_count INTEGER NOT NULL,
	PRIMARY KEY(run_id, cluster_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_keywords (
	run_id TEXT NOT NULL,
	cluster_id INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	term TEXT NOT NULL,
	weight REAL NOT NULL,
	PRIMARY KEY(run_id, cluster_id, pos),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_trends (
	run_id TEXT NOT NULL,
	cluster_id INTEGER NOT NULL,
	bucket TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, cluster_id, bucket),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun persists a complete run in one transaction. Saving an existing
// run id fails; runs are immutable.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, seed, filter, granularity) VALUES (?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Seed,
		r.Filter,
		r.Granularity,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}

	if err := insertDocuments(ctx, tx, r.ID, r.Documents); err != nil {
		return err
	}
	if err := insertTopics(ctx, tx, r.ID, r.Topics); err != nil {
		return err
	}
	if err := insertTrends(ctx, tx, r.ID, r.Trends); err != nil {
		return err
	}

	return tx.Commit()
}

func insertDocuments(ctx context.Context, tx *sql.Tx, runID string, docs []store.Document) error {
	if len(docs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_documents (run_id, doc_id, normalized, published_at, cluster_id, confidence) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		var published interface{}
		if d.Timestamp != nil {
			published = d.Timestamp.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx, runID, d.DocID, d.Normalized, published, d.ClusterID, d.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func insertTopics(ctx context.Context, tx *sql.Tx, runID string, topics []store.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	topicStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_topics (run_id, cluster_id, label, document_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer topicStmt.Close()

	keywordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_keywords (run_id, cluster_id, pos, term, weight) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer keywordStmt.Close()

	for _, t := range topics {
		if _, err := topicStmt.ExecContext(ctx, runID, t.ClusterID, t.Label, t.DocumentCount); err != nil {
			return err
		}
		for pos, kw := range t.Keywords {
			if _, err := keywordStmt.ExecContext(ctx, runID, t.ClusterID, pos, kw.Term, kw.Weight); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertTrends(ctx context.Context, tx *sql.Tx, runID string, trends []store.TrendPoint) error {
	if len(trends) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_trends (run_id, cluster_id, bucket, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range trends {
		if _, err := stmt.ExecContext(ctx, runID, p.ClusterID, p.Bucket.UTC().Format(time.RFC3339), p.Count); err != nil {
			return err
		}
	}
	return nil
}

// GetRun loads a full run by id.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var r store.Run
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, seed, filter, granularity FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &createdAt, &r.Seed, &r.Filter, &r.Granularity)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.Run{}, false, fmt.Errorf("run %s: bad created_at %q: %w", id, createdAt, err)
	}

	if r.Documents, err = s.loadDocuments(ctx, id); err != nil {
		return store.Run{}, false, err
	}
	if r.Topics, err = s.loadTopics(ctx, id); err != nil {
		return store.Run{}, false, err
	}
	if r.Trends, err = s.loadTrends(ctx, id); err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) loadDocuments(ctx context.Context, runID string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, normalized, published_at, cluster_id, confidence
		 FROM run_documents WHERE run_id = ? ORDER BY doc_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var d store.Document
		var published sql.NullString
		if err := rows.Scan(&d.DocID, &d.Normalized, &published, &d.ClusterID, &d.Confidence); err != nil {
			return nil, err
		}
		if published.Valid {
			ts, err := time.Parse(time.RFC3339, published.String)
			if err != nil {
				return nil, fmt.Errorf("document %d: bad published_at %q: %w", d.DocID, published.String, err)
			}
			d.Timestamp = &ts
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *sqliteStore) loadTopics(ctx context.Context, runID string) ([]store.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster_id, label, document_count
		 FROM run_topics WHERE run_id = ? ORDER BY cluster_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []store.Topic
	for rows.Next() {
		var t store.Topic
		if err := rows.Scan(&t.ClusterID, &t.Label, &t.DocumentCount); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range topics {
		keywords, err := s.loadKeywords(ctx, runID, topics[i].ClusterID)
		if err != nil {
			return nil, err
		}
		topics[i].Keywords = keywords
	}
	return topics, nil
}

func (s *sqliteStore) loadKeywords(ctx context.Context, runID string, clusterID int) ([]store.Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term, weight FROM run_keywords
		 WHERE run_id = ? AND cluster_id = ? ORDER BY pos`, runID, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []store.Keyword
	for rows.Next() {
		var kw store.Keyword
		if err := rows.Scan(&kw.Term, &kw.Weight); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func (s *sqliteStore) loadTrends(ctx context.Context, runID string) ([]store.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster_id, bucket, count FROM run_trends
		 WHERE run_id = ? ORDER BY cluster_id, bucket`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []store.TrendPoint
	for rows.Next() {
		var p store.TrendPoint
		var bucket string
		if err := rows.Scan(&p.ClusterID, &bucket, &p.Count); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, bucket)
		if err != nil {
			return nil, fmt.Errorf("trend row: bad bucket %q: %w", bucket, err)
		}
		p.Bucket = ts
		trends = append(trends, p)
	}
	return trends, rows.Err()
}

// ListRuns returns run metadata, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context) ([]store.RunMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, COUNT(d.doc_id)
		 FROM runs r LEFT JOIN run_documents d ON d.run_id = r.id
		 GROUP BY r.id ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []store.RunMeta
	for rows.Next() {
		var m store.RunMeta
		var createdAt string
		if err := rows.Scan(&m.ID, &createdAt, &m.DocumentCount); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at %q: %w", m.ID, createdAt, err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// DeleteRun removes a run and all its rows.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}
