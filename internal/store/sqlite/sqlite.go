// Package sqlite persists diagram snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

// DocumentInfo describes a stored document.
type DocumentInfo struct {
	ID          string    `json:"id"`
	Revision    int64     `json:"revision"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store keeps the latest snapshot of every saved document.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// In-memory databases exist per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		revision INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		document_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		attributes JSON NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		width REAL NOT NULL,
		height REAL NOT NULL,
		source_order JSON NOT NULL DEFAULT '[]',
		target_order JSON NOT NULL DEFAULT '[]',
		PRIMARY KEY (document_id, id),
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS connections (
		document_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		source_id TEXT,
		target_id TEXT,
		bendpoints JSON NOT NULL,
		attributes JSON NOT NULL,
		PRIMARY KEY (document_id, id),
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_seq ON nodes(document_id, seq);
	CREATE INDEX IF NOT EXISTS idx_connections_seq ON connections(document_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot of snap.ID and returns the new revision.
func (s *Store) Save(ctx context.Context, snap *diagram.Snapshot) (int64, error) {
	if snap == nil || snap.ID == "" {
		return 0, diagram.Errorf(diagram.KindInvalidOperation, "snapshot without document id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (id, revision, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET revision = revision + 1, updated_at = excluded.updated_at
		RETURNING revision
	`, snap.ID, s.now().UTC().Format(time.RFC3339Nano)).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert document: %w", err)
	}

	for _, table := range []string{"nodes", "connections"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE document_id = ?", snap.ID); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (document_id, seq, id, kind, attributes, x, y, width, height, source_order, target_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()
	for i, n := range snap.Nodes {
		attrs, err := marshalJSON(n.Attributes.Clone())
		if err != nil {
			return 0, fmt.Errorf("node %s attributes: %w", n.ID, err)
		}
		sources, err := marshalIDs(n.Sources)
		if err != nil {
			return 0, fmt.Errorf("node %s sources: %w", n.ID, err)
		}
		targets, err := marshalIDs(n.Targets)
		if err != nil {
			return 0, fmt.Errorf("node %s targets: %w", n.ID, err)
		}
		b := n.Bounds
		if _, err := nodeStmt.ExecContext(ctx, snap.ID, i, string(n.ID), n.Kind, attrs,
			b.X, b.Y, b.Width, b.Height, sources, targets); err != nil {
			return 0, fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}

	connStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO connections (document_id, seq, id, source_id, target_id, bendpoints, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare connection insert: %w", err)
	}
	defer connStmt.Close()
	for i, c := range snap.Connections {
		points := c.Bendpoints
		if points == nil {
			points = []diagram.Point{}
		}
		bendpoints, err := marshalJSON(points)
		if err != nil {
			return 0, fmt.Errorf("connection %s bendpoints: %w", c.ID, err)
		}
		attrs, err := marshalJSON(c.Attributes.Clone())
		if err != nil {
			return 0, fmt.Errorf("connection %s attributes: %w", c.ID, err)
		}
		if _, err := connStmt.ExecContext(ctx, snap.ID, i, string(c.ID),
			nullString(string(c.Source)), nullString(string(c.Target)), bendpoints, attrs); err != nil {
			return 0, fmt.Errorf("failed to insert connection %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return revision, nil
}

// Load returns the stored snapshot of document id.
func (s *Store) Load(ctx context.Context, id string) (*diagram.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, diagram.Errorf(diagram.KindNotFound, "stored document %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	snap := &diagram.Snapshot{ID: id, Nodes: []diagram.NodeState{}, Connections: []diagram.ConnectionState{}}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, kind, attributes, x, y, width, height, source_order, target_order
		FROM nodes WHERE document_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	for rows.Next() {
		var (
			n                      diagram.NodeState
			nid                    string
			attrs, sources, targets []byte
		)
		if err := rows.Scan(&nid, &n.Kind, &attrs, &n.Bounds.X, &n.Bounds.Y, &n.Bounds.Width, &n.Bounds.Height, &sources, &targets); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.ID = diagram.NodeID(nid)
		if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to unmarshal node %s attributes: %w", nid, err)
		}
		if n.Sources, err = unmarshalIDs(sources); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to unmarshal node %s sources: %w", nid, err)
		}
		if n.Targets, err = unmarshalIDs(targets); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to unmarshal node %s targets: %w", nid, err)
		}
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT id, source_id, target_id, bendpoints, attributes
		FROM connections WHERE document_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	for rows.Next() {
		var (
			c              diagram.ConnectionState
			cid            string
			source, target sql.NullString
			points, attrs  []byte
		)
		if err := rows.Scan(&cid, &source, &target, &points, &attrs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		c.ID = diagram.ConnID(cid)
		c.Source = diagram.NodeID(source.String)
		c.Target = diagram.NodeID(target.String)
		if err := json.Unmarshal(points, &c.Bendpoints); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to unmarshal connection %s bendpoints: %w", cid, err)
		}
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to unmarshal connection %s attributes: %w", cid, err)
		}
		snap.Connections = append(snap.Connections, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return snap, nil
}

// List describes every stored document, ordered by id.
func (s *Store) List(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.revision, d.updated_at,
			(SELECT COUNT(*) FROM nodes n WHERE n.document_id = d.id),
			(SELECT COUNT(*) FROM connections c WHERE c.document_id = d.id)
		FROM documents d ORDER BY d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	out := []DocumentInfo{}
	for rows.Next() {
		var (
			info    DocumentInfo
			updated string
		)
		if err := rows.Scan(&info.ID, &info.Revision, &updated, &info.Nodes, &info.Connections); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("document %s: bad updated_at %q: %w", info.ID, updated, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes document id with its nodes and connections.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return diagram.Errorf(diagram.KindNotFound, "stored document %s", id)
	}
	for _, table := range []string{"nodes", "connections"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE document_id = ?", id); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
