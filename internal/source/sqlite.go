package source

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/graphs"
)

// DB is a graph stored in SQLite: a nodes table, an edges table and a node_data table
// holding tooltip fields.
type DB struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		size REAL NOT NULL DEFAULT 0,
		x REAL,
		y REAL
	);

	CREATE TABLE IF NOT EXISTS edges (
		id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		weight REAL NOT NULL DEFAULT 0,
		directed INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS node_data (
		node_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (node_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
`

// OpenDB opens or creates a graph database at path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Nodes returns every node in insertion order. A node gets a fixed position when both
// x and y are set.
func (d *DB) Nodes(ctx context.Context) ([]graph.Node, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, label, type, size, x, y FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var nodes []graph.Node
	index := map[string]int{}
	for rows.Next() {
		var n graph.Node
		var x, y sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Label, &n.Type, &n.Size, &x, &y); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		if x.Valid && y.Valid {
			n.Fixed = &graph.Point{X: x.Float64, Y: y.Float64}
		}
		index[n.ID] = len(nodes)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	data, err := d.db.QueryContext(ctx, `SELECT node_id, key, value FROM node_data`)
	if err != nil {
		return nil, fmt.Errorf("querying node data: %w", err)
	}
	defer data.Close()
	for data.Next() {
		var id, key, value string
		if err := data.Scan(&id, &key, &value); err != nil {
			return nil, fmt.Errorf("scanning node data: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if nodes[i].Data == nil {
			nodes[i].Data = map[string]string{}
		}
		nodes[i].Data[key] = value
	}
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("iterating node data: %w", err)
	}
	return nodes, nil
}

// Edges returns every edge in insertion order. Endpoints are not checked here, the
// normalizer drops dangling edges.
func (d *DB) Edges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, source, target, type, weight, directed, label FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Type, &e.Weight, &e.Directed, &e.Label); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}

// Replace swaps the stored graph for nodes and edges in one transaction.
func (d *DB) Replace(ctx context.Context, nodes []graph.Node, edges []graph.Edge) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"nodes", "edges", "node_data"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (id, label, type, size, x, y) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing node insert: %w", err)
	}
	defer nodeStmt.Close()
	dataStmt, err := tx.PrepareContext(ctx, `INSERT INTO node_data (node_id, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing node data insert: %w", err)
	}
	defer dataStmt.Close()

	for _, n := range nodes {
		var x, y sql.NullFloat64
		if n.Fixed != nil {
			x = sql.NullFloat64{Float64: n.Fixed.X, Valid: true}
			y = sql.NullFloat64{Float64: n.Fixed.Y, Valid: true}
		}
		if _, err = nodeStmt.ExecContext(ctx, n.ID, n.Label, n.Type, n.Size, x, y); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
		for k, v := range n.Data {
			if _, err = dataStmt.ExecContext(ctx, n.ID, k, v); err != nil {
				return fmt.Errorf("inserting data for node %s: %w", n.ID, err)
			}
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (id, source, target, type, weight, directed, label) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()
	for _, e := range edges {
		if _, err = edgeStmt.ExecContext(ctx, e.ID, e.Source, e.Target, e.Type, e.Weight, e.Directed, e.Label); err != nil {
			return fmt.Errorf("inserting edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// LoadSQLite reads a graph database as a one-visualization document.
func LoadSQLite(ctx context.Context, path string) (*Document, error) {
	d, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	nodes, err := d.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := d.Edges(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Document{
		Title: title,
		Visualizations: []Visualization{{
			Kind:  string(graphs.Network),
			Title: title,
			Nodes: nodes,
			Edges: edges,
		}},
	}, nil
}
