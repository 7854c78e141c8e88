// Package index keeps a searchable sqlite table of the links in every
// stored collection.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/bookmarkd/internal/bookmarks"

	_ "modernc.org/sqlite"
)

// Entry is one indexed link.
type Entry struct {
	CollectionID string     `json:"collection_id"`
	Position     int        `json:"position"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Path         string     `json:"path"`
	Added        *time.Time `json:"added,omitempty"`
}

// Index implements link search using SQLite
type Index struct {
	db *sql.DB
}

// Open opens or creates the index at path. An empty path keeps the index
// in memory for the lifetime of the process.
func Open(path string) (*Index, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if path == "" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS links (
			collection_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			path TEXT NOT NULL,
			added INTEGER,
			PRIMARY KEY (collection_id, position)
		);
		CREATE INDEX IF NOT EXISTS idx_links_url ON links(url);
		CREATE INDEX IF NOT EXISTS idx_links_path ON links(collection_id, path);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Replace drops the collection's rows and indexes every link under root in
// traversal order. Links without an assigned path are stored with an empty
// path.
func (idx *Index) Replace(ctx context.Context, collectionID string, root *bookmarks.Folder) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE collection_id = ?`, collectionID); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links (collection_id, position, title, url, path, added) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	pos := 0
	for l := range root.AllLinks() {
		path, _ := l.Path()
		var added sql.NullInt64
		if l.Added != nil {
			added = sql.NullInt64{Int64: l.Added.Unix(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, collectionID, pos, l.Title, l.URL, path, added); err != nil {
			return fmt.Errorf("insert link %d: %w", pos, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes every row of a collection.
func (idx *Index) Delete(ctx context.Context, collectionID string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM links WHERE collection_id = ?`, collectionID)
	return err
}

// Search matches query against titles and URLs, case-insensitively.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(query) + "%"
	return idx.query(ctx, `
		SELECT collection_id, position, title, url, path, added FROM links
		WHERE title LIKE ? ESCAPE '\' OR url LIKE ? ESCAPE '\'
		ORDER BY collection_id, position
		LIMIT ?`, pattern, pattern, limit)
}

// ByPath returns the links of a collection whose path is prefix or lies
// below it. Matching is case-sensitive: titles are not unique, so "Work"
// and "work" are distinct folders.
func (idx *Index) ByPath(ctx context.Context, collectionID, prefix string) ([]Entry, error) {
	prefix = strings.TrimSuffix(prefix, bookmarks.PathSeparator)
	below := prefix + bookmarks.PathSeparator
	return idx.query(ctx, `
		SELECT collection_id, position, title, url, path, added FROM links
		WHERE collection_id = ? AND (path = ? OR substr(path, 1, length(?)) = ?)
		ORDER BY position`, collectionID, prefix, below, below)
}

func (idx *Index) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := idx.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var added sql.NullInt64
		if err := rows.Scan(&e.CollectionID, &e.Position, &e.Title, &e.URL, &e.Path, &added); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if added.Valid {
			t := time.Unix(added.Int64, 0).UTC()
			e.Added = &t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
