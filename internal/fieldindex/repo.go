package fieldindex

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/dagaz/internal/models"
)

// UpsertPage inserts or replaces one page record.
func (db *DB) UpsertPage(rec models.PageRecord) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("fieldindex: marshal fields: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO pages (path, title, checksum, fields, completed, uncompleted, words, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			fields      = excluded.fields,
			completed   = excluded.completed,
			uncompleted = excluded.uncompleted,
			words       = excluded.words,
			updated_at  = excluded.updated_at
	`, rec.Path, rec.Title, rec.Checksum, string(fieldsJSON), rec.Completed, rec.Uncompleted, rec.Words, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fieldindex: upsert page: %w", err)
	}
	return nil
}

// DeletePage removes a page record.
func (db *DB) DeletePage(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("fieldindex: delete page: %w", err)
	}
	return nil
}

// Page returns the record for path, or nil when the page is not indexed.
func (db *DB) Page(path string) (*models.PageRecord, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, checksum, fields, completed, uncompleted, words, updated_at
		FROM pages WHERE path = ?
	`, path)
	rec, err := scanPageRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fieldindex: get page: %w", err)
	}
	return &rec, nil
}

// PagesUnder returns every record whose path starts with prefix, ordered
// by path.
func (db *DB) PagesUnder(prefix string) ([]models.PageRecord, error) {
	rows, err := db.conn.Query(`
		SELECT path, title, checksum, fields, completed, uncompleted, words, updated_at
		FROM pages WHERE path LIKE ? || '%' ORDER BY path
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("fieldindex: pages under: %w", err)
	}
	defer rows.Close()

	var out []models.PageRecord
	for rows.Next() {
		rec, err := scanPageRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("fieldindex: scan page: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed page.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("fieldindex: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanPageRow(scan func(dest ...any) error) (models.PageRecord, error) {
	var rec models.PageRecord
	var fieldsJSON string
	if err := scan(&rec.Path, &rec.Title, &rec.Checksum, &fieldsJSON, &rec.Completed, &rec.Uncompleted, &rec.Words, &rec.UpdatedAt); err != nil {
		return models.PageRecord{}, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return models.PageRecord{}, fmt.Errorf("decode fields: %w", err)
	}
	return rec, nil
}
