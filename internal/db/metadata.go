package db

import (
	"database/sql"
	"time"

	"pagepack/internal/pack"
)

// GetPageMetadata reads the stored validator record for one page.
// Returns (nil, nil) when no row exists.
func (d *DB) GetPageMetadata(domain, url string) (*pack.PageMetadata, error) {
	var m pack.PageMetadata
	var packHash, etag, lastModified, textHash sql.NullString
	var lastChecked sql.NullFloat64

	err := d.sql.QueryRow(`
		SELECT pack_hash, etag, last_modified, text_hash, last_checked_at, updated_at
		FROM metadata_store
		WHERE domain = ? AND url = ?
	`, domain, url).Scan(&packHash, &etag, &lastModified, &textHash, &lastChecked, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m.Domain = domain
	m.URL = url
	m.PackHash = packHash.String
	m.ETag = etag.String
	m.LastModified = lastModified.String
	m.TextHash = textHash.String
	m.LastCheckedAt = lastChecked.Float64
	return &m, nil
}

// UpsertPageMetadata inserts or wholly replaces the validator record for one
// page. updated_at is set server-side at write time.
func (d *DB) UpsertPageMetadata(domain, url, packHash, etag, lastModified, textHash string, lastCheckedAt float64) error {
	now := float64(time.Now().UnixNano()) / 1e9
	_, err := d.sql.Exec(`
		INSERT INTO metadata_store (
			domain, url, pack_hash, etag, last_modified, text_hash, last_checked_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain, url) DO UPDATE SET
			pack_hash = excluded.pack_hash,
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			text_hash = excluded.text_hash,
			last_checked_at = excluded.last_checked_at,
			updated_at = excluded.updated_at
	`, domain, url, nullable(packHash), nullable(etag), nullable(lastModified), nullable(textHash), lastCheckedAt, now)
	return err
}

// nullable maps the empty string to a NULL column value.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
