package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pagepack/internal/pack"
)

// PurgeExpiredPacks deletes every pack whose expires_at is before now.
func (d *DB) PurgeExpiredPacks(now float64) error {
	_, err := d.sql.Exec(`DELETE FROM pack_store WHERE expires_at < ?`, now)
	return err
}

// GetPack loads the cached weekly pack for domain, or (nil, nil) when absent.
func (d *DB) GetPack(domain string) (*pack.Pack, error) {
	var p pack.Pack
	var packJSON string

	err := d.sql.QueryRow(`
		SELECT domain, pack_json, pack_hash, fetched_at, expires_at
		FROM pack_store
		WHERE domain = ?
	`, domain).Scan(&p.Domain, &packJSON, &p.PackHash, &p.FetchedAt, &p.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(packJSON), &p.Pages); err != nil {
		return nil, fmt.Errorf("decode pack %s: %w", domain, err)
	}
	return &p, nil
}

// SavePack inserts or replaces the weekly pack snapshot for domain.
func (d *DB) SavePack(domain string, pages []pack.Page, packHash string, fetchedAt, expiresAt float64) error {
	payload, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("encode pack %s: %w", domain, err)
	}
	_, err = d.sql.Exec(`
		INSERT INTO pack_store (domain, pack_json, pack_hash, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			pack_json = excluded.pack_json,
			pack_hash = excluded.pack_hash,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, domain, string(payload), packHash, fetchedAt, expiresAt)
	return err
}

// AcquireDomainLock tries to insert the lock row for domain, polling until
// timeout elapses. Returns false when another holder kept the row the whole
// time; errors are real store failures, not contention.
func (d *DB) AcquireDomainLock(domain string, timeout, poll time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		res, err := d.sql.Exec(`INSERT OR IGNORE INTO domain_lock (domain, locked_at) VALUES (?, ?)`,
			domain, float64(time.Now().UnixNano())/1e9)
		if err != nil {
			return false, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(poll)
	}
}

// ReleaseDomainLock deletes the lock row. Idempotent.
func (d *DB) ReleaseDomainLock(domain string) error {
	_, err := d.sql.Exec(`DELETE FROM domain_lock WHERE domain = ?`, domain)
	return err
}
