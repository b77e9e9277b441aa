package pack

import "time"

// Page is one normalized page inside a weekly pack. Optional validators use
// the empty string for absence, mirroring their NULL columns in the store.
type Page struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	NormalizedText string  `json:"normalized_text"`
	TextHash       string  `json:"text_hash"`
	ETag           string  `json:"etag,omitempty"`
	LastModified   string  `json:"last_modified,omitempty"`
	FetchedAt      float64 `json:"fetched_at"`
}

// Pack is the domain-scoped weekly snapshot stored in the pack store.
type Pack struct {
	Domain    string  `json:"domain"`
	Pages     []Page  `json:"pages"`
	PackHash  string  `json:"pack_hash"`
	FetchedAt float64 `json:"fetched_at"`
	ExpiresAt float64 `json:"expires_at"`
}

// PageRequest is one page entry from the client, with optional prior validators.
// LastChecked is accepted on the wire but carries no server-side semantics.
type PageRequest struct {
	URL          string  `json:"url"`
	ETag         string  `json:"etag,omitempty"`
	LastModified string  `json:"last_modified,omitempty"`
	LastTextHash string  `json:"last_text_hash,omitempty"`
	LastChecked  float64 `json:"last_checked,omitempty"`
}

// PageMetadata is the durable per-(domain,url) validator record.
type PageMetadata struct {
	Domain        string
	URL           string
	PackHash      string
	ETag          string
	LastModified  string
	TextHash      string
	LastCheckedAt float64
	UpdatedAt     float64
}

// PageError reports a per-page (or per-domain, for lock timeouts) failure.
type PageError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// MetadataStore persists page validators across pack expiries.
type MetadataStore interface {
	GetPageMetadata(domain, url string) (*PageMetadata, error)
	UpsertPageMetadata(domain, url, packHash, etag, lastModified, textHash string, lastCheckedAt float64) error
}

// PackStore persists weekly packs and hosts the domain rebuild lock.
type PackStore interface {
	PurgeExpiredPacks(now float64) error
	GetPack(domain string) (*Pack, error)
	SavePack(domain string, pages []Page, packHash string, fetchedAt, expiresAt float64) error
	AcquireDomainLock(domain string, timeout, poll time.Duration) (bool, error)
	ReleaseDomainLock(domain string) error
}

// NowSeconds returns the wall clock as float seconds since the epoch,
// the timestamp format shared by the stores and the wire schema.
func NowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
