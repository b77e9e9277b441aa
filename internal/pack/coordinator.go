package pack

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"pagepack/internal/config"
	"pagepack/internal/fetch"
	"pagepack/internal/logger"
)

// Domain rebuild lock bounds. The lock is a row in the shared store, so it
// serializes rebuilds across processes, not just goroutines.
const (
	lockTimeout = 15 * time.Second
	lockPoll    = 100 * time.Millisecond
)

const lockTimeoutMsg = "Timed out waiting for domain rebuild lock"

// Coordinator builds weekly packs on demand, short-circuiting on the shared
// cache and serializing rebuilds per domain.
type Coordinator struct {
	meta    MetadataStore
	packs   PackStore
	fetcher *fetch.Client
	group   singleflight.Group
}

// New creates a Coordinator over the given stores and fetcher.
func New(meta MetadataStore, packs PackStore, fetcher *fetch.Client) *Coordinator {
	return &Coordinator{meta: meta, packs: packs, fetcher: fetcher}
}

// BuildResult is the outcome of one BuildOrFetchPack call.
type BuildResult struct {
	CacheHit      bool
	Pages         []Page
	UnchangedURLs []string
	Errors        []PageError
}

func cacheHitResult(p *Pack) *BuildResult {
	pages := p.Pages
	if pages == nil {
		pages = []Page{}
	}
	return &BuildResult{
		CacheHit:      true,
		Pages:         pages,
		UnchangedURLs: []string{},
		Errors:        []PageError{},
	}
}

// BuildOrFetchPack returns the live pack for domain, or rebuilds it from the
// given pages. Per-page fetch failures are collected in the result; only
// store I/O errors are returned as a top-level error.
func (c *Coordinator) BuildOrFetchPack(ctx context.Context, domain string, pages []PageRequest, opts config.Options) (*BuildResult, error) {
	now := NowSeconds()

	if err := c.packs.PurgeExpiredPacks(now); err != nil {
		return nil, fmt.Errorf("purge expired packs: %w", err)
	}

	if !opts.ForceRefresh {
		cached, err := c.packs.GetPack(domain)
		if err != nil {
			return nil, fmt.Errorf("get pack %s: %w", domain, err)
		}
		if cached != nil {
			return cacheHitResult(cached), nil
		}
	}

	// force_refresh must reach origin itself; only the row lock serializes it.
	if opts.ForceRefresh {
		return c.rebuild(ctx, domain, pages, opts, now)
	}

	// Coalesce concurrent same-domain rebuilds in-process. The caller that
	// ran the rebuild keeps its own result (it carries that caller's
	// per-page errors and unchanged URLs); waiters got a result built from
	// someone else's page list, so they re-read the freshly saved pack
	// instead of returning it directly.
	executed := false
	v, err, _ := c.group.Do(domain, func() (interface{}, error) {
		executed = true
		return c.rebuild(ctx, domain, pages, opts, now)
	})
	if err != nil {
		return nil, err
	}
	if executed {
		return v.(*BuildResult), nil
	}

	cached, err := c.packs.GetPack(domain)
	if err != nil {
		return nil, fmt.Errorf("get pack %s: %w", domain, err)
	}
	if cached != nil {
		return cacheHitResult(cached), nil
	}
	return c.rebuild(ctx, domain, pages, opts, NowSeconds())
}

// rebuild runs the full fetch pipeline under the domain lock.
func (c *Coordinator) rebuild(ctx context.Context, domain string, pages []PageRequest, opts config.Options, now float64) (*BuildResult, error) {
	acquired, err := c.packs.AcquireDomainLock(domain, lockTimeout, lockPoll)
	if err != nil {
		return nil, fmt.Errorf("acquire domain lock %s: %w", domain, err)
	}
	if !acquired {
		return &BuildResult{
			Pages:         []Page{},
			UnchangedURLs: []string{},
			Errors:        []PageError{{URL: domain, Error: lockTimeoutMsg}},
		}, nil
	}
	defer func() {
		if err := c.packs.ReleaseDomainLock(domain); err != nil {
			logger.Warn("Pack", fmt.Sprintf("Release lock %s: %v", domain, err))
		}
	}()

	// Another request may have rebuilt while we waited for the lock.
	if !opts.ForceRefresh {
		cached, err := c.packs.GetPack(domain)
		if err != nil {
			return nil, fmt.Errorf("get pack %s: %w", domain, err)
		}
		if cached != nil {
			return cacheHitResult(cached), nil
		}
	}

	timeout := time.Duration(opts.TimeoutS) * time.Second
	packPages := []Page{}
	unchanged := []string{}
	pageErrors := []PageError{}
	shouldSavePack := !opts.ClientHasPack

	for i, pr := range pages {
		if i > 0 && opts.RateLimitMS > 0 {
			time.Sleep(time.Duration(opts.RateLimitMS) * time.Millisecond)
		}

		meta, err := c.meta.GetPageMetadata(domain, pr.URL)
		if err != nil {
			return nil, fmt.Errorf("get metadata %s: %w", pr.URL, err)
		}
		etag, lastModified, priorTextHash := mergeValidators(meta, pr)

		res, ferr := c.fetcher.Fetch(ctx, pr.URL, etag, lastModified, timeout)
		if ferr != nil {
			pageErrors = append(pageErrors, PageError{URL: pr.URL, Error: ferr.Error()})
			continue
		}

		originConfirmed := false
		if res.NotModified {
			originConfirmed = true
			unchanged = append(unchanged, pr.URL)
			priorPackHash := ""
			if meta != nil {
				priorPackHash = meta.PackHash
			}
			if err := c.meta.UpsertPageMetadata(domain, pr.URL, priorPackHash, etag, lastModified, priorTextHash, now); err != nil {
				return nil, fmt.Errorf("upsert metadata %s: %w", pr.URL, err)
			}
			// A client that already holds the pack body needs no content.
			if opts.ClientHasPack {
				shouldSavePack = false
				continue
			}
			// The shared weekly pack is missing, so fetch the body anyway.
			res, ferr = c.fetcher.Fetch(ctx, pr.URL, "", "", timeout)
			if ferr != nil {
				pageErrors = append(pageErrors, PageError{URL: pr.URL, Error: ferr.Error()})
				continue
			}
		}

		title, text, err := fetch.Extract(res.Body)
		if err != nil {
			pageErrors = append(pageErrors, PageError{URL: pr.URL, Error: err.Error()})
			continue
		}
		textHash := fetch.HashText(text)
		fetchedAt := NowSeconds()

		// Origin may not send 304 even when content is stable. Pages already
		// recorded via a confirmed 304 are not appended a second time.
		if !originConfirmed && priorTextHash != "" && priorTextHash == textHash {
			unchanged = append(unchanged, pr.URL)
		}

		packPages = append(packPages, Page{
			URL:            pr.URL,
			Title:          title,
			NormalizedText: text,
			TextHash:       textHash,
			ETag:           res.ETag,
			LastModified:   res.LastModified,
			FetchedAt:      fetchedAt,
		})
	}

	packHash := StableHash(packPages)
	expiresAt := NextSundayExpiry(now)

	for _, p := range packPages {
		if err := c.meta.UpsertPageMetadata(domain, p.URL, packHash, p.ETag, p.LastModified, p.TextHash, now); err != nil {
			return nil, fmt.Errorf("upsert metadata %s: %w", p.URL, err)
		}
	}

	if shouldSavePack && len(packPages) > 0 {
		if err := c.packs.SavePack(domain, packPages, packHash, now, expiresAt); err != nil {
			return nil, fmt.Errorf("save pack %s: %w", domain, err)
		}
		logger.Info("Pack", fmt.Sprintf("Saved %s (%d pages, hash %.12s)", domain, len(packPages), packHash))
	}

	return &BuildResult{
		Pages:         packPages,
		UnchangedURLs: unchanged,
		Errors:        pageErrors,
	}, nil
}

// mergeValidators combines client hints with stored metadata, field by field.
// The client-supplied value wins when present.
func mergeValidators(meta *PageMetadata, pr PageRequest) (etag, lastModified, textHash string) {
	etag = pr.ETag
	lastModified = pr.LastModified
	textHash = pr.LastTextHash
	if meta != nil {
		if etag == "" {
			etag = meta.ETag
		}
		if lastModified == "" {
			lastModified = meta.LastModified
		}
		if textHash == "" {
			textHash = meta.TextHash
		}
	}
	return etag, lastModified, textHash
}
