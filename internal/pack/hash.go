package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"time"
)

// StableHash fingerprints a pack from its (url, text_hash) pairs only.
// Volatile fields (fetched_at, headers, title) never contribute, so two
// packs with identical content hash identically regardless of page order.
func StableHash(pages []Page) string {
	rows := make([][2]string, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, [2]string{p.URL, p.TextHash})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][1] < rows[j][1]
	})
	payload, _ := json.Marshal(rows)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// NextSundayExpiry returns the next Sunday 23:59:59 in local time strictly
// after now, as float seconds since the epoch.
func NextSundayExpiry(now float64) float64 {
	sec := int64(math.Floor(now))
	t := time.Unix(sec, int64((now-float64(sec))*1e9))
	days := (7 - int(t.Weekday())) % 7
	sunday := time.Date(t.Year(), t.Month(), t.Day()+days, 23, 59, 59, 0, t.Location())
	if float64(sunday.Unix()) <= now {
		sunday = sunday.AddDate(0, 0, 7)
	}
	return float64(sunday.Unix())
}
