package config

import "encoding/json"

// Options holds the per-request knobs accepted by the /scrape endpoint.
type Options struct {
	RateLimitMS   int  `json:"rate_limit_ms"`   // inter-fetch delay inside a rebuild
	TimeoutS      int  `json:"timeout_s"`       // per-request HTTP timeout
	ForceRefresh  bool `json:"force_refresh"`   // bypass the cache-hit short-circuit
	ClientHasPack bool `json:"client_has_pack"` // client already holds the pack body
}

// Default returns Options with the documented defaults.
func Default() Options {
	return Options{
		RateLimitMS: 0,
		TimeoutS:    30,
	}
}

// DecodeOptions coerces the loosely typed JSON options bag into Options.
// Unknown keys are ignored; wrong-typed or out-of-range values keep the default.
func DecodeOptions(raw map[string]interface{}) Options {
	o := Default()
	if raw == nil {
		return o
	}
	if n, ok := intValue(raw["rate_limit_ms"]); ok && n >= 0 {
		o.RateLimitMS = n
	}
	if n, ok := intValue(raw["timeout_s"]); ok && n >= 1 {
		o.TimeoutS = n
	}
	if b, ok := raw["force_refresh"].(bool); ok {
		o.ForceRefresh = b
	}
	if b, ok := raw["client_has_pack"].(bool); ok {
		o.ClientHasPack = b
	}
	return o
}

// intValue accepts the numeric shapes a decoded JSON body can produce.
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
