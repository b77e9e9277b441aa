package config

import "testing"

func TestDefault(t *testing.T) {
	o := Default()
	if o.RateLimitMS != 0 || o.TimeoutS != 30 || o.ForceRefresh || o.ClientHasPack {
		t.Errorf("Default() = %+v", o)
	}
}

func TestDecodeOptions_NilAndEmpty(t *testing.T) {
	if o := DecodeOptions(nil); o != Default() {
		t.Errorf("DecodeOptions(nil) = %+v", o)
	}
	if o := DecodeOptions(map[string]interface{}{}); o != Default() {
		t.Errorf("DecodeOptions(empty) = %+v", o)
	}
}

func TestDecodeOptions_FullSet(t *testing.T) {
	// JSON numbers decode as float64.
	o := DecodeOptions(map[string]interface{}{
		"rate_limit_ms":   float64(250),
		"timeout_s":       float64(5),
		"force_refresh":   true,
		"client_has_pack": true,
	})
	if o.RateLimitMS != 250 || o.TimeoutS != 5 || !o.ForceRefresh || !o.ClientHasPack {
		t.Errorf("DecodeOptions = %+v", o)
	}
}

func TestDecodeOptions_WrongTypesFallBack(t *testing.T) {
	o := DecodeOptions(map[string]interface{}{
		"rate_limit_ms":   "fast",
		"timeout_s":       true,
		"force_refresh":   "yes",
		"client_has_pack": float64(1),
	})
	if o != Default() {
		t.Errorf("wrong-typed keys changed options: %+v", o)
	}
}

func TestDecodeOptions_OutOfRangeKeepsDefault(t *testing.T) {
	o := DecodeOptions(map[string]interface{}{
		"rate_limit_ms": float64(-5),
		"timeout_s":     float64(0),
	})
	if o.RateLimitMS != 0 || o.TimeoutS != 30 {
		t.Errorf("out-of-range values accepted: %+v", o)
	}
}

func TestDecodeOptions_UnknownKeysIgnored(t *testing.T) {
	o := DecodeOptions(map[string]interface{}{
		"mode":      "fetch_if_changed",
		"max_depth": float64(3),
	})
	if o != Default() {
		t.Errorf("unknown keys changed options: %+v", o)
	}
}
