// Package usage implements the vendor response parsers, the severity
// classifier and the status-transition engine.
package usage

import "strconv"

// asObject narrows a decoded JSON value to an object.
func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// getAny returns the first present value among keys.
func getAny(obj map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// toNumber coerces a decoded JSON value to a finite float64. Numeric
// strings are accepted because some vendor payloads quote numbers.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// getNumber looks up the first present key and coerces it to a number.
func getNumber(obj map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if n, ok := toNumber(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// getBool looks up the first present boolean among keys.
func getBool(obj map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if b, ok := v.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

// getString looks up the first present non-empty string among keys.
func getString(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
