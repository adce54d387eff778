// Package params coerces tool call arguments out of their JSON-decoded
// map form. Model-produced arguments are loosely typed, numbers arrive as
// float64 and occasionally as strings.
package params

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the string argument for key, or def when absent or empty.
func String(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the integer argument for key, or def when absent or not
// convertible.
func Int(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Float returns the numeric argument for key and whether it was present.
func Float(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// BBox parses a bounding box argument given either as the string
// "min_lon,min_lat,max_lon,max_lat" or as an array of four numbers.
// A missing argument returns (nil, nil).
func BBox(args map[string]any, key string) (*[4]float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var box [4]float64
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("bbox must have 4 values (min_lon,min_lat,max_lon,max_lat)")
		}
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid bbox value %q", p)
			}
			box[i] = f
		}
	case []any:
		if len(v) != 4 {
			return nil, fmt.Errorf("bbox must have 4 values (min_lon,min_lat,max_lon,max_lat)")
		}
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("invalid bbox value %v", e)
			}
			box[i] = f
		}
	default:
		return nil, fmt.Errorf("bbox must be a string or an array of numbers")
	}
	return &box, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
