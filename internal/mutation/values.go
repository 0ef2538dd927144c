// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mutation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func asString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

// asInt accepts JSON numbers and numeric strings. Fractions are truncated,
// like a browser number input parsed with parseInt.
func asInt(v any) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("expected number, got %v", v)
		}
		return int(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	case string:
		s := strings.TrimSpace(v)
		if i := strings.IndexAny(s, ".,"); i >= 0 {
			s = s[:i]
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func asFloat(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("expected number, got %v", v)
		}
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func asBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

// coerce converts a decoded JSON value (map, slice) or an already typed
// value into T by re-encoding it.
func coerce[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}
