package ledger

import (
	"strconv"
	"unicode/utf8"
)

// Move struct fields arrive as loosely typed JSON: u64 values are strings,
// vector<u8> may be a number array. Missing fields decode to zero values.

func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case []any:
		b := make([]byte, 0, len(v))
		for _, e := range v {
			n, ok := e.(float64)
			if !ok || n < 0 || n > 255 {
				return ""
			}
			b = append(b, byte(n))
		}
		if !utf8.Valid(b) {
			return ""
		}
		return string(b)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func fieldBool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func fieldInt64(fields map[string]any, key string) int64 {
	switch v := fields[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
