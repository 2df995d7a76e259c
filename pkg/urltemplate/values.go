package urltemplate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Stringify renders a parameter value as a path or query token. The second
// return value is false for values that count as unset (nil, empty strings,
// NaN) so callers never emit "undefined"/"null"-style tokens.
func Stringify(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, typed != ""
	case *string:
		if typed == nil {
			return "", false
		}
		return *typed, *typed != ""
	case json.Number:
		return typed.String(), typed != ""
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int8:
		return strconv.FormatInt(int64(typed), 10), true
	case int16:
		return strconv.FormatInt(int64(typed), 10), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case uint:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint8:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint16:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint32:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case float32:
		return formatFloat(float64(typed), 32)
	case float64:
		return formatFloat(typed, 64)
	case fmt.Stringer:
		out := typed.String()
		return out, out != ""
	default:
		return "", false
	}
}

func formatFloat(value float64, bits int) (string, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", false
	}
	return strconv.FormatFloat(value, 'f', -1, bits), true
}

// StringifyAll converts a parameter bag, dropping unset values.
func StringifyAll(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		if rendered, ok := Stringify(value); ok {
			out[key] = rendered
		}
	}
	return out
}
