package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// CanonicalText renders a cell value in a stable, locale-independent text
// form. The same rendering feeds pattern matching and serialization, so a
// value matches exactly what ends up on disk.
//
// Rules:
//   - Common types are converted without fmt.Sprint for speed.
//   - Floats use strconv 'g' formatting, ints base 10, bools "true"/"false".
//   - time.Time values are encoded as RFC3339Nano in UTC.
//   - nil renders as the empty string; callers that must distinguish null
//     from "" check for nil first.
func CanonicalText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""

	case string:
		return t

	case []byte:
		return string(t)

	case bool:
		if t {
			return "true"
		}
		return "false"

	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)

	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)

	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)

	case time.Time:
		tt := t
		if !tt.IsZero() {
			tt = tt.UTC()
		}
		return tt.Format(time.RFC3339Nano)

	case fmt.Stringer:
		return t.String()

	default:
		// Fallback: stable-ish representation
		return fmt.Sprint(t)
	}
}
