package utils

import (
	"fmt"
	"strconv"
)

// CanonicalID converts an externally supplied identifier to its canonical
// string form. Every key stored or compared by the database layer must go
// through this so integer and string snowflakes never diverge.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		// YAML/JSON config loaders hand large numeric ids over as floats.
		return strconv.FormatInt(int64(id), 10)
	default:
		return fmt.Sprint(v)
	}
}
