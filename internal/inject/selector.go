package inject

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownColumnsError reports every configured column that is missing from
// the dataset schema. Collecting all offenders (instead of failing on the
// first) gives the caller one actionable message per bad invocation.
type UnknownColumnsError struct {
	Names []string
}

func (e *UnknownColumnsError) Error() string {
	return fmt.Sprintf("unknown columns: %s", strings.Join(e.Names, ", "))
}

// ResolveColumns maps the configured allow-list onto the schema and returns
// the set of eligible column indexes.
//
// Behavior:
//   - configured == nil selects every column.
//   - Every configured name must exist in schema; otherwise an
//     *UnknownColumnsError naming all missing columns is returned.
//   - Duplicate configured names collapse to one index.
func ResolveColumns(schema []string, configured []string) (map[int]struct{}, error) {
	eligible := make(map[int]struct{}, len(schema))

	if configured == nil {
		for i := range schema {
			eligible[i] = struct{}{}
		}
		return eligible, nil
	}

	byName := make(map[string]int, len(schema))
	for i, c := range schema {
		byName[c] = i
	}

	var missing []string
	for _, name := range configured {
		ix, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		eligible[ix] = struct{}{}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnknownColumnsError{Names: missing}
	}
	return eligible, nil
}
