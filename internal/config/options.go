package config

import "strconv"

// Options is a loosely-typed option bag for parser configuration.
//
// Parsers read their knobs through the typed accessors below; unknown or
// mistyped entries fall back to the provided default rather than failing,
// which keeps option handling forgiving at the edges of the system.
type Options map[string]any

// Bool returns the named option as a bool, or def.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b
		}
	}
	return def
}

// String returns the named option as a string, or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Int returns the named option as an int, or def.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}

// Rune returns the first rune of the named string option, or def.
// Useful for single-character knobs like a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	s := o.String(key, "")
	if s == "" {
		return def
	}
	return []rune(s)[0]
}
