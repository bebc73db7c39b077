// Package query implements the row selection shared by the load catalog and the call log:
// AND-combined per-field predicates in either substring or exact mode.
package query

import (
	"strconv"
	"strings"
)

// Row is anything that can expose named fields as strings.
// ok is false when the row has no such field.
type Row interface {
	Lookup(field string) (value string, ok bool)
}

// Mode selects the predicate applied to every filter.
type Mode int

const (
	// Substring keeps a row when the field contains the value, ignoring case.
	Substring Mode = iota
	// Exact keeps a row when the field equals the value.
	Exact
)

func (m Mode) String() string {
	switch m {
	case Substring:
		return "substring"
	case Exact:
		return "exact"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Filter is a single field predicate.
type Filter struct {
	Field string
	Value string
}

// Bool builds an exact filter for a boolean field from a raw query parameter.
// "true" in any case means true; every other value means false.
func Bool(field, raw string) Filter {
	return Filter{Field: field, Value: strconv.FormatBool(strings.EqualFold(raw, "true"))}
}

// FromMap turns a field->value map into filters, ordered by the given column list.
// Keys that are not listed are dropped.
func FromMap(values map[string]string, columns []string) []Filter {
	filters := make([]Filter, 0, len(values))
	for _, col := range columns {
		if v, ok := values[col]; ok {
			filters = append(filters, Filter{Field: col, Value: v})
		}
	}
	return filters
}

// Select returns the rows matching every filter, preserving input order.
// Filters naming a field the row does not expose are ignored. Without filters every row matches.
func Select[T Row](rows []T, mode Mode, filters ...Filter) []T {
	match := predicate(mode)
	if mode == Substring {
		lowered := make([]Filter, len(filters))
		for i, f := range filters {
			lowered[i] = Filter{Field: f.Field, Value: strings.ToLower(f.Value)}
		}
		filters = lowered
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, filters, match) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row Row, filters []Filter, match func(value, want string) bool) bool {
	for _, f := range filters {
		value, ok := row.Lookup(f.Field)
		if !ok {
			continue
		}
		if !match(value, f.Value) {
			return false
		}
	}
	return true
}

func predicate(mode Mode) func(value, want string) bool {
	if mode == Substring {
		return func(value, want string) bool {
			return strings.Contains(strings.ToLower(value), want)
		}
	}
	return func(value, want string) bool {
		return value == want
	}
}
