package entity

import (
	"fmt"
	"strings"
)

// Filter is an attribute equality test added to incident queries.
type Filter struct {
	Attribute string
	Value     string
}

// ParseFilter parses "attribute=value". Only the first '=' separates the two.
func ParseFilter(s string) (Filter, error) {
	attr, value, ok := strings.Cut(s, "=")
	attr = strings.TrimSpace(attr)
	if !ok || attr == "" {
		return Filter{}, fmt.Errorf("filter %q: want attribute=value: %w", s, ErrInvalidFilter)
	}
	if strings.ContainsAny(attr, " '\"`()") {
		return Filter{}, fmt.Errorf("filter %q: attribute name: %w", s, ErrInvalidFilter)
	}
	return Filter{Attribute: attr, Value: strings.TrimSpace(value)}, nil
}

// ParseFilters parses every raw filter, stopping at the first invalid one.
func ParseFilters(raw []string) ([]Filter, error) {
	filters := make([]Filter, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		f, err := ParseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
