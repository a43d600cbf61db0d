package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/go-vendor-backend/internal/domain"
)

// NormalizeTerm trims s and applies Unicode case folding, so that matching is
// case-insensitive beyond ASCII ("ÇAY" matches "çay").
func NormalizeTerm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful; build one per call.
	return cases.Fold().String(s)
}

// MenuMatches reports whether any available entry of menu has a name or
// description containing term as a substring. term must already be
// normalized with NormalizeTerm. An empty term matches nothing.
func MenuMatches(menu domain.MenuSnapshot, term string) bool {
	if term == "" {
		return false
	}
	for _, e := range menu {
		if !e.Available {
			continue
		}
		if strings.Contains(NormalizeTerm(e.Name), term) {
			return true
		}
		if e.Description != nil && strings.Contains(NormalizeTerm(*e.Description), term) {
			return true
		}
	}
	return false
}
