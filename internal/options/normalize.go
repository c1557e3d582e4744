package options

import (
	"regexp"
	"sort"
	"strings"

	"github.com/julianstephens/taskdash/internal/constants"
)

// NormalizeOption cleans a raw attribute value for display: surrounding
// whitespace is trimmed, one leading '#' or '@' is dropped and [[...]]
// reference brackets are unwrapped.
func NormalizeOption(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimPrefix(v, "@")
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[[") && strings.HasSuffix(v, "]]") && len(v) >= 4 {
		v = strings.TrimSpace(v[2 : len(v)-2])
	}
	return v
}

// normalizePage lowercases a page title and strips reference brackets for
// exclusion checks.
func normalizePage(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = strings.TrimPrefix(t, "[[")
	t = strings.TrimSuffix(t, "]]")
	return strings.TrimSpace(t)
}

// ExclusionPolicy decides which source pages may contribute options.
type ExclusionPolicy struct {
	// Enabled turns on the user page list. The namespace prefix always applies.
	Enabled bool
	Pages   []string
}

// Excludes reports whether options found on the page should be dropped.
func (p ExclusionPolicy) Excludes(pageTitle string) bool {
	page := normalizePage(pageTitle)
	if strings.HasPrefix(page, constants.DefaultExcludedPrefix) {
		return true
	}
	if !p.Enabled {
		return false
	}
	for _, excluded := range p.Pages {
		if normalizePage(excluded) == page {
			return true
		}
	}
	return false
}

// attributePattern matches "label:: value" at the start of any line.
func attributePattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*` + regexp.QuoteMeta(label) + `::\s*(.*)$`)
}

// collect dedupes values case-insensitively, keeping the first spelling, and
// sorts the result.
func collect(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
