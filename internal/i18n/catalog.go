// Package i18n resolves user-facing strings from a YAML label catalog.
package i18n

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/taskdash/internal/engine"
)

// Catalog is a nested string tree addressed by dotted paths.
type Catalog struct {
	root map[string]any
}

// Empty returns a catalog where every lookup falls back.
func Empty() *Catalog {
	return &Catalog{root: map[string]any{}}
}

// Parse reads a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	root := map[string]any{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing label catalog: %w", err)
	}
	if root == nil {
		root = map[string]any{}
	}
	return &Catalog{root: root}, nil
}

// Load reads a YAML catalog file. An empty path yields an empty catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading label catalog: %w", err)
	}
	return Parse(data)
}

// Lookup returns the non-empty string at path, or fallback.
func (c *Catalog) Lookup(path, fallback string) string {
	if c == nil {
		return fallback
	}
	var node any = c.root
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return fallback
		}
		if node, ok = m[part]; !ok {
			return fallback
		}
	}
	if s, ok := node.(string); ok && s != "" {
		return s
	}
	return fallback
}

// GroupLabels resolves every built-in group title under "groups.<id>".
func (c *Catalog) GroupLabels() map[string]string {
	out := make(map[string]string, len(engine.DefaultLabels))
	for id, english := range engine.DefaultLabels {
		out[id] = c.Lookup("groups."+id, english)
	}
	return out
}
