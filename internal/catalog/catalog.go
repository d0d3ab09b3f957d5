// Package catalog holds the static, read-only table of launchable processes.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spachava753/procreg/internal/config"
	"github.com/spachava753/procreg/internal/models"
)

// Catalog is an immutable lookup of catalog entries grouped by category.
// It is safe for concurrent use.
type Catalog struct {
	byCategory map[models.Category][]models.CatalogEntry
	index      map[models.EntryKey]models.CatalogEntry
	size       int
}

// New builds a Catalog from entries, keeping declaration order within each
// category. It rejects unknown categories, empty names and duplicate
// (category, name) pairs.
func New(entries []models.CatalogEntry) (*Catalog, error) {
	c := &Catalog{
		byCategory: make(map[models.Category][]models.CatalogEntry),
		index:      make(map[models.EntryKey]models.CatalogEntry, len(entries)),
	}

	for i, e := range entries {
		if !e.Category.Valid() {
			return nil, fmt.Errorf("entry %d (%s): unknown category %q", i, e.Name, e.Category)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("entry %d: empty name", i)
		}
		key := e.Key()
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("entry %d: duplicate %s/%s", i, e.Category, e.Name)
		}
		c.index[key] = e
		c.byCategory[e.Category] = append(c.byCategory[e.Category], e)
		c.size++
	}

	return c, nil
}

// Load returns the catalog stored at path, or the built-in catalog when
// path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		slog.Debug("using built-in catalog")
		return Default(), nil
	}

	entries, err := config.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}

	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", path, err)
	}

	slog.Debug("loaded catalog", "path", path, "entries", c.Len())
	return c, nil
}

// ListByCategory returns the entries of category in declaration order.
// Unknown or empty categories yield an empty slice.
func (c *Catalog) ListByCategory(category models.Category) []models.CatalogEntry {
	return slices.Clone(c.byCategory[category])
}

// Find looks up an entry by category and name.
func (c *Catalog) Find(category models.Category, name string) (models.CatalogEntry, bool) {
	e, ok := c.index[models.EntryKey{Category: category, Name: name}]
	return e, ok
}

// Categories returns the categories that have at least one entry, in
// display order.
func (c *Catalog) Categories() []models.Category {
	var out []models.Category
	for _, cat := range models.Categories() {
		if len(c.byCategory[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Entries returns every entry, grouped by category in display order.
func (c *Catalog) Entries() []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, c.size)
	for _, cat := range models.Categories() {
		out = append(out, c.byCategory[cat]...)
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return c.size
}
