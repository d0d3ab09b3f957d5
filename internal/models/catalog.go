package models

import (
	"fmt"
	"strings"
)

// Category identifies the family a catalog entry belongs to.
type Category string

const (
	CategoryVector      Category = "vector"
	CategoryGraph       Category = "graph"
	CategoryKeyValue    Category = "key_value"
	CategoryStatistical Category = "statistical"
	CategoryIndex       Category = "index"
	CategoryBlockchain  Category = "blockchain"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryVector,
		CategoryGraph,
		CategoryKeyValue,
		CategoryStatistical,
		CategoryIndex,
		CategoryBlockchain,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryVector, CategoryGraph, CategoryKeyValue,
		CategoryStatistical, CategoryIndex, CategoryBlockchain:
		return true
	}
	return false
}

// Label returns the human-readable group name for c.
func (c Category) Label() string {
	switch c {
	case CategoryVector:
		return "Vector Stores"
	case CategoryGraph:
		return "Graph Stores"
	case CategoryKeyValue:
		return "Key-Value Stores"
	case CategoryStatistical:
		return "Statistical Stores"
	case CategoryIndex:
		return "Index Stores"
	case CategoryBlockchain:
		return "Blockchain Stores"
	}
	return string(c)
}

// ParseCategory converts user input such as "VECTOR", "key-value" or
// "key_value" into a Category.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	c := Category(norm)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// CatalogEntry is the static definition of a launchable process.
type CatalogEntry struct {
	Name        string   `yaml:"name" json:"name"`
	Category    Category `yaml:"category" json:"category"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	// LaunchRef is passed through to the remote start call untouched.
	LaunchRef string `yaml:"launch_ref" json:"launchRef"`
}

// EntryKey identifies a catalog entry.
type EntryKey struct {
	Category Category
	Name     string
}

// Key returns the (category, name) pair identifying e.
func (e CatalogEntry) Key() EntryKey {
	return EntryKey{Category: e.Category, Name: e.Name}
}
