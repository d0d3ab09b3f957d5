package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/procreg/internal/models"
)

// catalogFile is the on-disk layout of a catalog.yaml file.
type catalogFile struct {
	Entries []catalogFileEntry `yaml:"entries"`
}

type catalogFileEntry struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
	LaunchRef   string `yaml:"launch_ref"`
}

// LoadCatalogFile loads and parses a catalog.yaml file. Entries are returned
// in declaration order; duplicate detection is left to catalog.New.
func LoadCatalogFile(path string) ([]models.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	if len(f.Entries) == 0 {
		return nil, fmt.Errorf("catalog file %s has no entries", path)
	}

	entries := make([]models.CatalogEntry, 0, len(f.Entries))
	for i, e := range f.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entries[%d]: missing 'name'", i)
		}
		if e.LaunchRef == "" {
			return nil, fmt.Errorf("entries[%d] (%s): missing 'launch_ref'", i, e.Name)
		}
		category, err := models.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("entries[%d] (%s): %w", i, e.Name, err)
		}
		entries = append(entries, models.CatalogEntry{
			Name:        e.Name,
			Category:    category,
			Description: e.Description,
			LaunchRef:   e.LaunchRef,
		})
	}

	return entries, nil
}
