package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/spachava753/procreg/internal/models"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.Equal(t, 14, c.Len())
	require.Equal(t, models.Categories(), c.Categories())

	vector := c.ListByCategory(models.CategoryVector)
	names := make([]string, 0, len(vector))
	for _, e := range vector {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Annoy", "HNSW", "LSH", "PQ"}, names)

	hnsw, ok := c.Find(models.CategoryVector, "HNSW")
	require.True(t, ok)
	assert.Equal(t, "vector_stores.hnsw", hnsw.LaunchRef)
}

func TestFind_Absent(t *testing.T) {
	c := Default()

	_, ok := c.Find(models.CategoryGraph, "HNSW")
	assert.False(t, ok, "name exists only under a different category")

	_, ok = c.Find(models.CategoryVector, "hnsw")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestListByCategory_Unknown(t *testing.T) {
	c := Default()
	assert.Empty(t, c.ListByCategory(models.Category("quantum")))
}

func TestListByCategory_ReturnsCopy(t *testing.T) {
	c := Default()

	list := c.ListByCategory(models.CategoryGraph)
	list[0].Name = "mutated"

	again := c.ListByCategory(models.CategoryGraph)
	assert.Equal(t, "JanusGraph", again[0].Name)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.CatalogEntry
		wantErr string
	}{
		{
			name:    "unknown category",
			entries: []models.CatalogEntry{{Name: "A", Category: "quantum"}},
			wantErr: "unknown category",
		},
		{
			name:    "empty name",
			entries: []models.CatalogEntry{{Category: models.CategoryIndex}},
			wantErr: "empty name",
		},
		{
			name: "duplicate",
			entries: []models.CatalogEntry{
				{Name: "A", Category: models.CategoryIndex},
				{Name: "A", Category: models.CategoryIndex},
			},
			wantErr: "duplicate index/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNew_SameNameDifferentCategory(t *testing.T) {
	c, err := New([]models.CatalogEntry{
		{Name: "Shared", Category: models.CategoryVector, LaunchRef: "v"},
		{Name: "Shared", Category: models.CategoryGraph, LaunchRef: "g"},
	})
	require.NoError(t, err)

	v, ok := c.Find(models.CategoryVector, "Shared")
	require.True(t, ok)
	assert.Equal(t, "v", v.LaunchRef)

	g, ok := c.Find(models.CategoryGraph, "Shared")
	require.True(t, ok)
	assert.Equal(t, "g", g.LaunchRef)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses built-in", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().Len(), c.Len())
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		data := "entries:\n" +
			"  - {name: Qdrant, category: vector, launch_ref: vector_stores.qdrant}\n" +
			"  - {name: Neo4j, category: graph, launch_ref: graph_stores.neo4j}\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, []models.Category{models.CategoryVector, models.CategoryGraph}, c.Categories())
	})

	t.Run("duplicate in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		data := "entries:\n" +
			"  - {name: Redis, category: key_value, launch_ref: a}\n" +
			"  - {name: Redis, category: KEY_VALUE, launch_ref: b}\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		_, err := Load(path)
		require.ErrorContains(t, err, "duplicate")
	})
}

// TestFindRoundTrip checks that every entry is found exactly as declared
// and that per-category listing preserves declaration order.
func TestFindRoundTrip(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(r, "n")
		seen := make(map[models.EntryKey]bool)
		var entries []models.CatalogEntry
		for i := 0; i < n; i++ {
			e := models.CatalogEntry{
				Name:        rapid.StringMatching(`[A-Za-z][A-Za-z0-9]{0,6}`).Draw(r, "name"),
				Category:    rapid.SampledFrom(models.Categories()).Draw(r, "category"),
				Description: rapid.String().Draw(r, "description"),
				LaunchRef:   rapid.StringMatching(`[a-z_]{1,10}\.[a-z]{1,8}`).Draw(r, "launchRef"),
			}
			if seen[e.Key()] {
				continue
			}
			seen[e.Key()] = true
			entries = append(entries, e)
		}

		c, err := New(entries)
		if err != nil {
			r.Fatalf("New: %v", err)
		}

		for _, e := range entries {
			got, ok := c.Find(e.Category, e.Name)
			if !ok || got != e {
				r.Fatalf("Find(%s, %s) = %+v, %v; want %+v", e.Category, e.Name, got, ok, e)
			}
		}

		for _, cat := range models.Categories() {
			var want []models.CatalogEntry
			for _, e := range entries {
				if e.Category == cat {
					want = append(want, e)
				}
			}
			got := c.ListByCategory(cat)
			if len(got) != len(want) {
				r.Fatalf("ListByCategory(%s) returned %d entries, want %d", cat, len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					r.Fatalf("ListByCategory(%s)[%d] = %+v, want %+v", cat, i, got[i], want[i])
				}
			}
		}
	})
}
