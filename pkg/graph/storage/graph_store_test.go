package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/kgraph/pkg/graph"
)

func TestLoadGraphMissingFile(t *testing.T) {
	store := NewJSONGraphStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.LoadGraph(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestLoadGraphMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kg.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewJSONGraphStore(path)
	_, err := store.LoadGraph(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentMalformed))
}

func TestLoadGraphMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"metadata":{"version":"1"}}`), 0644))

	store := NewJSONGraphStore(path)
	data, err := store.LoadGraph(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, data.Entities)
	assert.NotNil(t, data.Relationships)
	assert.Empty(t, data.Entities)
	assert.Empty(t, data.Relationships)
	assert.Equal(t, "1", data.Metadata["version"])
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kg.json")
	store := NewJSONGraphStore(path)

	in := &graph.KnowledgeGraphData{
		Entities: []graph.Entity{
			{ID: "e1", Name: "Alice", Type: "person", Confidence: 0.9,
				Properties: map[string]interface{}{"role": "engineer", "skills": []interface{}{"go"}}},
		},
		Relationships: []graph.Relationship{
			{Source: "e1", Target: "e2", Type: "works_for"},
		},
		Metadata: map[string]interface{}{"version": "2"},
	}

	require.NoError(t, store.StoreGraph(context.Background(), in))

	out, err := store.LoadGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Entities, 1)
	assert.Equal(t, "Alice", out.Entities[0].Name)
	// Heterogeneous property shapes survive the round trip.
	assert.Equal(t, "engineer", out.Entities[0].Properties["role"])
	assert.Equal(t, []interface{}{"go"}, out.Entities[0].Properties["skills"])
	require.Len(t, out.Relationships, 1)
	assert.Equal(t, "works_for", out.Relationships[0].Type)
	assert.Equal(t, "2", out.Metadata["version"])
}
