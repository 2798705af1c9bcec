package graph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateIDsFirstWins(t *testing.T) {
	id := uuid.NewString()
	g := NewGraph(&KnowledgeGraphData{
		Entities: []Entity{
			{ID: id, Name: "First", Type: "person"},
			{ID: id, Name: "Second", Type: "person"},
			{ID: "other", Name: "Other", Type: "person"},
		},
		Relationships: []Relationship{
			{Source: "other", Target: id, Type: "knows"},
		},
	})

	t.Run("by-id resolves to first occurrence", func(t *testing.T) {
		e, ok := g.EntityByID(id)
		require.True(t, ok)
		assert.Equal(t, "First", e.Name)
	})

	t.Run("endpoints resolve to first occurrence", func(t *testing.T) {
		neighbors := g.Neighbors("other")
		require.Len(t, neighbors, 1)
		assert.Equal(t, "First", neighbors[0].Entity.Name)
	})

	t.Run("duplicates still match by name and count in taxonomy", func(t *testing.T) {
		assert.Len(t, g.FindEntity("Second"), 1)
		entityTypes, _ := g.ListTypes()
		require.Len(t, entityTypes, 1)
		assert.Equal(t, 3, entityTypes[0].Count)
	})
}

func TestDanglingCount(t *testing.T) {
	g := NewGraph(&KnowledgeGraphData{
		Entities: []Entity{
			{ID: "a", Name: "A", Type: "thing"},
			{ID: "b", Name: "B", Type: "thing"},
		},
		Relationships: []Relationship{
			{Source: "a", Target: "b", Type: "ok"},
			{Source: "a", Target: "ghost", Type: "dangling_target"},
			{Source: "ghost", Target: "b", Type: "dangling_source"},
			{Source: "ghost", Target: "phantom", Type: "dangling_both"},
		},
	})

	assert.Equal(t, 3, g.DanglingCount())

	t.Run("valid relationships still traverse", func(t *testing.T) {
		neighbors := g.Neighbors("a")
		require.Len(t, neighbors, 1)
		assert.Equal(t, "B", neighbors[0].Entity.Name)
	})
}

func TestUnknownEntityID(t *testing.T) {
	g := NewGraph(&KnowledgeGraphData{})

	_, ok := g.EntityByID(uuid.NewString())
	assert.False(t, ok)
	assert.Empty(t, g.Neighbors(uuid.NewString()))
}

func TestSelfLoop(t *testing.T) {
	g := NewGraph(&KnowledgeGraphData{
		Entities: []Entity{
			{ID: "a", Name: "A", Type: "thing"},
		},
		Relationships: []Relationship{
			{Source: "a", Target: "a", Type: "references"},
		},
	})

	// A self-loop is visible from both directions of the same entity.
	neighbors := g.Neighbors("a")
	require.Len(t, neighbors, 2)
	assert.Equal(t, DirectionOutgoing, neighbors[0].Direction)
	assert.Equal(t, DirectionIncoming, neighbors[1].Direction)
	assert.Zero(t, g.DanglingCount())
}
