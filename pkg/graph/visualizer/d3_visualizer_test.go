package visualizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athapong/kgraph/pkg/graph"
)

func TestVisualizeWritesHTML(t *testing.T) {
	g := graph.NewGraph(&graph.KnowledgeGraphData{
		Entities: []graph.Entity{
			{ID: "e1", Name: "Alice", Type: "person"},
			{ID: "e2", Name: "Acme", Type: "organization"},
		},
		Relationships: []graph.Relationship{
			{Source: "e1", Target: "e2", Type: "works_for"},
			{Source: "e1", Target: "ghost", Type: "broken"},
		},
	})

	path := filepath.Join(t.TempDir(), "out", "kg.html")
	viz := NewD3Visualizer(path)
	require.NoError(t, viz.Visualize(g))

	html, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(html), "Alice")
	assert.Contains(t, string(html), "works_for")
	assert.Contains(t, string(html), "2 entities, 1 relationships")
	// The dangling edge would break the force layout, so it is dropped.
	assert.NotContains(t, string(html), "broken")
}
