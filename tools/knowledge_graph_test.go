package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "entities": [
    {"id": "e1", "name": "Alice", "type": "person", "source_file": "notes/alice.md", "confidence": 0.9,
     "properties": {"role": "engineer", "skills": ["go", "sql"]}},
    {"id": "e2", "name": "Acme", "type": "organization", "source_file": "notes/acme.md", "confidence": "high",
     "properties": {"industry": "pricing analytics"}}
  ],
  "relationships": [
    {"source": "e1", "target": "e2", "type": "works_for", "source_file": "notes/alice.md", "confidence": 0.8},
    {"source": "e2", "target": "ghost", "type": "acquired"}
  ],
  "notes": {"n1": "a note"},
  "metadata": {"version": "1"}
}`

// The graph is loaded once per process, so the fixture and KG_PATH have to
// be in place before the first handler runs.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "kgraph-tools")
	if err != nil {
		panic(err)
	}
	path := filepath.Join(dir, "kg.json")
	if err := os.WriteFile(path, []byte(fixture), 0644); err != nil {
		panic(err)
	}
	os.Setenv("KG_PATH", path)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestKGFindEntityHandler(t *testing.T) {
	result, err := kgFindEntityHandler(map[string]interface{}{"name": "alice"})
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "Alice (person)")
	assert.Contains(t, text, "ID: e1")
	assert.Contains(t, text, "role: engineer")
	assert.Contains(t, text, "skills: go, sql")
	assert.Contains(t, text, "works_for → Acme (organization)")
}

func TestKGFindEntityHandlerNoMatch(t *testing.T) {
	result, err := kgFindEntityHandler(map[string]interface{}{"name": "nobody"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No entities found")
}

func TestKGFindEntityHandlerBadArgs(t *testing.T) {
	result, err := kgFindEntityHandler(map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestKGFindRelatedHandler(t *testing.T) {
	result, err := kgFindRelatedHandler(map[string]interface{}{"name": "acme"})
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "Entities related to Acme (organization)")
	assert.Contains(t, text, "← works_for ← Alice (person)")
	// The dangling "acquired" edge must not surface.
	assert.NotContains(t, text, "acquired")
}

func TestKGListTypesHandler(t *testing.T) {
	result, err := kgListTypesHandler(nil)
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "person (1 entities)")
	assert.Contains(t, text, "organization (1 entities)")
	assert.Contains(t, text, "works_for (1 relationships)")
	assert.Contains(t, text, "acquired (1 relationships)")
}

func TestKGListEntitiesHandler(t *testing.T) {
	result, err := kgListEntitiesHandler(map[string]interface{}{"type": "Person"})
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "Alice (from notes/alice.md)")
	assert.NotContains(t, text, "Acme")
}

func TestKGSearchHandler(t *testing.T) {
	result, err := kgSearchHandler(map[string]interface{}{"term": "pricing"})
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "Entity: Acme (organization)")
	assert.Contains(t, text, "industry: pricing analytics")
}

func TestKGInfoHandler(t *testing.T) {
	result, err := kgInfoHandler(nil)
	require.NoError(t, err)
	text := resultText(t, result)

	assert.Contains(t, text, "Entities: 2")
	assert.Contains(t, text, "Relationships: 2")
	assert.Contains(t, text, "Notes: 1")
	assert.Contains(t, text, "Entity types: 2")
	assert.Contains(t, text, "Relationship types: 2")
	assert.Contains(t, text, "Dangling relationships: 1")
	assert.Contains(t, text, "version: 1")
}
