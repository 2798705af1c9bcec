package graph

import (
	"encoding/json"
	"strings"
)

// Graph is an immutable, query-ready view of a loaded knowledge graph
// document. All indexes are built once at construction and rebuilt
// wholesale on reload; queries never mutate the underlying data.
type Graph struct {
	data *KnowledgeGraphData

	// byID resolves relationship endpoints in O(1). On duplicate IDs the
	// first occurrence wins; later duplicates stay in the entity sequence
	// (they still match name/search queries and count toward their type
	// bucket) but never resolve as endpoints.
	byID map[string]*Entity

	// Type indexes are keyed by lowercase type so list-entities lookups
	// are case-insensitive without a scan. Load order is preserved inside
	// each bucket.
	entitiesByType map[string][]*Entity
	relsByType     map[string][]*Relationship

	adjacency map[string]*entityEdges

	// Serialized JSON per element, precomputed so full-payload search does
	// not re-marshal on every query. raw keeps the document casing for
	// property extraction, folded is lowercased for matching.
	entityPayloads []payload
	relPayloads    []payload

	dangling int
}

// entityEdges holds indexes into the relationship sequence so traversal can
// fall back to document order as a tie-break.
type entityEdges struct {
	outgoing []int
	incoming []int
}

type payload struct {
	raw    string
	folded string
}

// NewGraph builds all derived indexes over the loaded document in one pass
// per collection.
func NewGraph(data *KnowledgeGraphData) *Graph {
	g := &Graph{
		data:           data,
		byID:           make(map[string]*Entity, len(data.Entities)),
		entitiesByType: make(map[string][]*Entity),
		relsByType:     make(map[string][]*Relationship),
		adjacency:      make(map[string]*entityEdges),
		entityPayloads: make([]payload, len(data.Entities)),
		relPayloads:    make([]payload, len(data.Relationships)),
	}

	for i := range data.Entities {
		e := &data.Entities[i]
		if _, exists := g.byID[e.ID]; !exists {
			g.byID[e.ID] = e
		}
		key := strings.ToLower(e.Type)
		g.entitiesByType[key] = append(g.entitiesByType[key], e)
		g.entityPayloads[i] = marshalPayload(e)
	}

	for i := range data.Relationships {
		rel := &data.Relationships[i]
		key := strings.ToLower(rel.Type)
		g.relsByType[key] = append(g.relsByType[key], rel)
		g.relPayloads[i] = marshalPayload(rel)

		g.edgesFor(rel.Source).outgoing = append(g.edgesFor(rel.Source).outgoing, i)
		g.edgesFor(rel.Target).incoming = append(g.edgesFor(rel.Target).incoming, i)

		if _, ok := g.byID[rel.Source]; !ok {
			g.dangling++
			continue
		}
		if _, ok := g.byID[rel.Target]; !ok {
			g.dangling++
		}
	}

	return g
}

func (g *Graph) edgesFor(id string) *entityEdges {
	edges, ok := g.adjacency[id]
	if !ok {
		edges = &entityEdges{}
		g.adjacency[id] = edges
	}
	return edges
}

func marshalPayload(v interface{}) payload {
	raw, err := json.Marshal(v)
	if err != nil {
		return payload{}
	}
	return payload{raw: string(raw), folded: strings.ToLower(string(raw))}
}

// Entities returns the entity sequence in document order.
func (g *Graph) Entities() []Entity { return g.data.Entities }

// Relationships returns the relationship sequence in document order.
func (g *Graph) Relationships() []Relationship { return g.data.Relationships }

// Metadata returns the document's free-form metadata mapping.
func (g *Graph) Metadata() map[string]interface{} { return g.data.Metadata }

// Notes returns the document's notes mapping.
func (g *Graph) Notes() map[string]interface{} { return g.data.Notes }

// EntityByID resolves an entity ID, honoring the first-wins duplicate
// policy.
func (g *Graph) EntityByID(id string) (*Entity, bool) {
	e, ok := g.byID[id]
	return e, ok
}

// DanglingCount reports how many relationships have a source or target that
// did not resolve to a known entity ID. Dangling edges are excluded from
// traversal and search results but are not an error.
func (g *Graph) DanglingCount() int { return g.dangling }
