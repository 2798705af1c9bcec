package graph

// Entity represents a node in the knowledge graph. IDs are assigned by the
// extraction pipeline that produces the document; the engine never mints or
// rewrites them. Type is an open taxonomy derived from the loaded data, not
// a fixed enum.
type Entity struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	SourceFile string                 `json:"source_file,omitempty"`
	Confidence interface{}            `json:"confidence,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Relationship represents a directed edge between two entities, referenced
// by entity ID. Confidence and SourceFile are provenance only.
type Relationship struct {
	Source     string      `json:"source"`
	Target     string      `json:"target"`
	Type       string      `json:"type"`
	SourceFile string      `json:"source_file,omitempty"`
	Confidence interface{} `json:"confidence,omitempty"`
}

// KnowledgeGraphData is the on-disk document shape: the entity and
// relationship sequences plus optional notes and free-form metadata, kept
// exactly as loaded.
type KnowledgeGraphData struct {
	Entities      []Entity               `json:"entities"`
	Relationships []Relationship         `json:"relationships"`
	Notes         map[string]interface{} `json:"notes,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Direction tags which end of a relationship a traversed entity sits on.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// Neighbor is one resolved hop from an entity: the entity on the other end
// of a relationship, the relationship type, and the direction of the edge
// relative to the entity the traversal started from.
type Neighbor struct {
	Entity    *Entity   `json:"entity"`
	RelType   string    `json:"rel_type"`
	Direction Direction `json:"direction"`
}

// RelatedResult pairs a matched entity with its resolved neighbors.
type RelatedResult struct {
	Entity    *Entity
	Neighbors []Neighbor
}

// TypeCount is one bucket of the dynamic taxonomy.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// PropertyMatch is a property entry whose key or value matched a search
// term. Value keeps the heterogeneous shape from the document (scalar or
// list).
type PropertyMatch struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EntityMatch is an entity hit from Search, with the subset of its
// properties that themselves contain the term.
type EntityMatch struct {
	Entity     *Entity
	Properties []PropertyMatch
}

// RelationshipMatch is a relationship hit from Search with both endpoints
// resolved. Relationships with unresolved endpoints are never returned.
type RelationshipMatch struct {
	Relationship *Relationship
	Source       *Entity
	Target       *Entity
}

// SearchResult groups entity and relationship hits, each in load order.
type SearchResult struct {
	Entities      []EntityMatch
	Relationships []RelationshipMatch
}

// Stats are the aggregate counts reported by the info operation.
type Stats struct {
	Entities          int
	Relationships     int
	Notes             int
	EntityTypes       int
	RelationshipTypes int
	Dangling          int
	Metadata          map[string]interface{}
}
