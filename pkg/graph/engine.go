package graph

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tidwall/gjson"
)

// FindEntity returns every entity whose name contains the pattern,
// case-insensitively, in document load order. No matches is a valid empty
// result, not an error.
func (g *Graph) FindEntity(pattern string) []*Entity {
	needle := strings.ToLower(pattern)
	var matches []*Entity
	for i := range g.data.Entities {
		if strings.Contains(strings.ToLower(g.data.Entities[i].Name), needle) {
			matches = append(matches, &g.data.Entities[i])
		}
	}
	return matches
}

// Neighbors walks the adjacency index for one entity ID and resolves both
// edge directions. Edges whose far endpoint does not resolve are skipped.
// Results are sorted by neighbor name (ordinal); ties fall back to
// relationship load order.
func (g *Graph) Neighbors(id string) []Neighbor {
	edges, ok := g.adjacency[id]
	if !ok {
		return nil
	}

	type hop struct {
		neighbor Neighbor
		relIndex int
	}
	hops := make([]hop, 0, len(edges.outgoing)+len(edges.incoming))
	for _, idx := range edges.outgoing {
		rel := &g.data.Relationships[idx]
		if target, ok := g.byID[rel.Target]; ok {
			hops = append(hops, hop{
				neighbor: Neighbor{Entity: target, RelType: rel.Type, Direction: DirectionOutgoing},
				relIndex: idx,
			})
		}
	}
	for _, idx := range edges.incoming {
		rel := &g.data.Relationships[idx]
		if source, ok := g.byID[rel.Source]; ok {
			hops = append(hops, hop{
				neighbor: Neighbor{Entity: source, RelType: rel.Type, Direction: DirectionIncoming},
				relIndex: idx,
			})
		}
	}

	sort.SliceStable(hops, func(i, j int) bool {
		if hops[i].neighbor.Entity.Name != hops[j].neighbor.Entity.Name {
			return hops[i].neighbor.Entity.Name < hops[j].neighbor.Entity.Name
		}
		return hops[i].relIndex < hops[j].relIndex
	})

	neighbors := make([]Neighbor, len(hops))
	for i, h := range hops {
		neighbors[i] = h.neighbor
	}
	return neighbors
}

// FindRelated resolves entities matching the pattern and returns each with
// its resolved neighbors.
func (g *Graph) FindRelated(pattern string) []RelatedResult {
	matches := g.FindEntity(pattern)
	results := make([]RelatedResult, 0, len(matches))
	for _, e := range matches {
		results = append(results, RelatedResult{Entity: e, Neighbors: g.Neighbors(e.ID)})
	}
	return results
}

// ListTypes enumerates the entity and relationship taxonomies as they exist
// in the loaded data. Each element lands in exactly one bucket (exact type
// string), so counts sum to the collection sizes. Buckets are sorted by
// type name.
func (g *Graph) ListTypes() (entityTypes, relationshipTypes []TypeCount) {
	entityCounts := make(map[string]int)
	for i := range g.data.Entities {
		entityCounts[g.data.Entities[i].Type]++
	}
	relCounts := make(map[string]int)
	for i := range g.data.Relationships {
		relCounts[g.data.Relationships[i].Type]++
	}
	return sortedTypeCounts(entityCounts), sortedTypeCounts(relCounts)
}

func sortedTypeCounts(counts map[string]int) []TypeCount {
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// ListEntitiesByType returns the entities whose type equals the given type,
// case-insensitively, sorted by name (ordinal, stable). An unknown type
// yields an empty result.
func (g *Graph) ListEntitiesByType(entityType string) []*Entity {
	bucket := g.entitiesByType[strings.ToLower(entityType)]
	if len(bucket) == 0 {
		return nil
	}
	entities := make([]*Entity, len(bucket))
	copy(entities, bucket)
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})
	return entities
}

// ListRelationshipsByType returns the relationships whose type equals the
// given type, case-insensitively, in load order.
func (g *Graph) ListRelationshipsByType(relType string) []*Relationship {
	bucket := g.relsByType[strings.ToLower(relType)]
	if len(bucket) == 0 {
		return nil
	}
	relationships := make([]*Relationship, len(bucket))
	copy(relationships, bucket)
	return relationships
}

// Search matches the term, case-insensitively, against the full serialized
// payload of every entity and relationship. Entity hits carry the property
// entries that themselves contain the term; relationship hits are limited
// to edges with both endpoints resolvable, since an unresolved edge cannot
// be displayed. Hits keep document load order.
func (g *Graph) Search(term string) SearchResult {
	needle := strings.ToLower(term)
	var result SearchResult

	for i := range g.entityPayloads {
		p := g.entityPayloads[i]
		if !strings.Contains(p.folded, needle) {
			continue
		}
		result.Entities = append(result.Entities, EntityMatch{
			Entity:     &g.data.Entities[i],
			Properties: matchingProperties(p.raw, needle),
		})
	}

	for i := range g.relPayloads {
		if !strings.Contains(g.relPayloads[i].folded, needle) {
			continue
		}
		rel := &g.data.Relationships[i]
		source, ok := g.byID[rel.Source]
		if !ok {
			continue
		}
		target, ok := g.byID[rel.Target]
		if !ok {
			continue
		}
		result.Relationships = append(result.Relationships, RelationshipMatch{
			Relationship: rel,
			Source:       source,
			Target:       target,
		})
	}

	return result
}

// matchingProperties walks the properties object of a serialized entity and
// keeps entries whose key or value contains the needle.
func matchingProperties(raw, needle string) []PropertyMatch {
	props := gjson.Get(raw, "properties")
	if !props.Exists() {
		return nil
	}
	var matches []PropertyMatch
	props.ForEach(func(key, value gjson.Result) bool {
		if strings.Contains(strings.ToLower(key.String()), needle) ||
			strings.Contains(strings.ToLower(value.Raw), needle) {
			matches = append(matches, PropertyMatch{Key: key.String(), Value: value.Value()})
		}
		return true
	})
	return matches
}

// Stats reduces the loaded collections to aggregate counts and passes the
// document metadata through untouched.
func (g *Graph) Stats() Stats {
	entityTypes := mapset.NewSet[string]()
	for i := range g.data.Entities {
		entityTypes.Add(g.data.Entities[i].Type)
	}
	relTypes := mapset.NewSet[string]()
	for i := range g.data.Relationships {
		relTypes.Add(g.data.Relationships[i].Type)
	}

	return Stats{
		Entities:          len(g.data.Entities),
		Relationships:     len(g.data.Relationships),
		Notes:             len(g.data.Notes),
		EntityTypes:       entityTypes.Cardinality(),
		RelationshipTypes: relTypes.Cardinality(),
		Dangling:          g.dangling,
		Metadata:          g.data.Metadata,
	}
}
