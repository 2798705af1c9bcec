package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/athapong/kgraph/pkg/graph"
	"github.com/athapong/kgraph/pkg/graph/metrics"
	"github.com/athapong/kgraph/pkg/graph/storage"
	"github.com/athapong/kgraph/util"
)

const defaultKGPath = "data/kg.json"

var (
	kgOnce  sync.Once
	kgGraph *graph.Graph
	kgErr   error
)

// knowledgeGraph loads and indexes the document once per process. The
// document is read-only for the lifetime of the process, so every tool call
// shares the same snapshot.
func knowledgeGraph() (*graph.Graph, error) {
	kgOnce.Do(func() {
		path := os.Getenv("KG_PATH")
		if path == "" {
			path = defaultKGPath
		}

		store := storage.NewJSONGraphStore(path)
		start := time.Now()
		data, err := store.LoadGraph(context.Background())
		if err != nil {
			kgErr = err
			return
		}
		kgGraph = graph.NewGraph(data)
		metrics.DocumentLoadDuration.Observe(time.Since(start).Seconds())
		metrics.RecordGraph(kgGraph)

		logrus.WithFields(logrus.Fields{
			"path":          path,
			"entities":      len(kgGraph.Entities()),
			"relationships": len(kgGraph.Relationships()),
			"dangling":      kgGraph.DanglingCount(),
		}).Info("knowledge graph loaded")
	})
	return kgGraph, kgErr
}

// RegisterKnowledgeGraphTools registers the query tools on the MCP server.
func RegisterKnowledgeGraphTools(s *server.MCPServer) {
	findEntityTool := mcp.NewTool("kg_find_entity",
		mcp.WithDescription("Find entities in the knowledge graph by name. Matches case-insensitive substrings and returns each entity with its properties and relationships."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name or name fragment to look for")),
	)
	s.AddTool(findEntityTool, util.ErrorGuard(util.AdaptLegacyHandler(kgFindEntityHandler)))

	findRelatedTool := mcp.NewTool("kg_find_related",
		mcp.WithDescription("Show entities related to the named entity, with relationship type and direction."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name or name fragment of the entity to start from")),
	)
	s.AddTool(findRelatedTool, util.ErrorGuard(util.AdaptLegacyHandler(kgFindRelatedHandler)))

	listTypesTool := mcp.NewTool("kg_list_types",
		mcp.WithDescription("List all entity types and relationship types in the knowledge graph with member counts."),
	)
	s.AddTool(listTypesTool, util.ErrorGuard(util.AdaptLegacyHandler(kgListTypesHandler)))

	listEntitiesTool := mcp.NewTool("kg_list_entities",
		mcp.WithDescription("List all entities of a specific type, sorted by name."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Entity type, matched case-insensitively")),
	)
	s.AddTool(listEntitiesTool, util.ErrorGuard(util.AdaptLegacyHandler(kgListEntitiesHandler)))

	searchTool := mcp.NewTool("kg_search",
		mcp.WithDescription("Search across every field of every entity and relationship in the knowledge graph."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Free-text search term")),
	)
	s.AddTool(searchTool, util.ErrorGuard(util.AdaptLegacyHandler(kgSearchHandler)))

	infoTool := mcp.NewTool("kg_info",
		mcp.WithDescription("Show knowledge graph statistics: entity/relationship counts, taxonomy sizes and document metadata."),
	)
	s.AddTool(infoTool, util.ErrorGuard(util.AdaptLegacyHandler(kgInfoHandler)))
}

func kgFindEntityHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	name, ok := arguments["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name must be a non-empty string"), nil
	}

	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("find_entity").Inc()

	matches := g.FindEntity(name)
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No entities found matching %q", name)), nil
	}

	var sb strings.Builder
	for _, entity := range matches {
		writeEntityCard(&sb, g, entity)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func kgFindRelatedHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	name, ok := arguments["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name must be a non-empty string"), nil
	}

	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("find_related").Inc()

	results := g.FindRelated(name)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No entities found matching %q", name)), nil
	}

	var sb strings.Builder
	for _, result := range results {
		fmt.Fprintf(&sb, "\nEntities related to %s (%s):\n", result.Entity.Name, result.Entity.Type)
		sb.WriteString(strings.Repeat("=", 50) + "\n")
		if len(result.Neighbors) == 0 {
			sb.WriteString("  No related entities found\n")
			continue
		}
		for _, n := range result.Neighbors {
			if n.Direction == graph.DirectionOutgoing {
				fmt.Fprintf(&sb, "  → %s → %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
			} else {
				fmt.Fprintf(&sb, "  ← %s ← %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
			}
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func kgListTypesHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("list_types").Inc()

	entityTypes, relationshipTypes := g.ListTypes()

	var sb strings.Builder
	sb.WriteString("\nEntity Types:\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, tc := range entityTypes {
		fmt.Fprintf(&sb, "  - %s (%d entities)\n", tc.Type, tc.Count)
	}
	sb.WriteString("\nRelationship Types:\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, tc := range relationshipTypes {
		fmt.Fprintf(&sb, "  - %s (%d relationships)\n", tc.Type, tc.Count)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func kgListEntitiesHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	entityType, ok := arguments["type"].(string)
	if !ok || entityType == "" {
		return mcp.NewToolResultError("type must be a non-empty string"), nil
	}

	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("list_entities").Inc()

	entities := g.ListEntitiesByType(entityType)
	if len(entities) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No entities found of type %q", entityType)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nEntities of type %q:\n", entityType)
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, entity := range entities {
		source := entity.SourceFile
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&sb, "  - %s (from %s)\n", entity.Name, source)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func kgSearchHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	term, ok := arguments["term"].(string)
	if !ok || term == "" {
		return mcp.NewToolResultError("term must be a non-empty string"), nil
	}

	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("search").Inc()

	result := g.Search(term)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nSearch results for %q:\n", term)
	sb.WriteString(strings.Repeat("=", 40) + "\n")

	if len(result.Entities) == 0 && len(result.Relationships) == 0 {
		sb.WriteString("  No results found\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	for _, match := range result.Entities {
		fmt.Fprintf(&sb, "\nEntity: %s (%s)\n", match.Entity.Name, match.Entity.Type)
		fmt.Fprintf(&sb, "  Source: %s\n", orUnknown(match.Entity.SourceFile))
		if len(match.Properties) > 0 {
			sb.WriteString("  Matching properties:\n")
			for _, prop := range match.Properties {
				fmt.Fprintf(&sb, "    - %s: %s\n", prop.Key, formatPropertyValue(prop.Value))
			}
		}
	}

	for _, match := range result.Relationships {
		fmt.Fprintf(&sb, "\nRelationship: %s → %s → %s\n",
			match.Source.Name, match.Relationship.Type, match.Target.Name)
		fmt.Fprintf(&sb, "  Source: %s\n", orUnknown(match.Relationship.SourceFile))
		fmt.Fprintf(&sb, "  Confidence: %s\n", formatConfidence(match.Relationship.Confidence))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func kgInfoHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	g, err := knowledgeGraph()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metrics.QueryTotal.WithLabelValues("info").Inc()

	stats := g.Stats()

	var sb strings.Builder
	sb.WriteString("\nKnowledge Graph Statistics:\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&sb, "Entities: %d\n", stats.Entities)
	fmt.Fprintf(&sb, "Relationships: %d\n", stats.Relationships)
	fmt.Fprintf(&sb, "Notes: %d\n", stats.Notes)
	fmt.Fprintf(&sb, "Entity types: %d\n", stats.EntityTypes)
	fmt.Fprintf(&sb, "Relationship types: %d\n", stats.RelationshipTypes)
	if stats.Dangling > 0 {
		fmt.Fprintf(&sb, "Dangling relationships: %d\n", stats.Dangling)
	}
	sb.WriteString("\nMetadata:\n")
	for _, entry := range sortedProperties(stats.Metadata) {
		fmt.Fprintf(&sb, "  - %s: %v\n", entry.Key, entry.Value)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// writeEntityCard renders one entity with its properties and resolved
// relationships.
func writeEntityCard(sb *strings.Builder, g *graph.Graph, entity *graph.Entity) {
	fmt.Fprintf(sb, "\n%s (%s)\n", entity.Name, entity.Type)
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(sb, "ID: %s\n", entity.ID)
	fmt.Fprintf(sb, "Source: %s\n", orUnknown(entity.SourceFile))
	fmt.Fprintf(sb, "Confidence: %s\n", formatConfidence(entity.Confidence))

	sb.WriteString("\nProperties:\n")
	for _, prop := range sortedProperties(entity.Properties) {
		fmt.Fprintf(sb, "  - %s: %s\n", prop.Key, formatPropertyValue(prop.Value))
	}

	sb.WriteString("\nRelationships:\n")
	neighbors := g.Neighbors(entity.ID)
	if len(neighbors) == 0 {
		sb.WriteString("  No relationships found\n")
		return
	}
	for _, n := range neighbors {
		if n.Direction == graph.DirectionOutgoing {
			fmt.Fprintf(sb, "  - %s → %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
		} else {
			fmt.Fprintf(sb, "  - %s (%s) → %s\n", n.Entity.Name, n.Entity.Type, n.RelType)
		}
	}
}

func sortedProperties(props map[string]interface{}) []graph.PropertyMatch {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	// Map iteration order is random; sort so repeated renders are
	// byte-identical.
	sort.Strings(keys)
	out := make([]graph.PropertyMatch, 0, len(keys))
	for _, key := range keys {
		out = append(out, graph.PropertyMatch{Key: key, Value: props[key]})
	}
	return out
}

// formatPropertyValue joins list values with commas and renders scalars
// as-is, preserving the document's heterogeneous value shapes.
func formatPropertyValue(value interface{}) string {
	if items, ok := value.([]interface{}); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%v", value)
}

func formatConfidence(confidence interface{}) string {
	if confidence == nil {
		return "unknown"
	}
	return fmt.Sprintf("%v", confidence)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
