package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/athapong/kgraph/pkg/graph"
	"github.com/athapong/kgraph/pkg/graph/storage"
	"github.com/athapong/kgraph/pkg/graph/visualizer"
)

const usage = `Knowledge Graph Query Tool

Usage:
  kgraph [flags] <command> [args...]

Commands:
  find entity <name>          Find and display an entity
  find related <name>         Show entities related to the specified one
  list types                  Show all entity and relationship types
  list entities <type>        List all entities of a specific type
  search <term>               Search across entities and relationships
  info                        Show knowledge graph statistics
  visualize                   Render the graph as an HTML page
  help                        Show this help message

Examples:
  kgraph find entity Amplitude
  kgraph find related Spenser
  kgraph list types
  kgraph list entities person
  kgraph search pricing
  kgraph info
`

var (
	kgPath    = flag.String("kg", "data/kg.json", "Path to knowledge graph JSON file")
	vizOutput = flag.String("viz-output", "knowledge_graph.html", "Output file for the visualize command")
	logLevel  = flag.String("log-level", "warn", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	args := flag.Args()
	if len(args) == 0 || args[0] == "help" {
		fmt.Print(usage)
		return
	}

	store := storage.NewJSONGraphStore(*kgPath)
	data, err := store.LoadGraph(context.Background())
	if err != nil {
		logger.Fatalf("Failed to load knowledge graph: %v", err)
	}
	g := graph.NewGraph(data)
	logger.Debugf("Loaded %d entities, %d relationships (%d dangling)",
		len(g.Entities()), len(g.Relationships()), g.DanglingCount())

	switch args[0] {
	case "find":
		if len(args) < 3 {
			fail("'find' requires a sub-command and a name\nUsage: find entity <name> or find related <name>")
		}
		name := strings.Join(args[2:], " ")
		switch args[1] {
		case "entity":
			findEntity(g, name)
		case "related":
			findRelated(g, name)
		default:
			fail(fmt.Sprintf("Unknown sub-command %q for 'find'\nUsage: find entity <name> or find related <name>", args[1]))
		}

	case "list":
		if len(args) < 2 {
			fail("'list' requires a sub-command\nUsage: list types or list entities <type>")
		}
		switch args[1] {
		case "types":
			listTypes(g)
		case "entities":
			if len(args) < 3 {
				fail("'list entities' requires an entity type\nUsage: list entities <type>")
			}
			listEntities(g, args[2])
		default:
			fail(fmt.Sprintf("Unknown sub-command %q for 'list'\nUsage: list types or list entities <type>", args[1]))
		}

	case "search":
		if len(args) < 2 {
			fail("'search' requires a search term\nUsage: search <term>")
		}
		search(g, strings.Join(args[1:], " "))

	case "info":
		info(g)

	case "visualize":
		viz := visualizer.NewD3Visualizer(*vizOutput)
		if err := viz.Visualize(g); err != nil {
			logger.Fatalf("Failed to write visualization: %v", err)
		}
		fmt.Printf("Visualization saved to %s\n", *vizOutput)

	default:
		fail(fmt.Sprintf("Unknown command %q\nUse 'help' to see available commands", args[0]))
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "Error: "+msg)
	os.Exit(1)
}

func findEntity(g *graph.Graph, name string) {
	matches := g.FindEntity(name)
	if len(matches) == 0 {
		fmt.Printf("No entities found matching %q\n", name)
		return
	}

	for _, entity := range matches {
		fmt.Printf("\n%s (%s)\n", entity.Name, entity.Type)
		fmt.Println(strings.Repeat("=", 40))
		fmt.Printf("ID: %s\n", entity.ID)
		fmt.Printf("Source: %s\n", orUnknown(entity.SourceFile))
		fmt.Printf("Confidence: %s\n", formatConfidence(entity.Confidence))

		fmt.Println("\nProperties:")
		for _, key := range sortedKeys(entity.Properties) {
			fmt.Printf("  - %s: %s\n", key, formatPropertyValue(entity.Properties[key]))
		}

		fmt.Println("\nRelationships:")
		neighbors := g.Neighbors(entity.ID)
		if len(neighbors) == 0 {
			fmt.Println("  No relationships found")
			continue
		}
		for _, n := range neighbors {
			if n.Direction == graph.DirectionOutgoing {
				fmt.Printf("  - %s → %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
			} else {
				fmt.Printf("  - %s (%s) → %s\n", n.Entity.Name, n.Entity.Type, n.RelType)
			}
		}
	}
}

func findRelated(g *graph.Graph, name string) {
	results := g.FindRelated(name)
	if len(results) == 0 {
		fmt.Printf("No entities found matching %q\n", name)
		return
	}

	for _, result := range results {
		fmt.Printf("\nEntities related to %s (%s):\n", result.Entity.Name, result.Entity.Type)
		fmt.Println(strings.Repeat("=", 50))
		if len(result.Neighbors) == 0 {
			fmt.Println("  No related entities found")
			continue
		}
		for _, n := range result.Neighbors {
			if n.Direction == graph.DirectionOutgoing {
				fmt.Printf("  → %s → %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
			} else {
				fmt.Printf("  ← %s ← %s (%s)\n", n.RelType, n.Entity.Name, n.Entity.Type)
			}
		}
	}
}

func listTypes(g *graph.Graph) {
	entityTypes, relationshipTypes := g.ListTypes()

	fmt.Println("\nEntity Types:")
	fmt.Println(strings.Repeat("=", 40))
	for _, tc := range entityTypes {
		fmt.Printf("  - %s (%d entities)\n", tc.Type, tc.Count)
	}

	fmt.Println("\nRelationship Types:")
	fmt.Println(strings.Repeat("=", 40))
	for _, tc := range relationshipTypes {
		fmt.Printf("  - %s (%d relationships)\n", tc.Type, tc.Count)
	}
}

func listEntities(g *graph.Graph, entityType string) {
	entities := g.ListEntitiesByType(entityType)
	if len(entities) == 0 {
		fmt.Printf("No entities found of type %q\n", entityType)
		return
	}

	fmt.Printf("\nEntities of type %q:\n", entityType)
	fmt.Println(strings.Repeat("=", 40))
	for _, entity := range entities {
		fmt.Printf("  - %s (from %s)\n", entity.Name, orUnknown(entity.SourceFile))
	}
}

func search(g *graph.Graph, term string) {
	result := g.Search(term)

	fmt.Printf("\nSearch results for %q:\n", term)
	fmt.Println(strings.Repeat("=", 40))

	if len(result.Entities) == 0 && len(result.Relationships) == 0 {
		fmt.Println("  No results found")
		return
	}

	for _, match := range result.Entities {
		fmt.Printf("\nEntity: %s (%s)\n", match.Entity.Name, match.Entity.Type)
		fmt.Printf("  Source: %s\n", orUnknown(match.Entity.SourceFile))
		if len(match.Properties) > 0 {
			fmt.Println("  Matching properties:")
			for _, prop := range match.Properties {
				fmt.Printf("    - %s: %s\n", prop.Key, formatPropertyValue(prop.Value))
			}
		}
	}

	for _, match := range result.Relationships {
		fmt.Printf("\nRelationship: %s → %s → %s\n",
			match.Source.Name, match.Relationship.Type, match.Target.Name)
		fmt.Printf("  Source: %s\n", orUnknown(match.Relationship.SourceFile))
		fmt.Printf("  Confidence: %s\n", formatConfidence(match.Relationship.Confidence))
	}
}

func info(g *graph.Graph) {
	stats := g.Stats()

	fmt.Println("\nKnowledge Graph Statistics:")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Entities: %d\n", stats.Entities)
	fmt.Printf("Relationships: %d\n", stats.Relationships)
	fmt.Printf("Notes: %d\n", stats.Notes)
	fmt.Printf("Entity types: %d\n", stats.EntityTypes)
	fmt.Printf("Relationship types: %d\n", stats.RelationshipTypes)
	if stats.Dangling > 0 {
		fmt.Printf("Dangling relationships: %d\n", stats.Dangling)
	}

	fmt.Println("\nMetadata:")
	for _, key := range sortedKeys(stats.Metadata) {
		fmt.Printf("  - %s: %v\n", key, stats.Metadata[key])
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

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
