package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/athapong/kgraph/pkg/graph"
)

var (
	// Graph metrics
	GraphEntityCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kgraph_entities_total",
			Help: "Number of entities in the loaded knowledge graph",
		},
		[]string{"entity_type"},
	)

	GraphRelationshipCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kgraph_relationships_total",
			Help: "Number of relationships in the loaded knowledge graph",
		},
		[]string{"relationship_type"},
	)

	GraphDanglingRelationships = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kgraph_dangling_relationships",
		Help: "Relationships whose source or target did not resolve to a known entity",
	})

	// Query metrics
	QueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_queries_total",
			Help: "Total number of queries served, by operation",
		},
		[]string{"operation"},
	)

	DocumentLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "kgraph_document_load_duration_seconds",
		Help: "Time spent loading and indexing the knowledge graph document",
	})
)

// RecordGraph updates the per-type gauges after a document load.
func RecordGraph(g *graph.Graph) {
	entityTypes, relationshipTypes := g.ListTypes()
	for _, tc := range entityTypes {
		GraphEntityCount.WithLabelValues(tc.Type).Set(float64(tc.Count))
	}
	for _, tc := range relationshipTypes {
		GraphRelationshipCount.WithLabelValues(tc.Type).Set(float64(tc.Count))
	}
	GraphDanglingRelationships.Set(float64(g.DanglingCount()))
}
