package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/athapong/kgraph/pkg/graph"
	"github.com/pkg/errors"
)

// Structural failures. Both are fatal for the invocation that hit them;
// callers match with errors.Is.
var (
	ErrDocumentNotFound  = errors.New("knowledge graph document not found")
	ErrDocumentMalformed = errors.New("knowledge graph document malformed")
)

// GraphStore defines an interface for persisting knowledge graph documents.
// The query engine only ever loads; StoreGraph exists for the extraction
// side that produces the document.
type GraphStore interface {
	StoreGraph(ctx context.Context, data *graph.KnowledgeGraphData) error
	LoadGraph(ctx context.Context) (*graph.KnowledgeGraphData, error)
}

// JSONGraphStore implements GraphStore using a single JSON file.
type JSONGraphStore struct {
	filePath string
}

// NewJSONGraphStore creates a new JSON graph store
func NewJSONGraphStore(filePath string) *JSONGraphStore {
	return &JSONGraphStore{
		filePath: filePath,
	}
}

// Path returns the backing file path.
func (s *JSONGraphStore) Path() string { return s.filePath }

// StoreGraph writes the document as indented JSON, creating the parent
// directory if needed.
func (s *JSONGraphStore) StoreGraph(ctx context.Context, data *graph.KnowledgeGraphData) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode knowledge graph")
	}

	return os.WriteFile(s.filePath, encoded, 0644)
}

// LoadGraph reads and decodes the document. A missing file maps to
// ErrDocumentNotFound and undecodable content to ErrDocumentMalformed.
// Missing entities/relationships sections degrade to empty sequences
// rather than failing.
func (s *JSONGraphStore) LoadGraph(ctx context.Context) (*graph.KnowledgeGraphData, error) {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrDocumentNotFound, "path %s", s.filePath)
		}
		return nil, errors.Wrapf(err, "read knowledge graph %s", s.filePath)
	}

	var data graph.KnowledgeGraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(ErrDocumentMalformed, "path %s: %v", s.filePath, err)
	}

	if data.Entities == nil {
		data.Entities = []graph.Entity{}
	}
	if data.Relationships == nil {
		data.Relationships = []graph.Relationship{}
	}

	return &data, nil
}
