package document

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// searchEntry is the shape indexed per document.
type searchEntry struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// SearchResult is one hit with its relevance score.
type SearchResult struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Score float64 `json:"score"`
}

// SearchIndex is an in-memory full-text index over uploaded documents.
// It lives and dies with the process, like the documents themselves.
type SearchIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewSearchIndex builds an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return &SearchIndex{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	entry := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Store = true
	entry.AddFieldMappingsAt("name", name)

	kind := bleve.NewTextFieldMapping()
	kind.Store = true
	entry.AddFieldMappingsAt("kind", kind)

	content := bleve.NewTextFieldMapping()
	content.Store = false
	entry.AddFieldMappingsAt("content", content)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = entry
	return m
}

// Index adds or replaces a document in the index.
func (s *SearchIndex) Index(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.index.Index(doc.ID.String(), searchEntry{
		Name:    doc.Name,
		Kind:    string(doc.Kind),
		Content: doc.RawContent,
	})
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// Search runs a match query over name and content and returns up to limit
// hits ordered by score.
func (s *SearchIndex) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Fields = []string{"name", "kind"}

	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := SearchResult{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["name"].(string); ok {
			r.Name = v
		}
		if v, ok := hit.Fields["kind"].(string); ok {
			r.Kind = v
		}
		results = append(results, r)
	}
	return results, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	return s.index.Close()
}
