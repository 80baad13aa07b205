// Package search maintains a Bleve full-text index over recorded expenses.
// The assistant uses it to pull similar past expenses into prompt context.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// ExpenseDocument is the indexed form of an expense.
type ExpenseDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	UserID      string `json:"user_id"`
}

// Hit is one search result with its relevance score.
type Hit struct {
	Document ExpenseDocument
	Score    float64
}

// Index wraps a Bleve index over expense documents.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
	path  string
}

// NewIndex creates or opens an expense index. An empty path gives an
// in-memory index, which tests use.
func NewIndex(path string) (*Index, error) {
	indexMapping := buildIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("create index directory: %w", mkdirErr)
		}
		idx, err = bleve.New(path, indexMapping)
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open expense index: %w", err)
	}

	return &Index{index: idx, path: path}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("subcategory", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("amount", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("user_id", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// IndexExpense adds or updates one expense in the index.
func (ix *Index) IndexExpense(e *expenses.Expense) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	doc := ExpenseDocument{
		ID:          e.ID.String(),
		Name:        e.Name,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Amount:      e.Amount.StringFixed(2),
		Date:        e.Date,
		UserID:      e.UserID.String(),
	}
	if err := ix.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("index expense %s: %w", e.ID, err)
	}
	return nil
}

// Similar returns the user's past expenses whose names match the given text,
// most relevant first. Fuzziness 1 tolerates single-character typos.
func (ix *Index) Similar(userID uuid.UUID, text string, limit int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	matchQuery := bleve.NewMatchQuery(text)
	matchQuery.SetField("name")
	matchQuery.SetFuzziness(1)

	userQuery := bleve.NewTermQuery(userID.String())
	userQuery.SetField("user_id")

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(matchQuery, userQuery))
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("similar expenses: %w", err)
	}

	hits := make([]Hit, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := ExpenseDocument{ID: hit.ID}
		if name, ok := hit.Fields["name"].(string); ok {
			doc.Name = name
		}
		if category, ok := hit.Fields["category"].(string); ok {
			doc.Category = category
		}
		if subcategory, ok := hit.Fields["subcategory"].(string); ok {
			doc.Subcategory = subcategory
		}
		if amount, ok := hit.Fields["amount"].(string); ok {
			doc.Amount = amount
		}
		if date, ok := hit.Fields["date"].(string); ok {
			doc.Date = date
		}
		if user, ok := hit.Fields["user_id"].(string); ok {
			doc.UserID = user
		}
		hits = append(hits, Hit{Document: doc, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}
