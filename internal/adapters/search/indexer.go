package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// IndexedRecord is one employee record to be written into the index.
type IndexedRecord struct {
	Text       string    `json:"text"`
	EmployeeID string    `json:"employee_id"`
	Department string    `json:"department"`
	RecordKind string    `json:"record_kind"`
	Embedding  []float64 `json:"embedding,omitempty"`
}

// indexMapping keeps department and record_kind as keywords so term
// filters match them exactly.
const indexMapping = `{
  "mappings": {
    "properties": {
      "text":        {"type": "text"},
      "employee_id": {"type": "keyword"},
      "department":  {"type": "keyword"},
      "record_kind": {"type": "keyword"},
      "embedding":   {"type": "dense_vector", "dims": 1024}
    }
  }
}`

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (g *Gateway) EnsureIndex(ctx context.Context) error {
	res, err := g.ES.Indices.Exists([]string{g.Index}, g.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", g.Index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = g.ES.Indices.Create(
		g.Index,
		g.ES.Indices.Create.WithContext(ctx),
		g.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", g.Index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", g.Index, res.Status())
	}
	return nil
}

// IndexRecord writes one record under the given document ID.
func (g *Gateway) IndexRecord(ctx context.Context, id string, rec IndexedRecord) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	res, err := g.ES.Index(
		g.Index,
		&buf,
		g.ES.Index.WithContext(ctx),
		g.ES.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("index record %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index record %s: %s", id, res.Status())
	}
	return nil
}
