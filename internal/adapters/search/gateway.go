package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"orgchat/internal/core/domain"
	"orgchat/internal/core/policy"
	"orgchat/internal/pkg/logging"
)

// Gateway retrieves employee records from the semantic index with the
// caller's access filter applied as a hard constraint.
type Gateway struct {
	ES    *elasticsearch.Client
	Index string
}

// NewGateway creates a retrieval gateway over the given index.
func NewGateway(es *elasticsearch.Client, index string) *Gateway {
	return &Gateway{ES: es, Index: index}
}

// document mirrors the index mapping written by cmd/ingest.
type document struct {
	Text       string `json:"text"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
	RecordKind string `json:"record_kind"`
}

// buildQueryBody assembles the search request. The access filter goes into
// the bool `filter` clause, which Elasticsearch applies as an exact
// constraint before scoring: no document outside the filter can be
// returned, regardless of relevance.
func buildQueryBody(question string, filter policy.AccessFilter, topK int) map[string]interface{} {
	must := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":     question,
			"fields":    []string{"text"},
			"fuzziness": "AUTO",
		},
	}

	query := map[string]interface{}{
		"bool": map[string]interface{}{
			"must": must,
		},
	}

	if !filter.MatchAll {
		var clauses []map[string]interface{}
		for _, field := range []string{policy.FieldDepartment, policy.FieldRecordKind} {
			if value, ok := filter.Terms[field]; ok {
				clauses = append(clauses, map[string]interface{}{
					"term": map[string]interface{}{field: value},
				})
			}
		}
		query["bool"].(map[string]interface{})["filter"] = clauses
	}

	return map[string]interface{}{
		"query": query,
		"size":  topK,
	}
}

// Retrieve returns up to topK documents matching the question, restricted
// to the filter. Unreachable or failing backends surface as
// domain.ErrRetrievalUnavailable so the conversation can fail gracefully
// instead of answering from wrong or empty context.
func (g *Gateway) Retrieve(ctx context.Context, question string, filter policy.AccessFilter, topK int) ([]domain.Document, error) {
	body := buildQueryBody(question, filter, topK)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := g.ES.Search(
		g.ES.Search.WithContext(ctx),
		g.ES.Search.WithIndex(g.Index),
		g.ES.Search.WithBody(&buf),
	)
	if err != nil {
		logging.FromContext(ctx).Error("search request failed", "error", err)
		return nil, domain.ErrRetrievalUnavailable
	}
	defer res.Body.Close()

	if res.IsError() {
		logging.FromContext(ctx).Error("search returned error status", "status", res.Status())
		return nil, domain.ErrRetrievalUnavailable
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Score  float64  `json:"_score"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, domain.ErrRetrievalUnavailable
	}

	docs := make([]domain.Document, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := domain.Document{
			Text:       hit.Source.Text,
			EmployeeID: hit.Source.EmployeeID,
			Department: hit.Source.Department,
			RecordKind: hit.Source.RecordKind,
			Score:      hit.Score,
		}
		// Last-resort guard: the index must never hand back a document
		// outside the filter, drop it if it somehow does.
		if !filter.Matches(map[string]string{
			policy.FieldDepartment: doc.Department,
			policy.FieldRecordKind: doc.RecordKind,
		}) {
			logging.FromContext(ctx).Error("index returned document outside access filter",
				"employee_id", doc.EmployeeID, "department", doc.Department)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
