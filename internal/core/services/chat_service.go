package services

import (
	"context"
	"time"

	"orgchat/internal/adapters/events"
	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/core/domain"
	"orgchat/internal/core/policy"
	"orgchat/internal/pkg/logging"
)

const (
	sourceKnowledgeBase = "Local AI Knowledge Base"
	sourceAccessControl = "Access Control System"
)

// Retriever is the semantic-search capability: given a question and a hard
// metadata filter, return the top-k matching documents.
type Retriever interface {
	Retrieve(ctx context.Context, question string, filter policy.AccessFilter, topK int) ([]domain.Document, error)
}

// Generator is the answer-generation capability.
type Generator interface {
	Generate(ctx context.Context, question, role, department string, docs []domain.Document) (string, error)
}

// ChatService orchestrates one question/answer cycle: policy check, then
// filtered retrieval, then generation. Collaborators are injected; the
// service holds no ambient state.
type ChatService struct {
	retriever Retriever
	generator Generator
	producer  *events.Producer

	topK            int
	retrieveTimeout time.Duration
	generateTimeout time.Duration
}

// NewChatService creates a chat orchestrator.
func NewChatService(retriever Retriever, generator Generator, producer *events.Producer, topK int, retrieveTimeout, generateTimeout time.Duration) *ChatService {
	return &ChatService{
		retriever:       retriever,
		generator:       generator,
		producer:        producer,
		topK:            topK,
		retrieveTimeout: retrieveTimeout,
		generateTimeout: generateTimeout,
	}
}

// ChatResult is the outcome of one chat request.
type ChatResult struct {
	Response      string    `json:"response"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	AccessGranted bool      `json:"access_granted"`
}

// Ask answers one question for the given principal. The forbidden-term
// check runs first and a denied question never reaches the index, so
// retrieval timing cannot leak whether the term matched anything. Role and
// department come from the stored principal, never from the request.
func (s *ChatService) Ask(ctx context.Context, user *models.User, message string) (*ChatResult, error) {
	l := logging.FromContext(ctx).With("svc", "chat.ask", "user_id", user.ID, "role", user.Role)

	role := domain.Role(user.Role)
	department := user.DepartmentName()

	decision := policy.CheckQuery(role, message)
	if !decision.Allowed {
		l.Warn("query denied", "term", decision.Term)
		s.publishDenial(ctx, user, decision.Term)
		return &ChatResult{
			Response:      decision.Reason,
			Source:        sourceAccessControl,
			Timestamp:     time.Now(),
			AccessGranted: false,
		}, nil
	}

	filter := policy.BuildFilter(role, department)

	docs, err := s.retrieveWithRetry(ctx, message, filter)
	if err != nil {
		return nil, err
	}

	answer, err := s.generateWithRetry(ctx, message, user.Role, department, docs)
	if err != nil {
		return nil, err
	}

	l.Info("question answered", "documents", len(docs))
	return &ChatResult{
		Response:      answer,
		Source:        sourceKnowledgeBase,
		Timestamp:     time.Now(),
		AccessGranted: true,
	}, nil
}

// retrieveWithRetry calls the retriever with a per-call timeout, retrying
// once on a transient failure before surfacing it.
func (s *ChatService) retrieveWithRetry(ctx context.Context, message string, filter policy.AccessFilter) ([]domain.Document, error) {
	var docs []domain.Document
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.retrieveTimeout)
		docs, err = s.retriever.Retrieve(callCtx, message, filter, s.topK)
		cancel()
		if err == nil {
			return docs, nil
		}
		logging.FromContext(ctx).Warn("retrieval attempt failed", "attempt", attempt+1, "error", err)
	}
	return nil, domain.ErrRetrievalUnavailable
}

// generateWithRetry calls the generator with a per-call timeout, retrying
// once on a transient failure before surfacing it.
func (s *ChatService) generateWithRetry(ctx context.Context, message, role, department string, docs []domain.Document) (string, error) {
	var answer string
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
		answer, err = s.generator.Generate(callCtx, message, role, department, docs)
		cancel()
		if err == nil {
			return answer, nil
		}
		logging.FromContext(ctx).Warn("generation attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", domain.ErrGenerationUnavailable
}

func (s *ChatService) publishDenial(ctx context.Context, user *models.User, term string) {
	if s.producer == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.producer.Publish(pubCtx, user.ID, map[string]interface{}{
		"type":     events.TypeQueryDenied,
		"username": user.Username,
		"role":     user.Role,
		"term":     term,
		"at":       time.Now().UTC(),
	})
	if err != nil {
		logging.FromContext(ctx).Error("audit publish failed", "type", events.TypeQueryDenied, "error", err)
	}
}

// HistoryEntry is one past exchange. History is a stub returning fixed
// data; persistent conversation memory is out of scope.
type HistoryEntry struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// History returns mock chat history.
func (s *ChatService) History(user *models.User) []HistoryEntry {
	return []HistoryEntry{
		{
			ID:        "1",
			Query:     "How many vacation days do I have left?",
			Response:  "You have 7 vacation days remaining as of today.",
			Timestamp: "2025-09-08T10:00:00Z",
			Status:    "success",
		},
	}
}
