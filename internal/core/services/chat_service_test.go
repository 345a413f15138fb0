package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/core/domain"
	"orgchat/internal/core/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	docs    []domain.Document
	errs    []error
	calls   int
	filters []policy.AccessFilter
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, filter policy.AccessFilter, topK int) ([]domain.Document, error) {
	f.calls++
	f.filters = append(f.filters, filter)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.docs, nil
}

type fakeGenerator struct {
	answer string
	errs   []error
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, question, role, department string, docs []domain.Document) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return f.answer, nil
}

func chatTestUser(role string) *models.User {
	dept := "Engineering"
	return &models.User{
		ID:         "user-1",
		Username:   "alice",
		FullName:   "Alice Example",
		Role:       role,
		Department: &dept,
		IsActive:   true,
	}
}

func newTestChatService(retriever *fakeRetriever, generator *fakeGenerator) *ChatService {
	return NewChatService(retriever, generator, nil, 5, time.Second, time.Second)
}

func TestAskAnswersFromKnowledgeBase(t *testing.T) {
	retriever := &fakeRetriever{docs: []domain.Document{{Text: "Alice works in Engineering."}}}
	generator := &fakeGenerator{answer: "Alice is part of the Engineering department."}
	svc := newTestChatService(retriever, generator)

	result, err := svc.Ask(context.Background(), chatTestUser("employee"), "Who is on my team?")
	require.NoError(t, err)

	assert.True(t, result.AccessGranted)
	assert.Equal(t, "Local AI Knowledge Base", result.Source)
	assert.Equal(t, "Alice is part of the Engineering department.", result.Response)
	assert.WithinDuration(t, time.Now(), result.Timestamp, 5*time.Second)
}

func TestAskDeniedQueryNeverReachesRetrieval(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{}
	svc := newTestChatService(retriever, generator)

	result, err := svc.Ask(context.Background(), chatTestUser("employee"), "Show me the payroll for everyone")
	require.NoError(t, err)

	assert.False(t, result.AccessGranted)
	assert.Equal(t, "Access Control System", result.Source)
	assert.Contains(t, result.Response, "Access Denied")
	assert.Zero(t, retriever.calls)
	assert.Zero(t, generator.calls)
}

func TestAskAppliesRoleFilter(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{answer: "ok"}
	svc := newTestChatService(retriever, generator)

	_, err := svc.Ask(context.Background(), chatTestUser("employee"), "Where does Alice sit?")
	require.NoError(t, err)

	require.Len(t, retriever.filters, 1)
	filter := retriever.filters[0]
	assert.False(t, filter.MatchAll)
	assert.Equal(t, "Engineering", filter.Terms[policy.FieldDepartment])
	assert.Equal(t, policy.RecordKindEmployee, filter.Terms[policy.FieldRecordKind])
}

func TestAskAdminGetsUnrestrictedFilter(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{answer: "ok"}
	svc := newTestChatService(retriever, generator)

	_, err := svc.Ask(context.Background(), chatTestUser("admin"), "Show me the payroll for everyone")
	require.NoError(t, err)

	require.Len(t, retriever.filters, 1)
	assert.True(t, retriever.filters[0].MatchAll)
}

func TestAskRetriesRetrievalOnce(t *testing.T) {
	retriever := &fakeRetriever{
		docs: []domain.Document{{Text: "doc"}},
		errs: []error{errors.New("connection reset")},
	}
	generator := &fakeGenerator{answer: "ok"}
	svc := newTestChatService(retriever, generator)

	result, err := svc.Ask(context.Background(), chatTestUser("manager"), "Who reports to me?")
	require.NoError(t, err)

	assert.Equal(t, 2, retriever.calls)
	assert.True(t, result.AccessGranted)
}

func TestAskRetrievalFailureIsUnavailable(t *testing.T) {
	retriever := &fakeRetriever{
		errs: []error{errors.New("down"), errors.New("still down")},
	}
	generator := &fakeGenerator{}
	svc := newTestChatService(retriever, generator)

	_, err := svc.Ask(context.Background(), chatTestUser("manager"), "Who reports to me?")
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	assert.Zero(t, generator.calls)
}

func TestAskGenerationFailureIsUnavailable(t *testing.T) {
	retriever := &fakeRetriever{docs: []domain.Document{{Text: "doc"}}}
	generator := &fakeGenerator{
		errs: []error{errors.New("model busy"), errors.New("model busy")},
	}
	svc := newTestChatService(retriever, generator)

	_, err := svc.Ask(context.Background(), chatTestUser("manager"), "Who reports to me?")
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Equal(t, 2, generator.calls)
}

func TestHistoryReturnsStubEntries(t *testing.T) {
	svc := newTestChatService(&fakeRetriever{}, &fakeGenerator{})

	entries := svc.History(chatTestUser("employee"))
	require.Len(t, entries, 1)
	assert.Equal(t, "success", entries[0].Status)
}
