package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"comply-rag/internal/models"
	"comply-rag/internal/repository"

	"github.com/google/uuid"
)

type answerKey struct {
	documentID uuid.UUID
	questionID uuid.UUID
}

type memAnswers struct {
	mu        sync.Mutex
	rows      map[answerKey][]*models.AnswerVersion
	conflicts int // Append calls to reject with ErrVersionConflict
	failFor   map[uuid.UUID]error
}

func newMemAnswers() *memAnswers {
	return &memAnswers{rows: map[answerKey][]*models.AnswerVersion{}, failFor: map[uuid.UUID]error{}}
}

func (m *memAnswers) Latest(ctx context.Context, documentID, questionID uuid.UUID) (*models.AnswerVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.rows[answerKey{documentID, questionID}] {
		if v.IsLatest {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAnswers) Append(ctx context.Context, next, previous *models.AnswerVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failFor[next.QuestionID]; err != nil {
		return err
	}
	if m.conflicts > 0 {
		m.conflicts--
		// another writer got there first
		k := answerKey{next.DocumentID, next.QuestionID}
		for _, v := range m.rows[k] {
			v.IsLatest = false
		}
		m.rows[k] = append(m.rows[k], &models.AnswerVersion{
			ID: uuid.New(), DocumentID: next.DocumentID, QuestionID: next.QuestionID,
			Version: next.Version, IsLatest: true, IsApplicable: true,
		})
		return repository.ErrVersionConflict
	}

	k := answerKey{next.DocumentID, next.QuestionID}
	for _, v := range m.rows[k] {
		if v.Version == next.Version {
			return repository.ErrVersionConflict
		}
		if v.IsLatest && (previous == nil || v.ID != previous.ID) {
			return repository.ErrVersionConflict
		}
	}
	for _, v := range m.rows[k] {
		if previous != nil && v.ID == previous.ID {
			v.IsLatest = false
		}
	}
	cp := *next
	m.rows[k] = append(m.rows[k], &cp)
	return nil
}

func (m *memAnswers) ListByQuestion(ctx context.Context, documentID, questionID uuid.UUID) ([]*models.AnswerVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[answerKey{documentID, questionID}]
	out := make([]*models.AnswerVersion, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}

func (m *memAnswers) all(documentID, questionID uuid.UUID) []*models.AnswerVersion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[answerKey{documentID, questionID}]
}

type memQuestions struct {
	mu        sync.Mutex
	questions []*models.Question
	updates   int
}

func (m *memQuestions) ListByConfiguration(ctx context.Context, configurationID uuid.UUID) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if q.ConfigurationID == configurationID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memQuestions) UpdateAnswer(ctx context.Context, questionID uuid.UUID, applicable bool, justification *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.ID == questionID {
			q.CurrentApplicability = &applicable
			q.CurrentJustification = justification
			m.updates++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memQuestions) CountAnswered(ctx context.Context, configurationID uuid.UUID) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answered, total := 0, 0
	for _, q := range m.questions {
		if q.ConfigurationID != configurationID {
			continue
		}
		total++
		if q.CurrentApplicability != nil {
			answered++
		}
	}
	return answered, total, nil
}

type memDocuments struct {
	docs    map[uuid.UUID]*models.Document
	updates int
}

func (m *memDocuments) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocuments) UpdateCompletion(ctx context.Context, id uuid.UUID, answered, total int, status models.DocumentStatus, completedAt *time.Time) error {
	d, ok := m.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.AnsweredQuestions = answered
	d.TotalQuestions = total
	d.Status = status
	d.CompletedAt = completedAt
	d.ApprovedAt = nil
	d.ApprovedBy = nil
	m.updates++
	return nil
}

type memConfigurations map[uuid.UUID]*models.Configuration

func (m memConfigurations) GetByID(ctx context.Context, id uuid.UUID) (*models.Configuration, error) {
	if c, ok := m[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type memOrganizations map[uuid.UUID]*models.Organization

func (m memOrganizations) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if o, ok := m[id]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

type fakeSyncer struct {
	err   error
	calls int32
}

func (f *fakeSyncer) Sync(ctx context.Context, organizationID uuid.UUID) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

// fakeSearcher returns one policy chunk per query unless the query is
// listed in empty.
type fakeSearcher struct {
	batchErr    error
	empty       map[string]bool
	searchErr   map[string]int // query -> number of failing Search calls
	mu          sync.Mutex
	batchCalls  int
	searchCalls int
}

func (f *fakeSearcher) chunksFor(query string) []models.EvidenceChunk {
	if f.empty[query] {
		return nil
	}
	return []models.EvidenceChunk{
		{SourceType: models.SourceTypePolicy, SourceID: "p-1", SourceLabel: "Information Security", Content: "Evidence for " + query, RelevanceScore: 0.9},
		{SourceType: models.SourceTypePolicy, SourceID: "p-2", SourceLabel: "Information Security", Content: "More evidence", RelevanceScore: 0.7},
	}
}

func (f *fakeSearcher) Search(ctx context.Context, query string, organizationID uuid.UUID, topK int) ([]models.EvidenceChunk, error) {
	f.mu.Lock()
	f.searchCalls++
	if f.searchErr[query] > 0 {
		f.searchErr[query]--
		f.mu.Unlock()
		return nil, context.DeadlineExceeded
	}
	f.mu.Unlock()
	return f.chunksFor(query), nil
}

func (f *fakeSearcher) SearchBatch(ctx context.Context, queries []string, organizationID uuid.UUID) ([][]models.EvidenceChunk, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]models.EvidenceChunk, len(queries))
	for i, q := range queries {
		out[i] = f.chunksFor(q)
	}
	return out, nil
}

type fakeCompleter struct {
	respond func(userPrompt string) (string, error)
	calls   int32
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.respond(userPrompt)
}

type plainContexts struct{}

func (plainContexts) BuildContext(chunks []models.EvidenceChunk) string {
	return AssembleContext(chunks, nil, 0)
}
