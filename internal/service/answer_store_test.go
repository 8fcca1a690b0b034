package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"comply-rag/internal/models"
	"comply-rag/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func acceptedResult(questionID uuid.UUID, applicable bool, justification string) models.ClassificationResult {
	res := models.ClassificationResult{QuestionID: questionID, IsApplicable: boolPtr(applicable), Succeeded: true}
	if !applicable {
		res.Justification = strPtr(justification)
	}
	return res
}

type storeFixture struct {
	answers   *memAnswers
	questions *memQuestions
	documents *memDocuments
	doc       *models.Document
	store     *AnswerStore
}

func newStoreFixture(n int) *storeFixture {
	configID := uuid.New()
	approvedBy := uuid.New()
	approvedAt := time.Now().Add(-time.Hour)
	doc := &models.Document{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		ConfigurationID: configID,
		TotalQuestions:  n,
		Status:          models.DocumentStatusInProgress,
		ApprovedAt:      &approvedAt,
		ApprovedBy:      &approvedBy,
	}

	questions := &memQuestions{}
	for i := 0; i < n; i++ {
		questions.questions = append(questions.questions, &models.Question{ID: uuid.New(), ConfigurationID: configID, Position: i})
	}

	documents := &memDocuments{docs: map[uuid.UUID]*models.Document{doc.ID: doc}}
	answers := newMemAnswers()

	return &storeFixture{
		answers:   answers,
		questions: questions,
		documents: documents,
		doc:       doc,
		store:     NewAnswerStore(answers, questions, documents, zap.NewNop()),
	}
}

func TestAnswerStore_VersionsAreMonotonic(t *testing.T) {
	f := newStoreFixture(1)
	q := f.questions.questions[0]
	user := uuid.New()

	for k := 1; k <= 4; k++ {
		v, err := f.store.Persist(context.Background(), f.doc.ID, user, acceptedResult(q.ID, k%2 == 0, "We have no physical premises to protect."))
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, k, v.Version)

		rows := f.answers.all(f.doc.ID, q.ID)
		require.Len(t, rows, k)
		latest := 0
		for i, r := range rows {
			assert.Equal(t, i+1, r.Version)
			if r.IsLatest {
				latest++
			}
		}
		assert.Equal(t, 1, latest)
	}
}

func TestAnswerStore_AnswerTextOnlyForNotApplicable(t *testing.T) {
	f := newStoreFixture(2)
	yes, no := f.questions.questions[0], f.questions.questions[1]

	res := acceptedResult(yes.ID, true, "")
	res.Justification = strPtr("should be dropped")
	v, err := f.store.Persist(context.Background(), f.doc.ID, uuid.New(), res)
	require.NoError(t, err)
	assert.Nil(t, v.AnswerText)
	assert.Nil(t, yes.CurrentJustification)
	assert.True(t, *yes.CurrentApplicability)

	v, err = f.store.Persist(context.Background(), f.doc.ID, uuid.New(), acceptedResult(no.ID, false, "We have no offices\xff."))
	require.NoError(t, err)
	require.NotNil(t, v.AnswerText)
	assert.Equal(t, "We have no offices.", *v.AnswerText)
	assert.False(t, *no.CurrentApplicability)
	assert.Equal(t, "We have no offices.", *no.CurrentJustification)
}

func TestAnswerStore_SkipsUnacceptedResults(t *testing.T) {
	f := newStoreFixture(1)
	q := f.questions.questions[0]

	v, err := f.store.Persist(context.Background(), f.doc.ID, uuid.New(), models.FailedResult(q.ID))
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, f.answers.all(f.doc.ID, q.ID))
	assert.Equal(t, 0, f.questions.updates)
}

func TestAnswerStore_RetriesOnVersionConflict(t *testing.T) {
	f := newStoreFixture(1)
	q := f.questions.questions[0]
	f.answers.conflicts = 1

	v, err := f.store.Persist(context.Background(), f.doc.ID, uuid.New(), acceptedResult(q.ID, true, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, v.Version)

	rows := f.answers.all(f.doc.ID, q.ID)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].IsLatest)
	assert.True(t, rows[1].IsLatest)
}

func TestAnswerStore_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newStoreFixture(1)
	q := f.questions.questions[0]
	f.answers.conflicts = maxVersionAttempts

	_, err := f.store.Persist(context.Background(), f.doc.ID, uuid.New(), acceptedResult(q.ID, true, ""))
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, 0, f.questions.updates)
}

func TestAnswerStore_PersistBatch(t *testing.T) {
	f := newStoreFixture(3)
	qs := f.questions.questions
	f.answers.failFor[qs[1].ID] = errors.New("connection reset")

	results := []models.ClassificationResult{
		acceptedResult(qs[0].ID, true, ""),
		acceptedResult(qs[1].ID, true, ""),
		acceptedResult(qs[2].ID, false, "We do not operate a data center."),
	}

	persisted, err := f.store.PersistBatch(context.Background(), f.doc, uuid.New(), results)
	require.NoError(t, err)
	assert.Equal(t, 2, persisted)

	stored := f.documents.docs[f.doc.ID]
	assert.Equal(t, 2, stored.AnsweredQuestions)
	assert.Equal(t, 3, stored.TotalQuestions)
	assert.Equal(t, models.DocumentStatusInProgress, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	assert.Nil(t, stored.ApprovedAt)
	assert.Nil(t, stored.ApprovedBy)
}

func TestAnswerStore_RecomputeCompletes(t *testing.T) {
	f := newStoreFixture(2)
	qs := f.questions.questions

	results := []models.ClassificationResult{
		acceptedResult(qs[0].ID, true, ""),
		acceptedResult(qs[1].ID, true, ""),
	}
	_, err := f.store.PersistBatch(context.Background(), f.doc, uuid.New(), results)
	require.NoError(t, err)

	assert.Equal(t, models.DocumentStatusCompleted, f.doc.Status)
	assert.NotNil(t, f.doc.CompletedAt)
	assert.Equal(t, models.DocumentStatusCompleted, f.documents.docs[f.doc.ID].Status)
}
