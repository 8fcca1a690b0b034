package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comply-rag/internal/models"
	"comply-rag/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxVersionAttempts = 3

// AnswerStore writes accepted results to the versioned answer log and
// keeps the question and document rows in step with it.
type AnswerStore struct {
	answers   AnswerVersionStore
	questions QuestionStore
	documents DocumentStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewAnswerStore(answers AnswerVersionStore, questions QuestionStore, documents DocumentStore, logger *zap.Logger) *AnswerStore {
	return &AnswerStore{
		answers:   answers,
		questions: questions,
		documents: documents,
		logger:    logger,
		now:       time.Now,
	}
}

// answerText is the stored justification: present only for a NO.
func answerText(result models.ClassificationResult) *string {
	if result.IsApplicable == nil || *result.IsApplicable || result.Justification == nil {
		return nil
	}
	text := sanitizeUTF8(*result.Justification)
	return &text
}

// Persist appends a new latest version for the question. Results that are
// not accepted are skipped and return nil, nil. A concurrent writer that
// takes the next version first makes Persist re-read and try again.
func (s *AnswerStore) Persist(ctx context.Context, documentID, userID uuid.UUID, result models.ClassificationResult) (*models.AnswerVersion, error) {
	if !result.Accepted() {
		return nil, nil
	}

	text := answerText(result)
	applicable := *result.IsApplicable

	var next *models.AnswerVersion
	for attempt := 1; ; attempt++ {
		previous, err := s.answers.Latest(ctx, documentID, result.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest version: %w", err)
		}

		version := 1
		if previous != nil {
			version = previous.Version + 1
		}

		next = &models.AnswerVersion{
			ID:           uuid.New(),
			DocumentID:   documentID,
			QuestionID:   result.QuestionID,
			AnswerText:   text,
			IsApplicable: applicable,
			Version:      version,
			IsLatest:     true,
			CreatedAt:    s.now(),
			CreatedBy:    userID,
		}

		err = s.answers.Append(ctx, next, previous)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrVersionConflict) || attempt >= maxVersionAttempts {
			return nil, fmt.Errorf("failed to append version %d: %w", version, err)
		}

		s.logger.Warn("Answer version conflict, retrying",
			zap.String("question_id", result.QuestionID.String()),
			zap.Int("version", version),
			zap.Int("attempt", attempt),
		)
	}

	if err := s.questions.UpdateAnswer(ctx, result.QuestionID, applicable, text); err != nil {
		return next, fmt.Errorf("failed to update question: %w", err)
	}

	return next, nil
}

// PersistBatch persists every accepted result and then recomputes the
// document. A failed question is logged and does not stop the others.
func (s *AnswerStore) PersistBatch(ctx context.Context, doc *models.Document, userID uuid.UUID, results []models.ClassificationResult) (int, error) {
	persisted := 0
	for _, r := range results {
		v, err := s.Persist(ctx, doc.ID, userID, r)
		if err != nil {
			s.logger.Warn("Failed to persist answer",
				zap.String("document_id", doc.ID.String()),
				zap.String("question_id", r.QuestionID.String()),
				zap.Error(err),
			)
			continue
		}
		if v != nil {
			persisted++
		}
	}

	if err := s.RecomputeDocument(ctx, doc); err != nil {
		return persisted, err
	}
	return persisted, nil
}

// RecomputeDocument derives the document counters and status from its
// questions and clears any approval.
func (s *AnswerStore) RecomputeDocument(ctx context.Context, doc *models.Document) error {
	answered, total, err := s.questions.CountAnswered(ctx, doc.ConfigurationID)
	if err != nil {
		return fmt.Errorf("failed to count answered questions: %w", err)
	}

	status := models.StatusFor(answered, total)
	var completedAt *time.Time
	if status == models.DocumentStatusCompleted {
		now := s.now()
		completedAt = &now
	}

	if err := s.documents.UpdateCompletion(ctx, doc.ID, answered, total, status, completedAt); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	doc.AnsweredQuestions = answered
	doc.TotalQuestions = total
	doc.Status = status
	doc.CompletedAt = completedAt
	doc.ApprovedAt = nil
	doc.ApprovedBy = nil

	s.logger.Info("Document recomputed",
		zap.String("document_id", doc.ID.String()),
		zap.Int("answered", answered),
		zap.Int("total", total),
		zap.String("status", string(status)),
	)
	return nil
}
