package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comply-rag/internal/dto"
	"comply-rag/internal/models"
	"comply-rag/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentService struct {
	documents DocumentStore
	answers   AnswerVersionStore
	logger    *zap.Logger
}

func NewDocumentService(documents DocumentStore, answers AnswerVersionStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		documents: documents,
		answers:   answers,
		logger:    logger,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// load returns the document if it belongs to the organization.
func (s *DocumentService) load(ctx context.Context, organizationID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.OrganizationID != organizationID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// GetDocument returns the document aggregate
func (s *DocumentService) GetDocument(ctx context.Context, organizationID, documentID uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.load(ctx, organizationID, documentID)
	if err != nil {
		return nil, err
	}

	return &dto.DocumentResponse{
		ID:                doc.ID.String(),
		OrganizationID:    doc.OrganizationID.String(),
		ConfigurationID:   doc.ConfigurationID.String(),
		TotalQuestions:    doc.TotalQuestions,
		AnsweredQuestions: doc.AnsweredQuestions,
		Status:            string(doc.Status),
		CompletedAt:       formatTime(doc.CompletedAt),
		ApprovedAt:        formatTime(doc.ApprovedAt),
		UpdatedAt:         doc.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// ListVersions returns the answer history of one question, newest first
func (s *DocumentService) ListVersions(ctx context.Context, organizationID, documentID, questionID uuid.UUID) ([]*dto.AnswerVersionResponse, error) {
	if _, err := s.load(ctx, organizationID, documentID); err != nil {
		return nil, err
	}

	versions, err := s.answers.ListByQuestion(ctx, documentID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	responses := make([]*dto.AnswerVersionResponse, len(versions))
	for i, v := range versions {
		responses[i] = &dto.AnswerVersionResponse{
			ID:           v.ID.String(),
			QuestionID:   v.QuestionID.String(),
			Version:      v.Version,
			IsLatest:     v.IsLatest,
			IsApplicable: v.IsApplicable,
			AnswerText:   v.AnswerText,
			CreatedBy:    v.CreatedBy.String(),
			CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		}
	}

	return responses, nil
}
