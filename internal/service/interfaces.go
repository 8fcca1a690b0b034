package service

import (
	"context"
	"time"

	"comply-rag/internal/models"

	"github.com/google/uuid"
)

// Consumer-side views of the repositories. The concrete types live in
// internal/repository.

type DocumentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	UpdateCompletion(ctx context.Context, id uuid.UUID, answered, total int, status models.DocumentStatus, completedAt *time.Time) error
}

type ConfigurationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Configuration, error)
}

type OrganizationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

type QuestionStore interface {
	ListByConfiguration(ctx context.Context, configurationID uuid.UUID) ([]*models.Question, error)
	UpdateAnswer(ctx context.Context, questionID uuid.UUID, applicable bool, justification *string) error
	CountAnswered(ctx context.Context, configurationID uuid.UUID) (answered, total int, err error)
}

type AnswerVersionStore interface {
	Latest(ctx context.Context, documentID, questionID uuid.UUID) (*models.AnswerVersion, error)
	Append(ctx context.Context, next, previous *models.AnswerVersion) error
	ListByQuestion(ctx context.Context, documentID, questionID uuid.UUID) ([]*models.AnswerVersion, error)
}

type KnowledgeStore interface {
	SearchSimilar(ctx context.Context, organizationID uuid.UUID, embedding []float32, topK int) ([]models.EvidenceChunk, error)
	ListMissingEmbeddings(ctx context.Context, organizationID uuid.UUID, limit int) ([]*models.KnowledgeChunk, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

// Collaborators of the answer engine.

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type EmbeddingSyncer interface {
	Sync(ctx context.Context, organizationID uuid.UUID) error
}

type Searcher interface {
	Search(ctx context.Context, query string, organizationID uuid.UUID, topK int) ([]models.EvidenceChunk, error)
	SearchBatch(ctx context.Context, queries []string, organizationID uuid.UUID) ([][]models.EvidenceChunk, error)
}

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
