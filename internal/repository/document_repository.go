package repository

import (
	"context"
	"time"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var documentColumns = []string{
	"id", "organization_id", "configuration_id", "total_questions", "answered_questions",
	"status", "completed_at", "approved_at", "approved_by", "created_at", "updated_at",
}

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := squirrel.Insert("soa_documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.OrganizationID, doc.ConfigurationID, doc.TotalQuestions, doc.AnsweredQuestions,
			doc.Status, doc.CompletedAt, doc.ApprovedAt, doc.ApprovedBy, doc.CreatedAt, doc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("soa_documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var doc models.Document
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&doc.ID, &doc.OrganizationID, &doc.ConfigurationID, &doc.TotalQuestions, &doc.AnsweredQuestions,
		&doc.Status, &doc.CompletedAt, &doc.ApprovedAt, &doc.ApprovedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &doc, nil
}

func updateCompletionQuery(id uuid.UUID, answered, total int, status models.DocumentStatus, completedAt *time.Time) squirrel.UpdateBuilder {
	return squirrel.Update("soa_documents").
		Set("answered_questions", answered).
		Set("total_questions", total).
		Set("status", status).
		Set("completed_at", completedAt).
		Set("approved_at", nil).
		Set("approved_by", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
}

// UpdateCompletion writes the recomputed counters and status. Any prior
// approval is cleared because the answers changed underneath it.
func (r *DocumentRepository) UpdateCompletion(ctx context.Context, id uuid.UUID, answered, total int, status models.DocumentStatus, completedAt *time.Time) error {
	sql, args, err := updateCompletionQuery(id, answered, total, status, completedAt).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
