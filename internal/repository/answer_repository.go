package repository

import (
	"context"
	"errors"
	"fmt"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var answerColumns = []string{
	"id", "document_id", "question_id", "answer_text", "is_applicable", "version", "is_latest", "created_at", "created_by",
}

// AnswerRepository is the append-only answer log. Rows are never deleted;
// the only mutation is retiring the previous latest row.
type AnswerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAnswerRepository(db *pgxpool.Pool, logger *zap.Logger) *AnswerRepository {
	return &AnswerRepository{
		db:     db,
		logger: logger,
	}
}

func latestAnswerQuery(documentID, questionID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(answerColumns...).
		From("soa_answer_versions").
		Where(squirrel.Eq{"document_id": documentID, "question_id": questionID, "is_latest": true}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)
}

// Latest returns the current latest version, or nil when the question has
// never been answered in this document.
func (r *AnswerRepository) Latest(ctx context.Context, documentID, questionID uuid.UUID) (*models.AnswerVersion, error) {
	sql, args, err := latestAnswerQuery(documentID, questionID).ToSql()
	if err != nil {
		return nil, err
	}

	var v models.AnswerVersion
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&v.ID, &v.DocumentID, &v.QuestionID, &v.AnswerText, &v.IsApplicable, &v.Version, &v.IsLatest, &v.CreatedAt, &v.CreatedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func retireAnswerQuery(previousID uuid.UUID) squirrel.UpdateBuilder {
	return squirrel.Update("soa_answer_versions").
		Set("is_latest", false).
		Where(squirrel.Eq{"id": previousID, "is_latest": true}).
		PlaceholderFormat(squirrel.Dollar)
}

func insertAnswerQuery(v *models.AnswerVersion) squirrel.InsertBuilder {
	return squirrel.Insert("soa_answer_versions").
		Columns(answerColumns...).
		Values(v.ID, v.DocumentID, v.QuestionID, v.AnswerText, v.IsApplicable, v.Version, v.IsLatest, v.CreatedAt, v.CreatedBy).
		PlaceholderFormat(squirrel.Dollar)
}

// Append retires previous (when non-nil) and inserts next in one
// transaction. If previous is no longer the latest row, or next.Version is
// already taken, it returns ErrVersionConflict and nothing is written.
func (r *AnswerRepository) Append(ctx context.Context, next, previous *models.AnswerVersion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if previous != nil {
		sql, args, err := retireAnswerQuery(previous.ID).ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("retire version %d: %w", previous.Version, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	sql, args, err := insertAnswerQuery(next).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("insert version %d: %w", next.Version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByQuestion returns the full version history, newest first.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, documentID, questionID uuid.UUID) ([]*models.AnswerVersion, error) {
	query := squirrel.Select(answerColumns...).
		From("soa_answer_versions").
		Where(squirrel.Eq{"document_id": documentID, "question_id": questionID}).
		OrderBy("version DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*models.AnswerVersion
	for rows.Next() {
		var v models.AnswerVersion
		if err := rows.Scan(
			&v.ID, &v.DocumentID, &v.QuestionID, &v.AnswerText, &v.IsApplicable, &v.Version, &v.IsLatest, &v.CreatedAt, &v.CreatedBy,
		); err != nil {
			return nil, err
		}
		versions = append(versions, &v)
	}

	return versions, rows.Err()
}
