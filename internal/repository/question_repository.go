package repository

import (
	"context"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var questionColumns = []string{
	"id", "configuration_id", "position", "control_code", "title", "text",
	"current_applicability", "current_justification", "updated_at",
}

type QuestionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewQuestionRepository(db *pgxpool.Pool, logger *zap.Logger) *QuestionRepository {
	return &QuestionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	builder := squirrel.Insert("soa_questions").
		Columns(questionColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, q := range questions {
		builder = builder.Values(q.ID, q.ConfigurationID, q.Position, q.ControlCode, q.Title, q.Text,
			q.CurrentApplicability, q.CurrentJustification, q.UpdatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func listQuestionsQuery(configurationID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select(questionColumns...).
		From("soa_questions").
		Where(squirrel.Eq{"configuration_id": configurationID}).
		OrderBy("position ASC").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *QuestionRepository) ListByConfiguration(ctx context.Context, configurationID uuid.UUID) ([]*models.Question, error) {
	sql, args, err := listQuestionsQuery(configurationID).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(
			&q.ID, &q.ConfigurationID, &q.Position, &q.ControlCode, &q.Title, &q.Text,
			&q.CurrentApplicability, &q.CurrentJustification, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}

func updateAnswerQuery(questionID uuid.UUID, applicable bool, justification *string) squirrel.UpdateBuilder {
	return squirrel.Update("soa_questions").
		Set("current_applicability", applicable).
		Set("current_justification", justification).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": questionID}).
		PlaceholderFormat(squirrel.Dollar)
}

// UpdateAnswer stores the resolved applicability on the question row.
func (r *QuestionRepository) UpdateAnswer(ctx context.Context, questionID uuid.UUID, applicable bool, justification *string) error {
	sql, args, err := updateAnswerQuery(questionID, applicable, justification).ToSql()
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

func countAnsweredQuery(configurationID uuid.UUID) squirrel.SelectBuilder {
	return squirrel.Select("COUNT(*)", "COUNT(current_applicability)").
		From("soa_questions").
		Where(squirrel.Eq{"configuration_id": configurationID}).
		PlaceholderFormat(squirrel.Dollar)
}

// CountAnswered returns how many questions of the configuration have a
// resolved applicability, and how many questions it has overall.
func (r *QuestionRepository) CountAnswered(ctx context.Context, configurationID uuid.UUID) (answered, total int, err error) {
	sql, args, err := countAnsweredQuery(configurationID).ToSql()
	if err != nil {
		return 0, 0, err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total, &answered); err != nil {
		return 0, 0, err
	}
	return answered, total, nil
}
