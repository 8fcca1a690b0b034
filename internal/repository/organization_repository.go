package repository

import (
	"context"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type OrganizationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewOrganizationRepository(db *pgxpool.Pool, logger *zap.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *OrganizationRepository) Upsert(ctx context.Context, org *models.Organization) error {
	query := squirrel.Insert("organizations").
		Columns("id", "name", "fully_remote", "created_at").
		Values(org.ID, org.Name, org.FullyRemote, org.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, fully_remote = EXCLUDED.fully_remote").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := squirrel.Select("id", "name", "fully_remote", "created_at").
		From("organizations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var org models.Organization
	err = r.db.QueryRow(ctx, sql, args...).Scan(&org.ID, &org.Name, &org.FullyRemote, &org.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &org, nil
}
