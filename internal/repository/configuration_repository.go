package repository

import (
	"context"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ConfigurationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewConfigurationRepository(db *pgxpool.Pool, logger *zap.Logger) *ConfigurationRepository {
	return &ConfigurationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConfigurationRepository) Create(ctx context.Context, cfg *models.Configuration) error {
	query := squirrel.Insert("soa_configurations").
		Columns("id", "organization_id", "framework", "name", "created_at").
		Values(cfg.ID, cfg.OrganizationID, cfg.Framework, cfg.Name, cfg.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ConfigurationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Configuration, error) {
	query := squirrel.Select("id", "organization_id", "framework", "name", "created_at").
		From("soa_configurations").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cfg models.Configuration
	err = r.db.QueryRow(ctx, sql, args...).Scan(&cfg.ID, &cfg.OrganizationID, &cfg.Framework, &cfg.Name, &cfg.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &cfg, nil
}
