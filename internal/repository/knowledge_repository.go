package repository

import (
	"context"

	"comply-rag/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type KnowledgeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

func embeddingArg(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func (r *KnowledgeRepository) CreateBatch(ctx context.Context, chunks []*models.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	builder := squirrel.Insert("knowledge_chunks").
		Columns("id", "organization_id", "source_type", "source_id", "source_label", "content", "embedding", "created_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, kc := range chunks {
		builder = builder.Values(kc.ID, kc.OrganizationID, kc.SourceType, kc.SourceID, kc.SourceLabel, kc.Content,
			embeddingArg(kc.Embedding), kc.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func missingEmbeddingsQuery(organizationID uuid.UUID, limit int) squirrel.SelectBuilder {
	return squirrel.Select("id", "organization_id", "source_type", "source_id", "source_label", "content", "created_at").
		From("knowledge_chunks").
		Where(squirrel.Eq{"organization_id": organizationID, "embedding": nil}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
}

// ListMissingEmbeddings returns chunks of the organization that have not been embedded yet.
func (r *KnowledgeRepository) ListMissingEmbeddings(ctx context.Context, organizationID uuid.UUID, limit int) ([]*models.KnowledgeChunk, error) {
	sql, args, err := missingEmbeddingsQuery(organizationID, limit).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.KnowledgeChunk
	for rows.Next() {
		var kc models.KnowledgeChunk
		if err := rows.Scan(&kc.ID, &kc.OrganizationID, &kc.SourceType, &kc.SourceID, &kc.SourceLabel, &kc.Content, &kc.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &kc)
	}

	return chunks, rows.Err()
}

func (r *KnowledgeRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	query := squirrel.Update("knowledge_chunks").
		Set("embedding", pgvector.NewVector(embedding)).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func searchSimilarQuery(organizationID uuid.UUID, embedding []float32, topK int) squirrel.SelectBuilder {
	vec := pgvector.NewVector(embedding)
	return squirrel.Select("source_type", "source_id", "source_label", "content").
		Column(squirrel.Expr("1 - (embedding <=> ?) AS relevance", vec)).
		From("knowledge_chunks").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.NotEq{"embedding": nil}).
		OrderByClause("embedding <=> ?", vec).
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)
}

// SearchSimilar runs a cosine-distance search scoped to one organization.
// Results are ordered by descending relevance.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, organizationID uuid.UUID, embedding []float32, topK int) ([]models.EvidenceChunk, error) {
	sql, args, err := searchSimilarQuery(organizationID, embedding, topK).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.EvidenceChunk
	for rows.Next() {
		var ec models.EvidenceChunk
		if err := rows.Scan(&ec.SourceType, &ec.SourceID, &ec.SourceLabel, &ec.Content, &ec.RelevanceScore); err != nil {
			return nil, err
		}
		results = append(results, ec)
	}

	return results, rows.Err()
}
