package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS organizations (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	fully_remote BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS soa_configurations (
	id UUID PRIMARY KEY,
	organization_id UUID NOT NULL REFERENCES organizations(id),
	framework TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS soa_questions (
	id UUID PRIMARY KEY,
	configuration_id UUID NOT NULL REFERENCES soa_configurations(id),
	position INT NOT NULL,
	control_code TEXT NOT NULL,
	title TEXT NOT NULL,
	text TEXT NOT NULL,
	current_applicability BOOLEAN,
	current_justification TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_soa_questions_configuration ON soa_questions(configuration_id, position);

CREATE TABLE IF NOT EXISTS soa_documents (
	id UUID PRIMARY KEY,
	organization_id UUID NOT NULL REFERENCES organizations(id),
	configuration_id UUID NOT NULL REFERENCES soa_configurations(id),
	total_questions INT NOT NULL DEFAULT 0,
	answered_questions INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'in_progress' CHECK (status IN ('in_progress', 'completed')),
	completed_at TIMESTAMPTZ,
	approved_at TIMESTAMPTZ,
	approved_by UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS soa_answer_versions (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES soa_documents(id),
	question_id UUID NOT NULL REFERENCES soa_questions(id),
	answer_text TEXT,
	is_applicable BOOLEAN NOT NULL,
	version INT NOT NULL CHECK (version >= 1),
	is_latest BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by UUID NOT NULL,
	UNIQUE (document_id, question_id, version)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_soa_answer_versions_latest
	ON soa_answer_versions(document_id, question_id) WHERE is_latest;

CREATE TABLE IF NOT EXISTS knowledge_chunks (
	id UUID PRIMARY KEY,
	organization_id UUID NOT NULL REFERENCES organizations(id),
	source_type TEXT NOT NULL,
	source_id TEXT NOT NULL,
	source_label TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	embedding vector(%d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_org ON knowledge_chunks(organization_id);
`

// Schema renders the DDL for the given embedding width.
func Schema(embeddingDimensions int) string {
	return fmt.Sprintf(schemaTemplate, embeddingDimensions)
}

// Migrate creates all tables idempotently.
func Migrate(ctx context.Context, db *pgxpool.Pool, embeddingDimensions int, logger *zap.Logger) error {
	if _, err := db.Exec(ctx, Schema(embeddingDimensions)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("Database schema ready", zap.Int("embedding_dimensions", embeddingDimensions))
	return nil
}
