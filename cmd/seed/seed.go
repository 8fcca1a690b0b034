package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"comply-rag/internal/models"
	"comply-rag/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const maxChunkChars = 1500

type SeedFile struct {
	Organization  SeedOrganization  `yaml:"organization" validate:"required"`
	Configuration SeedConfiguration `yaml:"configuration" validate:"required"`
	Document      SeedDocument      `yaml:"document"`
	Evidence      []SeedEvidence    `yaml:"evidence" validate:"dive"`
}

type SeedOrganization struct {
	ID          string `yaml:"id" validate:"omitempty,uuid"`
	Name        string `yaml:"name" validate:"required"`
	FullyRemote bool   `yaml:"fully_remote"`
}

type SeedConfiguration struct {
	ID        string         `yaml:"id" validate:"omitempty,uuid"`
	Framework string         `yaml:"framework" validate:"required"`
	Name      string         `yaml:"name" validate:"required"`
	Questions []SeedQuestion `yaml:"questions" validate:"required,min=1,dive"`
}

type SeedQuestion struct {
	ControlCode string `yaml:"control_code" validate:"required"`
	Title       string `yaml:"title"`
	Text        string `yaml:"text" validate:"required"`
}

type SeedDocument struct {
	ID string `yaml:"id" validate:"omitempty,uuid"`
}

type SeedEvidence struct {
	SourceType string `yaml:"source_type" validate:"required,oneof=policy context document manual_answer knowledge_base"`
	SourceID   string `yaml:"source_id" validate:"required"`
	Label      string `yaml:"label"`
	Content    string `yaml:"content" validate:"required"`
}

var validate = validator.New()

func parseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate.Struct(&seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

type seedRecords struct {
	organization  *models.Organization
	configuration *models.Configuration
	questions     []*models.Question
	document      *models.Document
	chunks        []*models.KnowledgeChunk
}

func idOrNew(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}

// records converts the seed file into rows. Evidence content is split into
// chunks of at most maxChunkChars on paragraph boundaries.
func (s *SeedFile) records(now time.Time) (*seedRecords, error) {
	orgID, err := idOrNew(s.Organization.ID)
	if err != nil {
		return nil, fmt.Errorf("organization id: %w", err)
	}
	configID, err := idOrNew(s.Configuration.ID)
	if err != nil {
		return nil, fmt.Errorf("configuration id: %w", err)
	}
	docID, err := idOrNew(s.Document.ID)
	if err != nil {
		return nil, fmt.Errorf("document id: %w", err)
	}

	r := &seedRecords{
		organization: &models.Organization{ID: orgID, Name: s.Organization.Name, FullyRemote: s.Organization.FullyRemote, CreatedAt: now},
		configuration: &models.Configuration{
			ID: configID, OrganizationID: orgID, Framework: s.Configuration.Framework, Name: s.Configuration.Name, CreatedAt: now,
		},
	}

	for i, q := range s.Configuration.Questions {
		r.questions = append(r.questions, &models.Question{
			ID:              uuid.New(),
			ConfigurationID: configID,
			Position:        i,
			ControlCode:     strings.TrimSpace(q.ControlCode),
			Title:           strings.TrimSpace(q.Title),
			Text:            strings.TrimSpace(q.Text),
			UpdatedAt:       now,
		})
	}

	r.document = &models.Document{
		ID:              docID,
		OrganizationID:  orgID,
		ConfigurationID: configID,
		TotalQuestions:  len(r.questions),
		Status:          models.StatusFor(0, len(r.questions)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, e := range s.Evidence {
		for _, part := range splitContent(e.Content, maxChunkChars) {
			r.chunks = append(r.chunks, &models.KnowledgeChunk{
				ID:             uuid.New(),
				OrganizationID: orgID,
				SourceType:     models.SourceType(e.SourceType),
				SourceID:       e.SourceID,
				SourceLabel:    strings.TrimSpace(e.Label),
				Content:        part,
				CreatedAt:      now,
			})
		}
	}

	return r, nil
}

// splitContent groups paragraphs into pieces of at most limit bytes. A
// single paragraph longer than limit becomes its own piece.
func splitContent(content string, limit int) []string {
	var (
		parts   []string
		current strings.Builder
	)
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(p) > limit {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func importRecords(ctx context.Context, db *pgxpool.Pool, r *seedRecords, logger *zap.Logger) error {
	if err := repository.NewOrganizationRepository(db, logger).Upsert(ctx, r.organization); err != nil {
		return fmt.Errorf("organization: %w", err)
	}
	if err := repository.NewConfigurationRepository(db, logger).Create(ctx, r.configuration); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if err := repository.NewQuestionRepository(db, logger).CreateBatch(ctx, r.questions); err != nil {
		return fmt.Errorf("questions: %w", err)
	}
	if err := repository.NewDocumentRepository(db, logger).Create(ctx, r.document); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := repository.NewKnowledgeRepository(db, logger).CreateBatch(ctx, r.chunks); err != nil {
		return fmt.Errorf("evidence: %w", err)
	}

	logger.Info("Seed records imported",
		zap.String("organization", r.organization.Name),
		zap.Bool("fully_remote", r.organization.FullyRemote),
	)
	return nil
}
