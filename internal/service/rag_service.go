package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"comply-rag/internal/models"
	"comply-rag/pkg/config"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 10

// RAGService retrieves organizational evidence and renders it into prompt context.
type RAGService struct {
	knowledge KnowledgeStore
	embedder  Embedder
	tokens    TokenCounter
	config    *config.RAGConfig
	logger    *zap.Logger
}

func NewRAGService(knowledge KnowledgeStore, embedder Embedder, tokens TokenCounter, cfg *config.RAGConfig, logger *zap.Logger) *RAGService {
	return &RAGService{
		knowledge: knowledge,
		embedder:  embedder,
		tokens:    tokens,
		config:    cfg,
		logger:    logger,
	}
}

// Search embeds the query and returns the organization's closest evidence,
// ordered by descending relevance.
func (s *RAGService) Search(ctx context.Context, query string, organizationID uuid.UUID, topK int) ([]models.EvidenceChunk, error) {
	if topK <= 0 {
		topK = s.config.TopK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.knowledge.SearchSimilar(ctx, organizationID, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %w", err)
	}

	s.logger.Debug("Knowledge search completed",
		zap.String("organization_id", organizationID.String()),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// SearchBatch runs Search for every query concurrently, at most
// BatchConcurrency at a time, with the configured TopK. The result slice
// is aligned with queries. Any failure fails the whole batch.
func (s *RAGService) SearchBatch(ctx context.Context, queries []string, organizationID uuid.UUID) ([][]models.EvidenceChunk, error) {
	results := make([][]models.EvidenceChunk, len(queries))

	limit := s.config.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range queries {
		g.Go(func() error {
			chunks, err := s.Search(gctx, q, organizationID, s.config.TopK)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// chunkHeader is the provenance line shown above a chunk in the prompt.
func chunkHeader(chunk models.EvidenceChunk) string {
	if name := sourceName(chunk); name != "" {
		return name
	}
	if chunk.SourceType != "" {
		return "Source: " + string(chunk.SourceType)
	}
	return "Source"
}

// BuildContext renders chunks as "[i] <header>\n<content>" blocks separated
// by blank lines. With a positive MaxContextTokens, chunks are added in
// order until the next one would exceed the budget; the first chunk is
// always kept.
func (s *RAGService) BuildContext(chunks []models.EvidenceChunk) string {
	budget := 0
	if s.config != nil {
		budget = s.config.MaxContextTokens
	}
	return AssembleContext(chunks, s.tokens, budget)
}

func AssembleContext(chunks []models.EvidenceChunk, tokens TokenCounter, budget int) string {
	blocks := make([]string, 0, len(chunks))
	used := 0

	for i, chunk := range chunks {
		block := "[" + strconv.Itoa(i+1) + "] " + chunkHeader(chunk) + "\n" + strings.TrimSpace(chunk.Content)

		if budget > 0 && tokens != nil {
			n := tokens.Count(block)
			if len(blocks) > 0 && used+n > budget {
				break
			}
			used += n
		}
		blocks = append(blocks, block)
	}

	return strings.Join(blocks, "\n\n")
}

type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts cl100k_base tokens. The encoding is loaded on
// first use; if it cannot be loaded, len/4 is used instead.
type TiktokenCounter struct {
	once   sync.Once
	enc    *tiktoken.Tiktoken
	logger *zap.Logger
}

func NewTiktokenCounter(logger *zap.Logger) *TiktokenCounter {
	return &TiktokenCounter{logger: logger}
}

func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			c.logger.Warn("Failed to load tiktoken encoding, using length estimate", zap.Error(err))
			return
		}
		c.enc = enc
	})

	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
