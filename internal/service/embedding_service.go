package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"comply-rag/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OllamaEmbedder calls the Ollama embeddings endpoint.
type OllamaEmbedder struct {
	apiURL     string
	model      string
	dimensions int
	httpClient *http.Client
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewOllamaEmbedder(cfg *config.EmbeddingConfig) *OllamaEmbedder {
	return &OllamaEmbedder{
		apiURL:     cfg.URL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(b))
	}

	var out ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	if e.dimensions > 0 && len(out.Embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(out.Embedding), e.dimensions)
	}

	return normalize(out.Embedding), nil
}

// normalize scales vec to unit length and narrows it to float32.
func normalize(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(vec))
	for i, v := range vec {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

const embeddingSyncPageSize = 100

// EmbeddingService fills in embeddings for knowledge chunks stored without one.
type EmbeddingService struct {
	knowledge KnowledgeStore
	embedder  Embedder
	logger    *zap.Logger
}

func NewEmbeddingService(knowledge KnowledgeStore, embedder Embedder, logger *zap.Logger) *EmbeddingService {
	return &EmbeddingService{
		knowledge: knowledge,
		embedder:  embedder,
		logger:    logger,
	}
}

// Sync embeds every chunk of the organization that has no embedding yet.
// A chunk that fails to embed is skipped and the rest continue; the
// returned error reports how many were skipped.
func (s *EmbeddingService) Sync(ctx context.Context, organizationID uuid.UUID) error {
	embedded, failed := 0, 0
	skip := make(map[uuid.UUID]bool)

	for {
		chunks, err := s.knowledge.ListMissingEmbeddings(ctx, organizationID, embeddingSyncPageSize+len(skip))
		if err != nil {
			return fmt.Errorf("failed to list chunks without embeddings: %w", err)
		}

		progressed := false
		for _, chunk := range chunks {
			if skip[chunk.ID] {
				continue
			}
			progressed = true

			vec, err := s.embedder.Embed(ctx, chunk.Content)
			if err == nil {
				err = s.knowledge.UpdateEmbedding(ctx, chunk.ID, vec)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("Failed to embed knowledge chunk",
					zap.String("chunk_id", chunk.ID.String()),
					zap.Error(err),
				)
				skip[chunk.ID] = true
				failed++
				continue
			}
			embedded++
		}

		if !progressed {
			break
		}
	}

	s.logger.Info("Embedding sync completed",
		zap.String("organization_id", organizationID.String()),
		zap.Int("embedded", embedded),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d chunks could not be embedded", failed)
	}
	return nil
}
