package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"comply-rag/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LLMService is the GigaChat backed Completer. Calls are throttled by a
// token bucket shared by every concurrent classification.
type LLMService struct {
	client  *gigago.Client
	config  *config.GigaChatConfig
	logger  *zap.Logger
	limiter *rate.Limiter

	mu     sync.Mutex
	models map[string]*gigago.GenerativeModel // by system prompt
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	logger.Info("Using GigaChat model",
		zap.String("model", cfg.Model),
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", burst),
	)

	return &LLMService{
		client:  client,
		config:  cfg,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		models:  make(map[string]*gigago.GenerativeModel),
	}, nil
}

func (s *LLMService) modelFor(systemPrompt string) *gigago.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.models[systemPrompt]; ok {
		return m
	}

	name := s.config.Model
	if name == "" {
		name = "GigaChat"
	}
	m := s.client.GenerativeModel(name)
	m.SystemInstruction = systemPrompt
	m.Temperature = 0.1
	s.models[systemPrompt] = m
	return m
}

// Complete sends one user message under the given system prompt and returns
// the raw text of the first choice.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: userPrompt},
	}

	resp, err := s.modelFor(systemPrompt).Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyModelResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyModelResponse
	}
	return content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
