package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comply-rag/internal/dto"
	"comply-rag/internal/models"
	"comply-rag/internal/repository"
	"comply-rag/pkg/config"
	applog "comply-rag/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Emitter delivers one event to the consumer. A non-nil error means the
// consumer is gone.
type Emitter func(event dto.Event) error

type ContextBuilder interface {
	BuildContext(chunks []models.EvidenceChunk) string
}

type RunRequest struct {
	DocumentID     uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	QuestionIDs    []uuid.UUID // empty means every question of the configuration
	OnlyUnanswered bool
}

// Outcome is the result of one question's pipeline. Err set means the
// question failed and Result is ignored.
type Outcome struct {
	Index  int
	Result models.ClassificationResult
	Err    error
}

type RunSummary struct {
	Total        int
	Answered     int
	Failed       int
	Persisted    int
	StreamClosed bool
}

// AutoAnswerService runs the answer engine over a document's questions and
// streams lifecycle events while it goes.
type AutoAnswerService struct {
	documents      DocumentStore
	configurations ConfigurationStore
	organizations  OrganizationStore
	questions      QuestionStore
	syncer         EmbeddingSyncer
	searcher       Searcher
	contexts       ContextBuilder
	classifier     *ClassifierService
	override       *RemoteOverride
	store          *AnswerStore
	config         *config.AnswerConfig
	logger         *zap.Logger
}

func NewAutoAnswerService(
	documents DocumentStore,
	configurations ConfigurationStore,
	organizations OrganizationStore,
	questions QuestionStore,
	syncer EmbeddingSyncer,
	searcher Searcher,
	contexts ContextBuilder,
	classifier *ClassifierService,
	override *RemoteOverride,
	store *AnswerStore,
	cfg *config.AnswerConfig,
	logger *zap.Logger,
) *AutoAnswerService {
	return &AutoAnswerService{
		documents:      documents,
		configurations: configurations,
		organizations:  organizations,
		questions:      questions,
		syncer:         syncer,
		searcher:       searcher,
		contexts:       contexts,
		classifier:     classifier,
		override:       override,
		store:          store,
		config:         cfg,
		logger:         logger,
	}
}

// run is the per-run state. Only the goroutine executing Run touches it.
type run struct {
	req       RunRequest
	doc       *models.Document
	org       *models.Organization
	questions []*models.Question
	results   []models.ClassificationResult
	emit      Emitter
	closed    bool
	logger    *zap.Logger
}

func (r *run) send(event dto.Event) {
	if r.closed {
		return
	}
	if err := r.emit(event); err != nil {
		r.closed = true
		r.logger.Warn("Event stream closed by consumer", zap.String("event", event.EventType()), zap.Error(err))
	}
}

// Run answers the selected questions of a document. A precondition failure
// is emitted as a single error event and returned; everything after that
// is reported through events and the summary.
func (s *AutoAnswerService) Run(ctx context.Context, req RunRequest, emit Emitter) (*RunSummary, error) {
	logger := applog.ForDocument(s.logger, req.DocumentID.String(), req.OrganizationID.String())

	r, err := s.prepare(ctx, req, emit, logger)
	if err != nil {
		logger.Info("Auto-answer precondition failed", zap.Error(err))
		_ = emit(dto.NewErrorEvent(err.Error()))
		return nil, err
	}

	total := len(r.questions)
	completed := 0
	for _, q := range r.questions {
		if q.Answered() {
			completed++
		}
	}
	r.send(dto.NewProgressEvent(total, completed))
	for i, q := range r.questions {
		r.send(dto.NewProcessingEvent(q.ID.String(), i))
	}

	if r.closed {
		return &RunSummary{Total: total, StreamClosed: true}, nil
	}

	if err := s.syncer.Sync(ctx, req.OrganizationID); err != nil {
		logger.Warn("Embedding sync failed, continuing with existing embeddings", zap.Error(err))
	}

	groupSize := s.config.GroupSize
	if groupSize < 1 {
		groupSize = 1
	}

	for start, group := 0, 1; start < total; start, group = start+groupSize, group+1 {
		if r.closed {
			break
		}
		end := min(start+groupSize, total)
		logger.Debug("Processing group", zap.Int("group", group), zap.Int("size", end-start))
		s.runGroup(ctx, r, start, end)
	}

	summary := &RunSummary{Total: total}
	answers := make([]dto.AnswerEvent, 0, total)
	for i, res := range r.results {
		if res.IsApplicable != nil {
			summary.Answered++
		} else {
			summary.Failed++
		}
		answers = append(answers, dto.NewAnswerEvent(i, res))
	}

	if !r.closed {
		r.send(dto.CompleteEvent{
			Type:     dto.EventComplete,
			Total:    total,
			Answered: summary.Answered,
			Failed:   summary.Failed,
			Results:  answers,
		})
	}

	if r.closed {
		summary.StreamClosed = true
		logger.Warn("Consumer disconnected, discarding results", zap.Int("answered", summary.Answered))
		return summary, nil
	}

	persisted, err := s.store.PersistBatch(ctx, r.doc, req.UserID, r.results)
	summary.Persisted = persisted
	if err != nil {
		logger.Error("Failed to finalize document", zap.Error(err))
	}

	logger.Info("Auto-answer run completed",
		zap.Int("total", total),
		zap.Int("answered", summary.Answered),
		zap.Int("failed", summary.Failed),
		zap.Int("persisted", persisted),
	)
	return summary, nil
}

func (s *AutoAnswerService) prepare(ctx context.Context, req RunRequest, emit Emitter, logger *zap.Logger) (*run, error) {
	doc, err := s.documents.GetByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.OrganizationID != req.OrganizationID {
		return nil, ErrDocumentNotFound
	}

	if _, err := s.configurations.GetByID(ctx, doc.ConfigurationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	org, err := s.organizations.GetByID(ctx, doc.OrganizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	all, err := s.questions.ListByConfiguration(ctx, doc.ConfigurationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	selected := selectQuestions(all, req.QuestionIDs, req.OnlyUnanswered)
	if len(req.QuestionIDs) > 0 && len(selected) < len(req.QuestionIDs) && !req.OnlyUnanswered {
		logger.Info("Ignoring question ids outside the configuration",
			zap.Int("requested", len(req.QuestionIDs)),
			zap.Int("matched", len(selected)),
		)
	}

	return &run{
		req:       req,
		doc:       doc,
		org:       org,
		questions: selected,
		results:   make([]models.ClassificationResult, len(selected)),
		emit:      emit,
		logger:    logger,
	}, nil
}

// selectQuestions keeps configuration order.
func selectQuestions(all []*models.Question, ids []uuid.UUID, onlyUnanswered bool) []*models.Question {
	var wanted map[uuid.UUID]bool
	if len(ids) > 0 {
		wanted = make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
	}

	selected := make([]*models.Question, 0, len(all))
	for _, q := range all {
		if wanted != nil && !wanted[q.ID] {
			continue
		}
		if onlyUnanswered && q.Answered() {
			continue
		}
		selected = append(selected, q)
	}
	return selected
}

// runGroup answers questions [start, end) concurrently. Outcomes arrive on
// a channel drained here, so answer events go out as soon as each question
// resolves.
func (s *AutoAnswerService) runGroup(ctx context.Context, r *run, start, end int) {
	outcomes := make(chan Outcome, end-start)

	var pending []int
	for i := start; i < end; i++ {
		if res, ok := s.override.Apply(r.org.FullyRemote, r.questions[i]); ok {
			outcomes <- Outcome{Index: i, Result: res}
			continue
		}
		pending = append(pending, i)
	}

	prefetched := s.prefetch(ctx, r, pending)

	g := new(errgroup.Group)
	g.SetLimit(end - start)
	for n, i := range pending {
		var evidence []models.EvidenceChunk
		if prefetched != nil {
			evidence = prefetched[n]
		}
		g.Go(func() error {
			outcomes <- s.answerQuestion(ctx, r, i, evidence, prefetched != nil)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		q := r.questions[o.Index]
		res := o.Result
		if o.Err != nil {
			r.logger.Warn("Question classification failed",
				zap.String("question_id", q.ID.String()),
				zap.Error(o.Err),
			)
			res = models.FailedResult(q.ID)
		}
		res.QuestionID = q.ID
		r.results[o.Index] = res
		r.send(dto.NewAnswerEvent(o.Index, res))
	}
}

// prefetch retrieves evidence for all pending questions in one batch. It
// returns nil when the batch fails, in which case every question searches
// on its own.
func (s *AutoAnswerService) prefetch(ctx context.Context, r *run, pending []int) [][]models.EvidenceChunk {
	if len(pending) == 0 {
		return nil
	}

	queries := make([]string, len(pending))
	for n, i := range pending {
		queries[n] = r.questions[i].SearchQuery()
	}

	evidence, err := s.searcher.SearchBatch(ctx, queries, r.req.OrganizationID)
	if err != nil || len(evidence) != len(queries) {
		r.logger.Warn("Batch retrieval failed, falling back to per-question search",
			zap.Int("queries", len(queries)),
			zap.Error(err),
		)
		return nil
	}
	return evidence
}

// answerQuestion runs retrieval, classification and parsing for one
// question, retrying failed attempts with exponential backoff. Panics are
// turned into a failed Outcome.
func (s *AutoAnswerService) answerQuestion(ctx context.Context, r *run, index int, evidence []models.EvidenceChunk, havePrefetched bool) (out Outcome) {
	q := r.questions[index]
	out.Index = index

	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Index: index, Err: fmt.Errorf("panic while answering question: %v", p)}
		}
	}()

	attempts := s.config.ClassifyAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.config.RetryBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 || !havePrefetched {
			evidence, err = s.searcher.Search(ctx, q.SearchQuery(), r.req.OrganizationID, 0)
			if err != nil {
				err = fmt.Errorf("retrieval: %w", err)
			}
		}

		if err == nil {
			var res models.ClassificationResult
			res, err = s.classify(ctx, q, evidence)
			if err == nil {
				out.Result = res
				return out
			}
		}

		if errors.Is(err, ErrNoEvidence) || attempt == attempts {
			break
		}

		r.logger.Debug("Retrying question",
			zap.String("question_id", q.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			out.Err = ctx.Err()
			return out
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	out.Err = err
	return out
}

// classify turns evidence into a result. No evidence means no model call.
func (s *AutoAnswerService) classify(ctx context.Context, q *models.Question, evidence []models.EvidenceChunk) (models.ClassificationResult, error) {
	if len(evidence) == 0 {
		return models.ClassificationResult{}, ErrNoEvidence
	}

	raw, err := s.classifier.Classify(ctx, q, s.contexts.BuildContext(evidence))
	if err != nil {
		return models.ClassificationResult{}, err
	}

	res := ParseClassification(raw)
	res.QuestionID = q.ID
	res.SourcesUsed = DeduplicateSources(evidence)
	return res, nil
}
