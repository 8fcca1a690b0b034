package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"comply-rag/internal/dto"
	"comply-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type AutoAnswerRunner interface {
	Run(ctx context.Context, req service.RunRequest, emit service.Emitter) (*service.RunSummary, error)
}

type AnswerHandler struct {
	runner AutoAnswerRunner
	logger *zap.Logger
}

func NewAnswerHandler(runner AutoAnswerRunner, logger *zap.Logger) *AnswerHandler {
	return &AnswerHandler{
		runner: runner,
		logger: logger,
	}
}

// AutoAnswer godoc
// @Summary Auto-answer document questions
// @Description Classifies applicability of the document's questions from organizational evidence.
// @Description Streams newline-delimited JSON events: progress, processing, answer, complete or error.
// @Tags answers
// @Accept json
// @Produce application/x-ndjson
// @Param id path string true "Document ID"
// @Param request body dto.AutoAnswerRequest false "Optional question subset"
// @Security Bearer
// @Success 200 {object} dto.CompleteEvent
// @Failure 400 {object} Error
// @Failure 401 {object} Error
// @Failure 422 {object} ValidationError
// @Router /api/v1/documents/{id}/auto-answer [post]
func (h *AnswerHandler) AutoAnswer(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return ErrUnauthorized()
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		return ErrUnauthorized()
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID("document")
	}

	var req dto.AutoAnswerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return ErrBadRequest()
		}
	}
	if errs := req.Validate(); errs != nil {
		return NewValidationError(errs)
	}

	questionIDs := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		qid, err := uuid.Parse(id)
		if err != nil {
			return ErrInvalidID("question")
		}
		questionIDs = append(questionIDs, qid)
	}

	runReq := service.RunRequest{
		DocumentID:     documentID,
		OrganizationID: orgID,
		UserID:         userID,
		QuestionIDs:    questionIDs,
		OnlyUnanswered: req.OnlyUnanswered,
	}
	logger := h.logger.With(zap.String("document_id", documentID.String()))

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	// the run outlives the handler; it must not touch c
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		emit := func(event dto.Event) error {
			line, err := json.Marshal(event)
			if err != nil {
				return err
			}
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				return err
			}
			return w.Flush()
		}

		if _, err := h.runner.Run(context.Background(), runReq, emit); err != nil {
			if errors.Is(err, service.ErrDocumentNotFound) || errors.Is(err, service.ErrConfigurationNotFound) ||
				errors.Is(err, service.ErrOrganizationNotFound) {
				return
			}
			logger.Error("Auto-answer run failed", zap.Error(err))
		}
	}))

	return nil
}
