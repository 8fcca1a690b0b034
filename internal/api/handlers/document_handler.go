package handlers

import (
	"context"
	"errors"

	"comply-rag/internal/dto"
	"comply-rag/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentReader interface {
	GetDocument(ctx context.Context, organizationID, documentID uuid.UUID) (*dto.DocumentResponse, error)
	ListVersions(ctx context.Context, organizationID, documentID, questionID uuid.UUID) ([]*dto.AnswerVersionResponse, error)
}

type DocumentHandler struct {
	docService DocumentReader
	logger     *zap.Logger
}

func NewDocumentHandler(docService DocumentReader, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// GetDocument godoc
// @Summary Get a Statement of Applicability document
// @Description Returns answer counters, status and approval of the document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} Error
// @Failure 401 {object} Error
// @Failure 404 {object} Error
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	orgID, err := getOrganizationID(c)
	if err != nil {
		return ErrUnauthorized()
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID("document")
	}

	doc, err := h.docService.GetDocument(c.Context(), orgID, documentID)
	if err != nil {
		return h.serviceError(err, "Failed to get document")
	}

	return c.JSON(doc)
}

// ListVersions godoc
// @Summary List answer versions of a question
// @Description Returns the append-only answer history of one question, newest first
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Param questionId path string true "Question ID"
// @Security Bearer
// @Success 200 {array} dto.AnswerVersionResponse
// @Failure 400 {object} Error
// @Failure 401 {object} Error
// @Failure 404 {object} Error
// @Router /api/v1/documents/{id}/questions/{questionId}/versions [get]
func (h *DocumentHandler) ListVersions(c *fiber.Ctx) error {
	orgID, err := getOrganizationID(c)
	if err != nil {
		return ErrUnauthorized()
	}

	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID("document")
	}
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return ErrInvalidID("question")
	}

	versions, err := h.docService.ListVersions(c.Context(), orgID, documentID, questionID)
	if err != nil {
		return h.serviceError(err, "Failed to list answer versions")
	}

	return c.JSON(versions)
}

func (h *DocumentHandler) serviceError(err error, msg string) error {
	if errors.Is(err, service.ErrDocumentNotFound) {
		return NewError(fiber.StatusNotFound, err.Error())
	}
	h.logger.Error(msg, zap.Error(err))
	return NewError(fiber.StatusInternalServerError, msg)
}
