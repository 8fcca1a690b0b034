package service

import (
	"context"
	"fmt"
	"strings"

	"comply-rag/internal/models"

	"go.uber.org/zap"
)

const classifierSystemPrompt = `You are a compliance analyst preparing a Statement of Applicability for an organization.
Decide whether a security control applies to the organization, using ONLY the organizational context provided with the question.

# RULES
- Base the decision strictly on the provided context. Never use outside knowledge or assumptions about the organization.
- If the context does not contain enough information to decide, answer INSUFFICIENT_DATA.
- A justification is required only when the control is NOT applicable. It must explain, from the context, why the control does not apply.
- Write the justification in first-person plural ("We do not...", "Our organization...").

# RESPONSE FORMAT
Respond with ONLY a JSON object, without markdown or comments:
{"isApplicable": "YES" | "NO" | "INSUFFICIENT_DATA", "justification": "required only when isApplicable is NO"}`

// ClassifierService asks the model for an applicability verdict. It calls
// the model exactly once; retries belong to the caller.
type ClassifierService struct {
	completer Completer
	logger    *zap.Logger
}

func NewClassifierService(completer Completer, logger *zap.Logger) *ClassifierService {
	return &ClassifierService{
		completer: completer,
		logger:    logger,
	}
}

func buildClassifierPrompt(question *models.Question, evidence string) string {
	var b strings.Builder

	b.WriteString("Organizational context:\n")
	b.WriteString(evidence)
	b.WriteString("\n\nControl")
	if question.ControlCode != "" {
		b.WriteString(" ")
		b.WriteString(question.ControlCode)
	}
	b.WriteString(":\n")
	if title := strings.TrimSpace(question.Title); title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(question.Text))
	b.WriteString("\n\nIs this control applicable to our organization?")

	return b.String()
}

// Classify returns the model's raw answer for the question. evidence must
// be non-empty.
func (s *ClassifierService) Classify(ctx context.Context, question *models.Question, evidence string) (string, error) {
	if strings.TrimSpace(evidence) == "" {
		return "", ErrNoEvidence
	}

	raw, err := s.completer.Complete(ctx, classifierSystemPrompt, buildClassifierPrompt(question, evidence))
	if err != nil {
		return "", fmt.Errorf("classify question %s: %w", question.ID, err)
	}

	s.logger.Debug("Classifier responded",
		zap.String("question_id", question.ID.String()),
		zap.Int("length", len(raw)),
	)
	return raw, nil
}
