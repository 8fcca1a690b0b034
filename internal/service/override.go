package service

import (
	"strings"

	"comply-rag/internal/models"
	"comply-rag/pkg/config"
)

// RemoteOverride exempts physical-security controls for fully remote
// organizations without retrieval or a model call.
type RemoteOverride struct {
	physicalGroup string
	justification string
}

func NewRemoteOverride(cfg *config.AnswerConfig) *RemoteOverride {
	justification := cfg.RemoteJustification
	if justification == "" {
		justification = config.DefaultRemoteJustification
	}
	return &RemoteOverride{
		physicalGroup: strings.TrimSpace(cfg.PhysicalControlGroup),
		justification: justification,
	}
}

// controlGroup returns the top-level numeric group of a control code,
// e.g. "7" for "A.7.1.2" or "7.4".
func controlGroup(controlCode string) string {
	code := strings.TrimSpace(controlCode)
	if len(code) > 1 && (code[0] == 'A' || code[0] == 'a') && code[1] == '.' {
		code = code[2:]
	}
	group, _, _ := strings.Cut(code, ".")
	return strings.TrimSpace(group)
}

// Apply returns the fixed result and true when the rule matches.
func (o *RemoteOverride) Apply(fullyRemote bool, question *models.Question) (models.ClassificationResult, bool) {
	if !fullyRemote || o.physicalGroup == "" {
		return models.ClassificationResult{}, false
	}
	if controlGroup(question.ControlCode) != o.physicalGroup {
		return models.ClassificationResult{}, false
	}

	applicable := false
	justification := o.justification
	return models.ClassificationResult{
		QuestionID:    question.ID,
		IsApplicable:  &applicable,
		Justification: &justification,
		SourcesUsed:   []models.Source{},
		Succeeded:     true,
	}, true
}
