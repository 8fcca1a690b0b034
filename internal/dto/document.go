package dto

type DocumentResponse struct {
	ID                string  `json:"id"`
	OrganizationID    string  `json:"organization_id"`
	ConfigurationID   string  `json:"configuration_id"`
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	Status            string  `json:"status"`
	CompletedAt       *string `json:"completed_at,omitempty"`
	ApprovedAt        *string `json:"approved_at,omitempty"`
	UpdatedAt         string  `json:"updated_at"`
}

type AnswerVersionResponse struct {
	ID           string  `json:"id"`
	QuestionID   string  `json:"question_id"`
	Version      int     `json:"version"`
	IsLatest     bool    `json:"is_latest"`
	IsApplicable bool    `json:"is_applicable"`
	AnswerText   *string `json:"answer_text"`
	CreatedBy    string  `json:"created_by"`
	CreatedAt    string  `json:"created_at"`
}
