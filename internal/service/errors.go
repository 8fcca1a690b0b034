package service

import "errors"

var (
	ErrDocumentNotFound      = errors.New("document not found")
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrNoEvidence            = errors.New("no evidence found for question")
	ErrEmptyModelResponse    = errors.New("no response from LLM")
)
