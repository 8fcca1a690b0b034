package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AutoAnswerRequest struct {
	QuestionIDs    []string `json:"questionIds" validate:"omitempty,max=500,dive,uuid"`
	OnlyUnanswered bool     `json:"onlyUnanswered"`
}

// Validate returns a field -> failed tag map, or nil when the request is valid.
func (r *AutoAnswerRequest) Validate() map[string]string {
	if err := validate.Struct(r); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return map[string]string{"request": err.Error()}
		}
		out := make(map[string]string, len(errs))
		for _, e := range errs {
			out[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return out
	}
	return nil
}
