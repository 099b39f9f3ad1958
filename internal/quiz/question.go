package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/sequence"
)

// Option is one answer choice. For sequence questions Date is the option's
// effective year, shown so the learner can place the prompt event.
type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Date *int   `json:"date,omitempty"`
}

// Question is a generated quiz question together with its answer.
// Sequence questions carry SequenceAnswer; multiple-choice questions carry
// CorrectOptionID.
type Question struct {
	Kind            Kind             `json:"kind"`
	SubjectID       int64            `json:"subject_id"`
	Prompt          string           `json:"prompt"`
	Options         []Option         `json:"options"`
	SequenceAnswer  *sequence.Answer `json:"sequence_answer,omitempty"`
	CorrectOptionID *int64           `json:"correct_option_id,omitempty"`
}

// AnswerSubmission is a learner's response to a question.
type AnswerSubmission struct {
	SubjectID int64 `json:"subject_id" validate:"gt=0"`
	Skipped   bool  `json:"skipped,omitempty"`

	// Sequence questions: the option ids shown and where the learner placed the prompt.
	OptionIDs []int64          `json:"option_ids,omitempty" validate:"max=100,dive,gt=0"`
	Placement *sequence.Answer `json:"placement,omitempty"`

	// Multiple-choice questions: the chosen option.
	OptionID *int64 `json:"option_id,omitempty" validate:"omitempty,gt=0"`
}

var validate = validator.New()

// Validate checks the submission's shape. Whether it fits the question kind
// is decided when it is scored.
func (s AnswerSubmission) Validate() error {
	if err := validate.Struct(s); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "invalid answer submission: %v", err)
	}
	return nil
}
