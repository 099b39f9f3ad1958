package sequence

import (
	"encoding/json"
	"fmt"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/models"
)

// Answer is where the target event belongs in a sorted option list: either
// before every option, or directly after one identified option.
// The zero value is FirstInSequence.
type Answer struct {
	after   int64
	hasPrev bool
}

// FirstInSequence is the answer for a target that precedes every option.
func FirstInSequence() Answer {
	return Answer{}
}

// AfterOption is the answer for a target that directly follows option id.
func AfterOption(id int64) Answer {
	return Answer{after: id, hasPrev: true}
}

// IsFirst reports whether the target precedes every option.
func (a Answer) IsFirst() bool {
	return !a.hasPrev
}

// AfterID returns the preceding option's id, or false for FirstInSequence.
func (a Answer) AfterID() (int64, bool) {
	return a.after, a.hasPrev
}

func (a Answer) String() string {
	if a.IsFirst() {
		return "first"
	}
	return fmt.Sprintf("after:%d", a.after)
}

const (
	positionFirst = "first"
	positionAfter = "after"
)

type answerJSON struct {
	Position string `json:"position"`
	OptionID *int64 `json:"option_id,omitempty"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsFirst() {
		return json.Marshal(answerJSON{Position: positionFirst})
	}
	id := a.after
	return json.Marshal(answerJSON{Position: positionAfter, OptionID: &id})
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "decode answer: %v", err)
	}
	switch raw.Position {
	case positionFirst:
		if raw.OptionID != nil {
			return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "answer position %q takes no option_id", raw.Position)
		}
		*a = FirstInSequence()
	case positionAfter:
		if raw.OptionID == nil {
			return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "answer position %q requires option_id", raw.Position)
		}
		*a = AfterOption(*raw.OptionID)
	default:
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown answer position %q", raw.Position)
	}
	return nil
}

// DeriveAnswer scans chronologically sorted options and returns the last one
// dated strictly before targetDate. An option dated equal to the target ends
// the scan, so ties place the target before that option.
func DeriveAnswer(targetDate int, sorted []models.Event) (Answer, error) {
	answer := FirstInSequence()
	for _, option := range sorted {
		d, err := option.EffectiveDate()
		if err != nil {
			return Answer{}, err
		}
		if d >= targetDate {
			break
		}
		answer = AfterOption(option.ID)
	}
	return answer, nil
}
