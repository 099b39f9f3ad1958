package models

import (
	"strings"

	"github.com/openhome-school/backend/internal/apperrors"
)

// Event is a timeline record. Start is a signed year (negative = BCE);
// FakeStartDate is an approximate placement used only when Start is nil.
type Event struct {
	ID              int64   `json:"id" yaml:"-"`
	Name            string  `json:"name" yaml:"name"`
	Keywords        *string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	PrimarySentence *string `json:"primary_sentence,omitempty" yaml:"primary_sentence,omitempty"`
	Start           *int    `json:"start,omitempty" yaml:"start,omitempty"`
	FakeStartDate   *int    `json:"fake_start_date,omitempty" yaml:"fake_start_date,omitempty"`
	End             *int    `json:"end,omitempty" yaml:"end,omitempty"`
	PeopleGroup     bool    `json:"people_group" yaml:"people_group"`
	CycleWeekID     *int64  `json:"cycle_week_id,omitempty" yaml:"cycle_week_id,omitempty"`
}

// EffectiveDate returns Start if present, else FakeStartDate.
func (e Event) EffectiveDate() (int, error) {
	if e.Start != nil {
		return *e.Start, nil
	}
	if e.FakeStartDate != nil {
		return *e.FakeStartDate, nil
	}
	return 0, apperrors.ErrorWithContextf(apperrors.ErrDataIntegrity,
		"event %d (%q) has neither start nor fake_start_date", e.ID, e.Name)
}

// KeywordList splits the comma-separated Keywords field, trimming blanks.
func (e Event) KeywordList() []string {
	if e.Keywords == nil {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(*e.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Validate checks the invariants an event must satisfy before it is stored.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "event name is required")
	}
	if _, err := e.EffectiveDate(); err != nil {
		return err
	}
	if e.Start != nil && e.End != nil && *e.End < *e.Start {
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput,
			"event %q ends (%d) before it starts (%d)", e.Name, *e.End, *e.Start)
	}
	return nil
}

// CycleWeek is one week of one curriculum cycle.
type CycleWeek struct {
	ID    int64 `json:"id"`
	Cycle int   `json:"cycle"`
	Week  int   `json:"week"`
}
