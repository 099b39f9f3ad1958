package models

import "github.com/openhome-school/backend/internal/apperrors"

// DefaultCount is the option-set size used when none is requested.
const DefaultCount = 5

// MaxCount bounds the option-set size of one question.
const MaxCount = 100

// WeekRange is an inclusive range of cycle weeks.
type WeekRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// YearRange is an inclusive range over an event's start year.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Criteria scopes which records a quiz question may draw from. It is a value
// type: options return modified copies and never share slices with the input.
type Criteria struct {
	Weeks               *WeekRange `json:"weeks,omitempty"`
	Cycles              []int      `json:"cycles,omitempty"`
	Years               *YearRange `json:"years,omitempty"`
	ExcludePeopleGroups bool       `json:"exclude_people_groups"`
	Count               int        `json:"count"`
}

// CriteriaOption adjusts a Criteria copy.
type CriteriaOption func(Criteria) Criteria

// NewCriteria builds criteria with people groups excluded and Count = DefaultCount.
func NewCriteria(opts ...CriteriaOption) Criteria {
	c := Criteria{ExcludePeopleGroups: true, Count: DefaultCount}
	return c.With(opts...)
}

// With returns a copy of c with opts applied in order.
func (c Criteria) With(opts ...CriteriaOption) Criteria {
	if c.Cycles != nil {
		c.Cycles = append([]int(nil), c.Cycles...)
	}
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

func WithWeeks(from, to int) CriteriaOption {
	return func(c Criteria) Criteria {
		c.Weeks = &WeekRange{From: from, To: to}
		return c
	}
}

func WithCycles(cycles ...int) CriteriaOption {
	return func(c Criteria) Criteria {
		c.Cycles = append([]int(nil), cycles...)
		return c
	}
}

func WithYears(from, to int) CriteriaOption {
	return func(c Criteria) Criteria {
		c.Years = &YearRange{From: from, To: to}
		return c
	}
}

func WithCount(n int) CriteriaOption {
	return func(c Criteria) Criteria {
		c.Count = n
		return c
	}
}

func WithPeopleGroups(include bool) CriteriaOption {
	return func(c Criteria) Criteria {
		c.ExcludePeopleGroups = !include
		return c
	}
}

// Validate rejects inverted ranges and counts outside 1..MaxCount.
func (c Criteria) Validate() error {
	if c.Count < 1 || c.Count > MaxCount {
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "count must be between 1 and %d, got %d", MaxCount, c.Count)
	}
	if c.Weeks != nil && c.Weeks.From > c.Weeks.To {
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "week range %d-%d is inverted", c.Weeks.From, c.Weeks.To)
	}
	if c.Years != nil && c.Years.From > c.Years.To {
		return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "year range %d-%d is inverted", c.Years.From, c.Years.To)
	}
	return nil
}
