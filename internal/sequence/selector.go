// Package sequence builds the option set for history-sequence quiz questions:
// a handful of events drawn from keyword-similar, temporally proximal and
// purely random pools, sorted chronologically, plus the position where the
// target event belongs.
package sequence

import (
	"context"
	"sort"

	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/observability"
)

// Pools is the record store surface the selector draws candidates from.
// Each query returns rows in random order and never returns target or any
// id in exclude. RandomEvent returns (nil, nil) once the pool is exhausted.
type Pools interface {
	KeywordSimilar(ctx context.Context, target models.Event, criteria models.Criteria, exclude []int64, limit int) ([]models.Event, error)
	TemporalProximal(ctx context.Context, target models.Event, criteria models.Criteria, exclude []int64, limit int) ([]models.Event, error)
	RandomEvent(ctx context.Context, criteria models.Criteria, exclude []int64) (*models.Event, error)
}

// Result is one assembled sequence question.
type Result struct {
	Options    []models.Event `json:"options"`
	Answer     Answer         `json:"answer"`
	Allocation Allocation     `json:"allocation"`
}

// Selector assembles the option set for one history-sequence question.
type Selector struct {
	pools  Pools
	logger *observability.Logger
}

// NewSelector returns a Selector drawing from pools. A nil logger discards output.
func NewSelector(pools Pools, logger *observability.Logger) *Selector {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Selector{pools: pools, logger: logger}
}

// Select assembles up to criteria.Count options surrounding target.
// The result may be shorter than requested, or empty, when pools run dry.
// Store errors are returned unchanged.
func (s *Selector) Select(ctx context.Context, target models.Event, criteria models.Criteria) (*Result, error) {
	targetDate, err := target.EffectiveDate()
	if err != nil {
		return nil, err
	}

	if criteria.Count <= 0 {
		criteria.Count = models.DefaultCount
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	n := criteria.Count

	excluded := newExclusion(target.ID)

	keywordSimilar, err := s.pools.KeywordSimilar(ctx, target, criteria, excluded.ids(), n)
	if err != nil {
		return nil, err
	}
	excluded.addEvents(keywordSimilar)

	temporal, err := s.pools.TemporalProximal(ctx, target, criteria, excluded.ids(), n)
	if err != nil {
		return nil, err
	}
	excluded.addEvents(temporal)

	alloc := Allocate(n, len(keywordSimilar), len(temporal))

	var randoms []models.Event
	for i := 0; i < alloc.Random; i++ {
		e, err := s.pools.RandomEvent(ctx, criteria, excluded.ids())
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}
		randoms = append(randoms, *e)
		excluded.add(e.ID)
	}

	options := merge(target.ID, keywordSimilar[:alloc.Keyword], temporal[:alloc.Temporal], randoms)
	if err := SortChronologically(options); err != nil {
		return nil, err
	}

	answer, err := DeriveAnswer(targetDate, options)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Assembled surrounding events", map[string]interface{}{
		"target_id":          target.ID,
		"target_name":        target.Name,
		"target_date":        targetDate,
		"keyword_available":  len(keywordSimilar),
		"temporal_available": len(temporal),
		"random_found":       len(randoms),
		"allocation":         alloc,
		"options":            optionNames(options),
		"answer":             answer.String(),
	})

	return &Result{Options: options, Answer: answer, Allocation: alloc}, nil
}

// merge concatenates the buckets in order, dropping the target and any id
// already taken by an earlier bucket.
func merge(targetID int64, buckets ...[]models.Event) []models.Event {
	seen := map[int64]bool{targetID: true}
	options := make([]models.Event, 0)
	for _, bucket := range buckets {
		for _, e := range bucket {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			options = append(options, e)
		}
	}
	return options
}

// SortChronologically orders events by effective date, keeping input order
// for equal dates.
func SortChronologically(events []models.Event) error {
	dates := make(map[int64]int, len(events))
	for _, e := range events {
		d, err := e.EffectiveDate()
		if err != nil {
			return err
		}
		dates[e.ID] = d
	}
	sort.SliceStable(events, func(i, j int) bool {
		return dates[events[i].ID] < dates[events[j].ID]
	})
	return nil
}

func optionNames(events []models.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// exclusion is the growing id set for one Select call.
type exclusion struct {
	order []int64
	seen  map[int64]bool
}

func newExclusion(ids ...int64) *exclusion {
	x := &exclusion{seen: make(map[int64]bool)}
	for _, id := range ids {
		x.add(id)
	}
	return x
}

func (x *exclusion) add(id int64) {
	if x.seen[id] {
		return
	}
	x.seen[id] = true
	x.order = append(x.order, id)
}

func (x *exclusion) addEvents(events []models.Event) {
	for _, e := range events {
		x.add(e.ID)
	}
}

// ids returns a snapshot; callers may retain it.
func (x *exclusion) ids() []int64 {
	return append([]int64(nil), x.order...)
}
