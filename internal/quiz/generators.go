package quiz

import (
	"context"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/sequence"
)

// Generator produces one question of a fixed kind.
type Generator interface {
	Generate(ctx context.Context, criteria models.Criteria) (*Question, error)
}

// ── History sequence ────────────────────────────────────

type historySequence struct {
	events   EventSource
	selector *sequence.Selector
}

func (g *historySequence) Generate(ctx context.Context, criteria models.Criteria) (*Question, error) {
	target, err := g.events.RandomEvent(ctx, criteria, nil)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrRecordNotFound, "no events match the requested criteria")
	}

	result, err := g.selector.Select(ctx, *target, criteria)
	if err != nil {
		return nil, err
	}

	options := make([]Option, len(result.Options))
	for i, e := range result.Options {
		d, err := e.EffectiveDate()
		if err != nil {
			return nil, err
		}
		options[i] = Option{ID: e.ID, Text: e.Name, Date: &d}
	}

	answer := result.Answer
	return &Question{
		Kind:           KindHistorySequence,
		SubjectID:      target.ID,
		Prompt:         target.Name,
		Options:        options,
		SequenceAnswer: &answer,
	}, nil
}

// ── Multiple choice ─────────────────────────────────────

type multipleChoice struct {
	kind    Kind
	table   events.RecordTable
	records RecordSource
	shuffle func(n int, swap func(i, j int))
}

// Generate picks a prompt record and count-1 distractors from the same table.
// The correct option carries the prompt record's id.
func (g *multipleChoice) Generate(ctx context.Context, criteria models.Criteria) (*Question, error) {
	picked, err := g.records.RandomRecords(ctx, g.table, criteria, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrRecordNotFound, "no %s records match the requested criteria", g.table)
	}
	prompt := picked[0]

	distractors, err := g.records.RandomRecords(ctx, g.table, criteria, []int64{prompt.ID}, criteria.Count-1)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(distractors)+1)
	options = append(options, Option{ID: prompt.ID, Text: prompt.Answer})
	for _, d := range distractors {
		options = append(options, Option{ID: d.ID, Text: d.Answer})
	}
	g.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correct := prompt.ID
	return &Question{
		Kind:            g.kind,
		SubjectID:       prompt.ID,
		Prompt:          prompt.Prompt,
		Options:         options,
		CorrectOptionID: &correct,
	}, nil
}
