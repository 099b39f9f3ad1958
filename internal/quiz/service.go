// Package quiz generates quiz questions of every supported kind and logs
// learners' answers.
package quiz

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/observability"
	"github.com/openhome-school/backend/internal/sequence"
)

// EventSource is the event side of the record store.
type EventSource interface {
	sequence.Pools
	GetEvents(ctx context.Context, ids []int64) ([]models.Event, error)
}

// RecordSource is the flash-card side of the record store.
type RecordSource interface {
	RandomRecords(ctx context.Context, table events.RecordTable, criteria models.Criteria, exclude []int64, limit int) ([]models.Record, error)
}

// AnswerLog persists answer attempts.
type AnswerLog interface {
	RecordAnswer(ctx context.Context, a models.QuizAnswer) (*models.QuizAnswer, error)
}

// AnswerHistory reads a learner's logged answers back.
type AnswerHistory interface {
	ListAnswers(ctx context.Context, userID int64, kind string, limit, offset int) ([]models.QuizAnswer, error)
	AnswerCounts(ctx context.Context, userID int64) ([]models.KindStats, error)
}

// Store is everything the quiz service needs from persistence.
type Store interface {
	EventSource
	RecordSource
	AnswerLog
	AnswerHistory
}

type Service struct {
	store      Store
	generators map[Kind]Generator
	defaults   models.Criteria
	logger     *observability.Logger
}

// NewService wires one generator per kind. The table is fixed for the
// lifetime of the service.
func NewService(store Store, cfg config.QuizConfig, logger *observability.Logger) *Service {
	return newService(store, cfg, logger, rand.Shuffle)
}

func newService(store Store, cfg config.QuizConfig, logger *observability.Logger, shuffle func(int, func(i, j int))) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	generators := map[Kind]Generator{
		KindHistorySequence: &historySequence{
			events:   store,
			selector: sequence.NewSelector(store, logger),
		},
	}
	for kind, table := range recordKinds {
		generators[kind] = &multipleChoice{kind: kind, table: table, records: store, shuffle: shuffle}
	}

	return &Service{
		store:      store,
		generators: generators,
		defaults:   DefaultCriteria(cfg),
		logger:     logger,
	}
}

// DefaultCriteria turns the quiz config section into base criteria.
// A zero week range means no week restriction.
func DefaultCriteria(cfg config.QuizConfig) models.Criteria {
	opts := []models.CriteriaOption{}
	if cfg.DefaultCount > 0 {
		opts = append(opts, models.WithCount(cfg.DefaultCount))
	}
	if cfg.WeekFrom > 0 || cfg.WeekTo > 0 {
		opts = append(opts, models.WithWeeks(cfg.WeekFrom, cfg.WeekTo))
	}
	return models.NewCriteria(opts...)
}

// Defaults returns the service's base criteria.
func (s *Service) Defaults() models.Criteria {
	return s.defaults.With()
}

// Generate builds one question of kind, starting from the configured default
// criteria with opts applied on top.
func (s *Service) Generate(ctx context.Context, kind Kind, opts ...models.CriteriaOption) (*Question, error) {
	gen, ok := s.generators[kind]
	if !ok {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown quiz kind %q", kind)
	}

	criteria := s.defaults.With(opts...)
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	q, err := gen.Generate(ctx, criteria)
	if err != nil {
		s.logger.Error(ctx, "Failed to generate question", err, map[string]interface{}{
			"kind":     string(kind),
			"criteria": criteria,
		})
		return nil, err
	}

	s.logger.Info(ctx, "Generated question", map[string]interface{}{
		"kind":       string(kind),
		"subject_id": q.SubjectID,
		"options":    len(q.Options),
	})
	return q, nil
}

// RecordAnswer checks a submission and logs it. Skipped questions are not
// logged and return (nil, nil).
func (s *Service) RecordAnswer(ctx context.Context, userID *int64, kind Kind, sub AnswerSubmission) (*models.QuizAnswer, error) {
	if sub.Skipped {
		return nil, nil
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.generators[kind]; !ok {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown quiz kind %q", kind)
	}

	var (
		response string
		correct  bool
		err      error
	)
	if kind == KindHistorySequence {
		response, correct, err = s.checkPlacement(ctx, sub)
	} else {
		response, correct, err = checkChoice(sub)
	}
	if err != nil {
		return nil, err
	}

	logged, err := s.store.RecordAnswer(ctx, models.QuizAnswer{
		UserID:    userID,
		Kind:      string(kind),
		SubjectID: sub.SubjectID,
		Response:  response,
		Correct:   correct,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Recorded answer", map[string]interface{}{
		"kind":       string(kind),
		"subject_id": sub.SubjectID,
		"correct":    correct,
		"anonymous":  userID == nil,
	})
	return logged, nil
}

// checkPlacement re-derives the correct position of the subject event among
// the options the learner was shown.
func (s *Service) checkPlacement(ctx context.Context, sub AnswerSubmission) (string, bool, error) {
	if sub.Placement == nil {
		return "", false, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "placement is required for sequence answers")
	}

	ids := append([]int64{sub.SubjectID}, sub.OptionIDs...)
	loaded, err := s.store.GetEvents(ctx, ids)
	if err != nil {
		return "", false, err
	}
	byID := make(map[int64]models.Event, len(loaded))
	for _, e := range loaded {
		byID[e.ID] = e
	}

	subject, ok := byID[sub.SubjectID]
	if !ok {
		return "", false, apperrors.ErrorWithContextf(apperrors.ErrRecordNotFound, "event %d not found", sub.SubjectID)
	}
	options := make([]models.Event, 0, len(sub.OptionIDs))
	shown := make(map[int64]bool, len(sub.OptionIDs))
	for _, id := range sub.OptionIDs {
		if shown[id] {
			return "", false, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "option %d submitted twice", id)
		}
		shown[id] = true
		e, ok := byID[id]
		if !ok || id == sub.SubjectID {
			return "", false, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "option %d is not a valid event", id)
		}
		options = append(options, e)
	}

	if err := sequence.SortChronologically(options); err != nil {
		return "", false, err
	}
	subjectDate, err := subject.EffectiveDate()
	if err != nil {
		return "", false, err
	}
	want, err := sequence.DeriveAnswer(subjectDate, options)
	if err != nil {
		return "", false, err
	}

	return sub.Placement.String(), *sub.Placement == want, nil
}

func checkChoice(sub AnswerSubmission) (string, bool, error) {
	if sub.OptionID == nil {
		return "", false, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "option_id is required")
	}
	return strconv.FormatInt(*sub.OptionID, 10), *sub.OptionID == sub.SubjectID, nil
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// streakWindow bounds how far back CurrentStreak looks.
	streakWindow = 200
)

// History returns one page of userID's answers, newest first. kind may be
// empty to include every kind. Page is 1-based.
func (s *Service) History(ctx context.Context, userID int64, kind string, page, pageSize int) (*models.AnswerPage, error) {
	if kind != "" {
		if _, err := ParseKind(kind); err != nil {
			return nil, err
		}
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	answers, err := s.store.ListAnswers(ctx, userID, kind, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &models.AnswerPage{Answers: answers, Page: page, PageSize: pageSize}, nil
}

// Stats summarises userID's answer log.
func (s *Service) Stats(ctx context.Context, userID int64) (*models.AnswerStats, error) {
	kinds, err := s.store.AnswerCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListAnswers(ctx, userID, "", streakWindow, 0)
	if err != nil {
		return nil, err
	}

	stats := &models.AnswerStats{Kinds: kinds}
	for _, k := range kinds {
		stats.Answered += k.Answered
		stats.Correct += k.Correct
	}
	stats.Accuracy = models.Accuracy(stats.Correct, stats.Answered)
	for _, a := range recent {
		if !a.Correct {
			break
		}
		stats.CurrentStreak++
	}
	return stats, nil
}
