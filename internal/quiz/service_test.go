package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/sequence"
)

var testQuizConfig = config.QuizConfig{DefaultCount: 5, WeekFrom: 1, WeekTo: 12}

func reverse(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func newTestService(store *fakeStore) *Service {
	return newService(store, testQuizConfig, nil, reverse)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("arithmetic")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestNewService_EveryKindHasAGenerator(t *testing.T) {
	svc := newTestService(&fakeStore{})
	for _, k := range Kinds {
		assert.Contains(t, svc.generators, k)
	}
	assert.Len(t, svc.generators, len(Kinds))
}

func TestDefaultCriteria(t *testing.T) {
	c := DefaultCriteria(testQuizConfig)
	assert.Equal(t, 5, c.Count)
	require.NotNil(t, c.Weeks)
	assert.Equal(t, models.WeekRange{From: 1, To: 12}, *c.Weeks)
	assert.True(t, c.ExcludePeopleGroups)

	open := DefaultCriteria(config.QuizConfig{})
	assert.Nil(t, open.Weeks)
	assert.Equal(t, models.DefaultCount, open.Count)
}

func TestService_GenerateHistorySequence(t *testing.T) {
	store := &fakeStore{events: timeline()}
	svc := newTestService(store)

	q, err := svc.Generate(context.Background(), KindHistorySequence)
	require.NoError(t, err)

	assert.Equal(t, KindHistorySequence, q.Kind)
	assert.Equal(t, int64(1), q.SubjectID)
	assert.Equal(t, "Battle of Hastings", q.Prompt)
	require.Len(t, q.Options, 4)

	var names []string
	for _, o := range q.Options {
		names = append(names, o.Text)
		require.NotNil(t, o.Date)
	}
	assert.Equal(t, []string{"Founding of Carthage", "Coronation of Charlemagne", "Magna Carta", "Fall of Constantinople"}, names)

	require.NotNil(t, q.SequenceAnswer)
	assert.Equal(t, sequence.AfterOption(3), *q.SequenceAnswer)
	assert.Nil(t, q.CorrectOptionID)

	// defaults from config reach the store
	require.NotEmpty(t, store.criteria)
	assert.Equal(t, &models.WeekRange{From: 1, To: 12}, store.criteria[0].Weeks)
}

func TestService_GenerateAppliesOverrides(t *testing.T) {
	store := &fakeStore{events: timeline()}
	svc := newTestService(store)

	q, err := svc.Generate(context.Background(), KindHistorySequence, models.WithCount(2), models.WithCycles(3))
	require.NoError(t, err)
	assert.Len(t, q.Options, 2)
	assert.Equal(t, []int{3}, store.criteria[0].Cycles)

	// overrides never leak into the defaults
	assert.Nil(t, svc.Defaults().Cycles)
	assert.Equal(t, 5, svc.Defaults().Count)
}

func TestService_GenerateErrors(t *testing.T) {
	t.Run("no events", func(t *testing.T) {
		_, err := newTestService(&fakeStore{}).Generate(context.Background(), KindHistorySequence)
		assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := newTestService(&fakeStore{}).Generate(context.Background(), Kind("geography"))
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("invalid criteria", func(t *testing.T) {
		store := &fakeStore{events: timeline()}
		_, err := newTestService(store).Generate(context.Background(), KindHistorySequence, models.WithCount(0))
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		assert.Empty(t, store.criteria)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection reset by peer")
		_, err := newTestService(&fakeStore{err: storeErr}).Generate(context.Background(), KindHistorySequence)
		assert.Same(t, storeErr, err)
	})
}

func TestService_GenerateMultipleChoice(t *testing.T) {
	svc := newTestService(&fakeStore{records: vocabulary()})

	q, err := svc.Generate(context.Background(), KindLatinVocabulary, models.WithCount(3))
	require.NoError(t, err)

	assert.Equal(t, KindLatinVocabulary, q.Kind)
	assert.Equal(t, "aqua", q.Prompt)
	assert.Equal(t, int64(10), q.SubjectID)
	require.NotNil(t, q.CorrectOptionID)
	assert.Equal(t, int64(10), *q.CorrectOptionID)
	assert.Nil(t, q.SequenceAnswer)

	// reverse shuffle moves the correct option to the end
	assert.Equal(t, []Option{
		{ID: 12, Text: "fire"},
		{ID: 11, Text: "earth"},
		{ID: 10, Text: "water"},
	}, q.Options)
}

func TestService_GenerateMultipleChoiceEmptyTable(t *testing.T) {
	_, err := newTestService(&fakeStore{records: vocabulary()}).Generate(context.Background(), KindScienceGrammar)
	assert.True(t, errors.Is(err, apperrors.ErrRecordNotFound))
}

func TestService_RecordAnswerSkipped(t *testing.T) {
	store := &fakeStore{events: timeline()}
	logged, err := newTestService(store).RecordAnswer(context.Background(), nil, KindHistorySequence,
		AnswerSubmission{SubjectID: 1, Skipped: true})
	require.NoError(t, err)
	assert.Nil(t, logged)
	assert.Empty(t, store.logged)
}

func TestService_RecordAnswerPlacement(t *testing.T) {
	userID := int64(9)
	shown := []int64{5, 2, 4, 3}

	tests := []struct {
		name      string
		placement sequence.Answer
		correct   bool
		response  string
	}{
		{"correct placement", sequence.AfterOption(3), true, "after:3"},
		{"placed first", sequence.FirstInSequence(), false, "first"},
		{"placed too late", sequence.AfterOption(4), false, "after:4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{events: timeline()}
			placement := tt.placement
			logged, err := newTestService(store).RecordAnswer(context.Background(), &userID, KindHistorySequence,
				AnswerSubmission{SubjectID: 1, OptionIDs: shown, Placement: &placement})
			require.NoError(t, err)
			require.NotNil(t, logged)

			assert.Equal(t, tt.correct, logged.Correct)
			assert.Equal(t, tt.response, logged.Response)
			assert.Equal(t, "history_sequence", logged.Kind)
			assert.Equal(t, &userID, logged.UserID)
			assert.Len(t, store.logged, 1)
		})
	}
}

func TestService_RecordAnswerPlacementInvalid(t *testing.T) {
	first := sequence.FirstInSequence()

	tests := []struct {
		name string
		sub  AnswerSubmission
		want *apperrors.AppError
	}{
		{"missing placement", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{2}}, apperrors.ErrInvalidInput},
		{"unknown option", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{2, 99}, Placement: &first}, apperrors.ErrInvalidInput},
		{"duplicate option", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{2, 3, 2}, Placement: &first}, apperrors.ErrInvalidInput},
		{"subject among options", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{1, 2}, Placement: &first}, apperrors.ErrInvalidInput},
		{"unknown subject", AnswerSubmission{SubjectID: 77, OptionIDs: []int64{2}, Placement: &first}, apperrors.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{events: timeline()}
			_, err := newTestService(store).RecordAnswer(context.Background(), nil, KindHistorySequence, tt.sub)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Empty(t, store.logged)
		})
	}
}

func TestService_RecordAnswerChoice(t *testing.T) {
	store := &fakeStore{records: vocabulary()}
	svc := newTestService(store)

	right, wrong := int64(10), int64(12)

	logged, err := svc.RecordAnswer(context.Background(), nil, KindLatinVocabulary,
		AnswerSubmission{SubjectID: 10, OptionID: &right})
	require.NoError(t, err)
	assert.True(t, logged.Correct)
	assert.Equal(t, "10", logged.Response)
	assert.Nil(t, logged.UserID)

	logged, err = svc.RecordAnswer(context.Background(), nil, KindLatinVocabulary,
		AnswerSubmission{SubjectID: 10, OptionID: &wrong})
	require.NoError(t, err)
	assert.False(t, logged.Correct)

	_, err = svc.RecordAnswer(context.Background(), nil, KindLatinVocabulary, AnswerSubmission{SubjectID: 10})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	assert.Len(t, store.logged, 2)
}

func logAnswers(store *fakeStore, userID int64, kind Kind, correct ...bool) {
	for i, c := range correct {
		uid := userID
		store.logged = append(store.logged, models.QuizAnswer{
			ID: int64(len(store.logged) + 1), UserID: &uid, Kind: string(kind), SubjectID: int64(i + 1), Correct: c,
		})
	}
}

func TestService_History(t *testing.T) {
	store := &fakeStore{}
	logAnswers(store, 7, KindLatinVocabulary, true, false, true)
	logAnswers(store, 7, KindHistorySequence, true)
	logAnswers(store, 8, KindLatinVocabulary, true)
	svc := newTestService(store)

	page, err := svc.History(context.Background(), 7, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	require.Len(t, page.Answers, 2)
	assert.Equal(t, int64(4), page.Answers[0].ID)
	assert.Equal(t, int64(3), page.Answers[1].ID)

	page, err = svc.History(context.Background(), 7, string(KindLatinVocabulary), 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Answers, 1)
	assert.Equal(t, int64(1), page.Answers[0].ID)

	page, err = svc.History(context.Background(), 7, "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Len(t, page.Answers, 4)

	_, err = svc.History(context.Background(), 7, "arithmetic", 1, 10)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestService_Stats(t *testing.T) {
	store := &fakeStore{}
	logAnswers(store, 7, KindLatinVocabulary, false, true)
	logAnswers(store, 7, KindHistorySequence, true, true)
	svc := newTestService(store)

	stats, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Answered)
	assert.Equal(t, 3, stats.Correct)
	assert.InDelta(t, 0.75, stats.Accuracy, 1e-9)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, []models.KindStats{
		{Kind: "history_sequence", Answered: 2, Correct: 2, Accuracy: 1},
		{Kind: "latin_vocabulary", Answered: 2, Correct: 1, Accuracy: 0.5},
	}, stats.Kinds)

	empty, err := svc.Stats(context.Background(), 99)
	require.NoError(t, err)
	assert.Zero(t, empty.Answered)
	assert.Zero(t, empty.Accuracy)
	assert.Zero(t, empty.CurrentStreak)
}

func TestAnswerSubmission_Validate(t *testing.T) {
	zero, one := int64(0), int64(1)
	tests := []struct {
		name  string
		sub   AnswerSubmission
		valid bool
	}{
		{"choice", AnswerSubmission{SubjectID: 1, OptionID: &one}, true},
		{"sequence", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{2, 3}}, true},
		{"missing subject", AnswerSubmission{OptionID: &one}, false},
		{"zero option id", AnswerSubmission{SubjectID: 1, OptionID: &zero}, false},
		{"negative shown id", AnswerSubmission{SubjectID: 1, OptionIDs: []int64{2, -3}}, false},
		{"too many shown ids", AnswerSubmission{SubjectID: 1, OptionIDs: make([]int64, 101)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
