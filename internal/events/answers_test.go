package events

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhome-school/backend/internal/models"
)

var answerRowColumns = []string{"id", "user_id", "kind", "subject_id", "response", "correct", "created_at"}

func TestStore_ListAnswers(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT a.id, a.user_id, a.kind, a.subject_id, a.response, a.correct, a.created_at FROM quiz_answers a"+
			" WHERE a.user_id = $1 ORDER BY a.created_at DESC, a.id DESC LIMIT $2 OFFSET $3")).
		WithArgs(int64(12), 20, 0).
		WillReturnRows(sqlmock.NewRows(answerRowColumns).
			AddRow(9, 12, "latin_vocabulary", 10, "10", true, at).
			AddRow(8, 12, "history_sequence", 100, "first", false, at.Add(-time.Minute)))

	got, err := store.ListAnswers(context.Background(), 12, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(9), got[0].ID)
	require.NotNil(t, got[0].UserID)
	assert.Equal(t, int64(12), *got[0].UserID)
	assert.True(t, got[0].Correct)
	assert.Equal(t, "first", got[1].Response)
}

func TestStore_ListAnswersByKind(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.user_id = $1 AND a.kind = $2 ORDER BY a.created_at DESC, a.id DESC LIMIT $3 OFFSET $4")).
		WithArgs(int64(12), "science_grammar", 10, 30).
		WillReturnRows(sqlmock.NewRows(answerRowColumns))

	got, err := store.ListAnswers(context.Background(), 12, "science_grammar", 10, 30)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStore_AnswerCounts(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT kind, COUNT\\(\\*\\), COUNT\\(\\*\\) FILTER \\(WHERE correct\\)").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "count", "correct"}).
			AddRow("history_sequence", 4, 3).
			AddRow("latin_vocabulary", 2, 0))

	got, err := store.AnswerCounts(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, []models.KindStats{
		{Kind: "history_sequence", Answered: 4, Correct: 3, Accuracy: 0.75},
		{Kind: "latin_vocabulary", Answered: 2, Correct: 0, Accuracy: 0},
	}, got)
}
