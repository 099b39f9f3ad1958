package events

import (
	"context"
	"fmt"

	"github.com/openhome-school/backend/internal/models"
)

// RecordAnswer appends a to the answer log and returns it with its id and
// timestamp filled in.
func (s *Store) RecordAnswer(ctx context.Context, a models.QuizAnswer) (*models.QuizAnswer, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_answers (user_id, kind, subject_id, response, correct)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.UserID, a.Kind, a.SubjectID, a.Response, a.Correct,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	return &a, nil
}

// ListAnswers returns a user's logged answers newest first. An empty kind
// lists every kind.
func (s *Store) ListAnswers(ctx context.Context, userID int64, kind string, limit, offset int) ([]models.QuizAnswer, error) {
	q := newQuery("quiz_answers a").where("a.user_id = ?", userID)
	if kind != "" {
		q = q.where("a.kind = ?", kind)
	}
	stmt, args := q.render("a.id, a.user_id, a.kind, a.subject_id, a.response, a.correct, a.created_at",
		"ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?", limit, offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := []models.QuizAnswer{}
	for rows.Next() {
		var a models.QuizAnswer
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.SubjectID, &a.Response, &a.Correct, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AnswerCounts returns per-kind answered and correct counts for a user,
// ordered by kind. Accuracy is filled in.
func (s *Store) AnswerCounts(ctx context.Context, userID int64) ([]models.KindStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*), COUNT(*) FILTER (WHERE correct)
		 FROM quiz_answers
		 WHERE user_id = $1
		 GROUP BY kind
		 ORDER BY kind`, userID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}
	defer rows.Close()

	out := []models.KindStats{}
	for rows.Next() {
		var k models.KindStats
		if err := rows.Scan(&k.Kind, &k.Answered, &k.Correct); err != nil {
			return nil, fmt.Errorf("scan answer counts: %w", err)
		}
		k.Accuracy = models.Accuracy(k.Correct, k.Answered)
		out = append(out, k)
	}
	return out, rows.Err()
}
