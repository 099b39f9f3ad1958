package models

import "time"

// Record is one prompt/answer row from a flash-card style table
// (science facts, English or Latin vocabulary).
type Record struct {
	ID     int64  `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// QuizAnswer is one logged attempt at a quiz question.
type QuizAnswer struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Kind      string    `json:"kind"`
	SubjectID int64     `json:"subject_id"`
	Response  string    `json:"response"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"created_at"`
}

// KindStats counts one learner's logged answers of a single quiz kind.
type KindStats struct {
	Kind     string  `json:"kind"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// AnswerStats summarises a learner's answer log. CurrentStreak is the number
// of consecutive correct answers ending with the most recent one.
type AnswerStats struct {
	Answered      int         `json:"answered"`
	Correct       int         `json:"correct"`
	Accuracy      float64     `json:"accuracy"`
	CurrentStreak int         `json:"current_streak"`
	Kinds         []KindStats `json:"kinds"`
}

// AnswerPage is one page of a learner's answer log, newest first.
type AnswerPage struct {
	Answers  []QuizAnswer `json:"answers"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Accuracy returns correct/answered, or 0 when nothing was answered.
func Accuracy(correct, answered int) float64 {
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered)
}
