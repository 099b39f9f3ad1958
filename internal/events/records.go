package events

import (
	"context"
	"fmt"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/models"
)

// RecordTable identifies one of the flash-card tables.
type RecordTable string

const (
	ScienceTable         RecordTable = "science"
	VocabularyTable      RecordTable = "vocabulary"
	LatinVocabularyTable RecordTable = "latin_vocabulary"
)

type recordColumns struct {
	prompt string
	answer string
}

// recordTables is the identifier allowlist for flash-card queries.
var recordTables = map[RecordTable]recordColumns{
	ScienceTable:         {prompt: "prompt", answer: "answer"},
	VocabularyTable:      {prompt: "word", answer: "definition"},
	LatinVocabularyTable: {prompt: "word", answer: "translation"},
}

// RandomRecords returns up to limit random rows from table, scoped to the
// criteria's cycle weeks and skipping ids in exclude.
func (s *Store) RandomRecords(ctx context.Context, table RecordTable, criteria models.Criteria, exclude []int64, limit int) ([]models.Record, error) {
	cols, ok := recordTables[table]
	if !ok {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown record table %q", table)
	}
	if limit <= 0 {
		return nil, nil
	}

	q := scopeWeeks(newQuery(string(table)+" r"), "r", criteria).excluding("r", exclude)
	stmt, args := q.random(fmt.Sprintf("r.id, r.%s, r.%s", cols.prompt, cols.answer), limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("random %s records: %w", table, err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.Prompt, &r.Answer); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", table, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
