package quiz

import (
	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/events"
)

// Kind names a quiz question type.
type Kind string

const (
	KindHistorySequence   Kind = "history_sequence"
	KindScienceGrammar    Kind = "science_grammar"
	KindEnglishVocabulary Kind = "english_vocabulary"
	KindLatinVocabulary   Kind = "latin_vocabulary"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{
	KindHistorySequence,
	KindScienceGrammar,
	KindEnglishVocabulary,
	KindLatinVocabulary,
}

// recordKinds maps the multiple-choice kinds to their source table.
var recordKinds = map[Kind]events.RecordTable{
	KindScienceGrammar:    events.ScienceTable,
	KindEnglishVocabulary: events.VocabularyTable,
	KindLatinVocabulary:   events.LatinVocabularyTable,
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown quiz kind %q", s)
}
