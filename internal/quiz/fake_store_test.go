package quiz

import (
	"context"
	"sort"
	"time"

	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/models"
)

// fakeStore serves rows in insertion order, honouring exclusion lists.
type fakeStore struct {
	events  []models.Event
	records map[events.RecordTable][]models.Record
	logged  []models.QuizAnswer

	err      error
	criteria []models.Criteria
}

func excluded(id int64, exclude []int64) bool {
	for _, x := range exclude {
		if x == id {
			return true
		}
	}
	return false
}

func (f *fakeStore) KeywordSimilar(context.Context, models.Event, models.Criteria, []int64, int) ([]models.Event, error) {
	return nil, f.err
}

func (f *fakeStore) TemporalProximal(context.Context, models.Event, models.Criteria, []int64, int) ([]models.Event, error) {
	return nil, f.err
}

func (f *fakeStore) RandomEvent(_ context.Context, c models.Criteria, exclude []int64) (*models.Event, error) {
	f.criteria = append(f.criteria, c)
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.events {
		if !excluded(e.ID, exclude) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetEvents(_ context.Context, ids []int64) ([]models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Event
	for _, e := range f.events {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) RandomRecords(_ context.Context, table events.RecordTable, c models.Criteria, exclude []int64, limit int) ([]models.Record, error) {
	f.criteria = append(f.criteria, c)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Record
	for _, r := range f.records[table] {
		if len(out) == limit {
			break
		}
		if !excluded(r.ID, exclude) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordAnswer(_ context.Context, a models.QuizAnswer) (*models.QuizAnswer, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = int64(len(f.logged) + 1)
	a.CreatedAt = time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)
	f.logged = append(f.logged, a)
	return &a, nil
}

// ListAnswers filters the log by user and kind, newest (last logged) first.
func (f *fakeStore) ListAnswers(_ context.Context, userID int64, kind string, limit, offset int) ([]models.QuizAnswer, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.QuizAnswer{}
	for i := len(f.logged) - 1; i >= 0; i-- {
		a := f.logged[i]
		if a.UserID == nil || *a.UserID != userID || (kind != "" && a.Kind != kind) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) AnswerCounts(_ context.Context, userID int64) ([]models.KindStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	byKind := map[string]*models.KindStats{}
	var order []string
	for _, a := range f.logged {
		if a.UserID == nil || *a.UserID != userID {
			continue
		}
		k, ok := byKind[a.Kind]
		if !ok {
			k = &models.KindStats{Kind: a.Kind}
			byKind[a.Kind] = k
			order = append(order, a.Kind)
		}
		k.Answered++
		if a.Correct {
			k.Correct++
		}
	}
	sort.Strings(order)
	out := []models.KindStats{}
	for _, kind := range order {
		k := *byKind[kind]
		k.Accuracy = models.Accuracy(k.Correct, k.Answered)
		out = append(out, k)
	}
	return out, nil
}

func dated(id int64, name string, start int) models.Event {
	s := start
	return models.Event{ID: id, Name: name, Start: &s}
}

// timeline puts the Battle of Hastings first so it is picked as the target.
func timeline() []models.Event {
	return []models.Event{
		dated(1, "Battle of Hastings", 1066),
		dated(2, "Founding of Carthage", -814),
		dated(3, "Coronation of Charlemagne", 800),
		dated(4, "Magna Carta", 1215),
		dated(5, "Fall of Constantinople", 1453),
	}
}

func vocabulary() map[events.RecordTable][]models.Record {
	return map[events.RecordTable][]models.Record{
		events.LatinVocabularyTable: {
			{ID: 10, Prompt: "aqua", Answer: "water"},
			{ID: 11, Prompt: "terra", Answer: "earth"},
			{ID: 12, Prompt: "ignis", Answer: "fire"},
		},
	}
}
