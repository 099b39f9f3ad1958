// Package events is the Postgres record store behind quiz generation: the
// timeline events the sequence selector draws from, the flash-card tables,
// and the quiz answer log.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/sequence"
)

// TemporalWindow is how many years either side of a target the temporal pool spans.
const TemporalWindow = 500

const eventColumns = `e.id, e.name, e.keywords, e.primary_sentence, e.start, e.fake_start_date, e."end", e.people_group, e.cycle_week_id`

var _ sequence.Pools = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Keywords, &e.PrimarySentence,
		&e.Start, &e.FakeStartDate, &e.End, &e.PeopleGroup, &e.CycleWeekID)
	return e, err
}

func (s *Store) queryEvents(ctx context.Context, stmt string, args []interface{}) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ── Pools ───────────────────────────────────────────────

// KeywordSimilar returns up to limit random events sharing a keyword with target.
// A target with no keywords and no capitalized words in its name matches nothing.
func (s *Store) KeywordSimilar(ctx context.Context, target models.Event, criteria models.Criteria, exclude []int64, limit int) ([]models.Event, error) {
	keywords := ExtractKeywords(target)
	if len(keywords) == 0 || limit <= 0 {
		return nil, nil
	}

	q := scopeEvents(criteria).
		where("e.id <> ?", target.ID).
		excluding("e", exclude)
	q = matchingAny(q, "e", keywords)

	stmt, args := q.random(eventColumns, limit)
	events, err := s.queryEvents(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("keyword similar events: %w", err)
	}
	return events, nil
}

// TemporalProximal returns up to limit random events dated within
// TemporalWindow years of target.
func (s *Store) TemporalProximal(ctx context.Context, target models.Event, criteria models.Criteria, exclude []int64, limit int) ([]models.Event, error) {
	d, err := target.EffectiveDate()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	q := scopeEvents(criteria).
		where("e.id <> ?", target.ID).
		excluding("e", exclude).
		where("COALESCE(e.start, e.fake_start_date) BETWEEN ? AND ?", d-TemporalWindow, d+TemporalWindow)

	stmt, args := q.random(eventColumns, limit)
	events, err := s.queryEvents(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("temporal proximal events: %w", err)
	}
	return events, nil
}

// RandomEvent returns one random event within criteria, or nil when every
// candidate is excluded.
func (s *Store) RandomEvent(ctx context.Context, criteria models.Criteria, exclude []int64) (*models.Event, error) {
	stmt, args := scopeEvents(criteria).excluding("e", exclude).random(eventColumns, 1)
	e, err := scanEvent(s.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random event: %w", err)
	}
	return &e, nil
}

// ── Events ──────────────────────────────────────────────

func (s *Store) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM event e WHERE e.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrRecordNotFound, "event %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// GetEvents loads the events with the given ids, in no particular order.
// Unknown ids are skipped.
func (s *Store) GetEvents(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	events, err := s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM event e WHERE e.id = ANY($1)`,
		[]interface{}{pq.Array(ids)},
	)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return events, nil
}

// CreateEvents validates every event, then inserts them in one transaction.
// It returns the new ids in input order.
func (s *Store) CreateEvents(ctx context.Context, events []models.Event) ([]int64, error) {
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return nil, apperrors.WrapErrorf(err, "event #%d", i+1)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO event (name, keywords, primary_sentence, start, fake_start_date, "end", people_group, cycle_week_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			e.Name, e.Keywords, e.PrimarySentence, e.Start, e.FakeStartDate, e.End, e.PeopleGroup, e.CycleWeekID,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert event %q: %w", e.Name, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit events: %w", err)
	}
	return ids, nil
}

// UpdateKeywords replaces an event's keyword list.
func (s *Store) UpdateKeywords(ctx context.Context, id int64, keywords []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE event SET keywords = $1 WHERE id = $2`,
		strings.Join(keywords, ", "), id,
	)
	if err != nil {
		return fmt.Errorf("update keywords: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrorWithContextf(apperrors.ErrRecordNotFound, "event %d not found", id)
	}
	return nil
}

// EventsMissingKeywords lists events with no keywords, oldest id first.
func (s *Store) EventsMissingKeywords(ctx context.Context, limit int) ([]models.Event, error) {
	events, err := s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM event e
		 WHERE e.keywords IS NULL OR e.keywords = ''
		 ORDER BY e.id LIMIT $1`,
		[]interface{}{limit},
	)
	if err != nil {
		return nil, fmt.Errorf("events missing keywords: %w", err)
	}
	return events, nil
}
