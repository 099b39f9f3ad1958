package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openhome-school/backend/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
		want  []string
	}{
		{
			name:  "stored keywords then capitalized name words",
			event: models.Event{Name: "Battle of Hastings", Keywords: strPtr("Norman, 1066 , ")},
			want:  []string{"Norman", "1066", "Battle", "Hastings"},
		},
		{
			name:  "duplicates keep first position",
			event: models.Event{Name: "Fall of Rome", Keywords: strPtr("Rome,Empire")},
			want:  []string{"Rome", "Empire", "Fall"},
		},
		{
			name:  "all-caps and lowercase words are not keywords",
			event: models.Event{Name: "the USA is founded"},
			want:  nil,
		},
		{
			name:  "embedded capitals split",
			event: models.Event{Name: "McCarthy hearings"},
			want:  []string{"Mc", "Carthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.event))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%Rome%", containsPattern("Rome"))
	assert.Equal(t, `%100\%%`, containsPattern("100%"))
	assert.Equal(t, `%a\_b\\c%`, containsPattern(`a_b\c`))
}

func TestQuery_IsImmutable(t *testing.T) {
	base := newQuery("event e").where("e.people_group IS NOT TRUE")
	a := base.where("e.id <> ?", int64(1))
	b := base.where("e.start BETWEEN ? AND ?", -100, 100)

	stmtA, argsA := a.random("e.id", 3)
	stmtB, argsB := b.random("e.id", 3)
	stmtBase, argsBase := base.random("e.id", 3)

	assert.Equal(t, "SELECT e.id FROM event e WHERE e.people_group IS NOT TRUE AND e.id <> $1 ORDER BY random() LIMIT $2", stmtA)
	assert.Equal(t, []interface{}{int64(1), 3}, argsA)
	assert.Equal(t, "SELECT e.id FROM event e WHERE e.people_group IS NOT TRUE AND e.start BETWEEN $1 AND $2 ORDER BY random() LIMIT $3", stmtB)
	assert.Equal(t, []interface{}{-100, 100, 3}, argsB)
	assert.Equal(t, "SELECT e.id FROM event e WHERE e.people_group IS NOT TRUE ORDER BY random() LIMIT $1", stmtBase)
	assert.Equal(t, []interface{}{3}, argsBase)
}

func TestQuery_PlaceholderMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { newQuery("event e").where("e.id = ?") })
}

func TestScopeEvents(t *testing.T) {
	c := models.NewCriteria(models.WithWeeks(1, 12), models.WithCycles(1, 3), models.WithYears(-3000, 1500))
	stmt, args := scopeEvents(c).random("e.id", 5)

	assert.Equal(t,
		"SELECT e.id FROM event e JOIN cycle_week cw ON e.cycle_week_id = cw.id"+
			" WHERE cw.week BETWEEN $1 AND $2 AND cw.cycle = ANY($3)"+
			" AND e.start BETWEEN $4 AND $5 AND e.people_group IS NOT TRUE"+
			" ORDER BY random() LIMIT $6",
		stmt)
	assert.Len(t, args, 6)
	assert.Equal(t, 5, args[5])
}

func TestScopeEvents_PeopleGroupsIncluded(t *testing.T) {
	stmt, _ := scopeEvents(models.NewCriteria(models.WithPeopleGroups(true))).random("e.id", 1)
	assert.NotContains(t, stmt, "people_group")
	assert.NotContains(t, stmt, "cycle_week")
}

func TestMatchingAny(t *testing.T) {
	q := matchingAny(newQuery("event e"), "e", []string{"Rome", "Nile"})
	stmt, args := q.random("e.id", 2)

	assert.Equal(t,
		"SELECT e.id FROM event e WHERE (e.name LIKE $1 OR e.primary_sentence LIKE $2 OR e.keywords LIKE $3"+
			" OR e.name LIKE $4 OR e.primary_sentence LIKE $5 OR e.keywords LIKE $6) ORDER BY random() LIMIT $7",
		stmt)
	assert.Equal(t, []interface{}{"%Rome%", "%Rome%", "%Rome%", "%Nile%", "%Nile%", "%Nile%", 2}, args)
}

func TestRender_TailPlaceholders(t *testing.T) {
	q := newQuery("quiz_answers a").where("a.user_id = ?", int64(7)).where("a.kind = ?", "latin_vocabulary")
	stmt, args := q.render("a.id", "ORDER BY a.id DESC LIMIT ? OFFSET ?", 20, 40)

	assert.Equal(t, "SELECT a.id FROM quiz_answers a WHERE a.user_id = $1 AND a.kind = $2 ORDER BY a.id DESC LIMIT $3 OFFSET $4", stmt)
	assert.Equal(t, []interface{}{int64(7), "latin_vocabulary", 20, 40}, args)
}

func TestRender_MismatchedTailPanics(t *testing.T) {
	assert.Panics(t, func() {
		newQuery("event e").render("e.id", "LIMIT ?")
	})
}
