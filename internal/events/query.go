package events

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"github.com/openhome-school/backend/internal/models"
)

// query is an immutable SELECT builder. Every method returns a copy, so a
// scoped base query can be shared between the pool queries of one selection.
// Conditions use ? for values; they are renumbered to $n as they are added.
// Only identifiers from this package are ever interpolated.
type query struct {
	from  string
	joins []string
	conds []string
	args  []interface{}
}

func newQuery(from string) query {
	return query{from: from}
}

func (q query) clone() query {
	return query{
		from:  q.from,
		joins: append([]string(nil), q.joins...),
		conds: append([]string(nil), q.conds...),
		args:  append([]interface{}(nil), q.args...),
	}
}

func (q query) join(clause string) query {
	out := q.clone()
	out.joins = append(out.joins, clause)
	return out
}

func (q query) where(cond string, args ...interface{}) query {
	out := q.clone()
	rendered, n := renumber(cond, len(out.args))
	if n != len(args) {
		panic(fmt.Sprintf("events: condition %q has %d placeholders for %d args", cond, n, len(args)))
	}
	out.conds = append(out.conds, rendered)
	out.args = append(out.args, args...)
	return out
}

// renumber rewrites each ? in s as $n, counting on from offset. It returns the
// rewritten string and the number of placeholders found.
func renumber(s string, offset int) (string, int) {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", offset+n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}

// excluding drops rows whose id is in ids.
func (q query) excluding(alias string, ids []int64) query {
	if len(ids) == 0 {
		return q
	}
	return q.where(alias+".id <> ALL(?)", pq.Array(ids))
}

// render builds the SELECT. tail follows the WHERE clause and may bind
// tailArgs through ? placeholders.
func (q query) render(columns, tail string, tailArgs ...interface{}) (string, []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", columns, q.from)
	for _, j := range q.joins {
		b.WriteString(" JOIN ")
		b.WriteString(j)
	}
	if len(q.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conds, " AND "))
	}

	args := append([]interface{}(nil), q.args...)
	if tail != "" {
		rendered, n := renumber(tail, len(args))
		if n != len(tailArgs) {
			panic(fmt.Sprintf("events: tail %q has %d placeholders for %d args", tail, n, len(tailArgs)))
		}
		b.WriteString(" ")
		b.WriteString(rendered)
		args = append(args, tailArgs...)
	}
	return b.String(), args
}

// random renders the query with ORDER BY random() and a bound LIMIT.
func (q query) random(columns string, limit int) (string, []interface{}) {
	return q.render(columns, "ORDER BY random() LIMIT ?", limit)
}

// scopeWeeks restricts alias to rows linked to a cycle week inside criteria.
func scopeWeeks(q query, alias string, c models.Criteria) query {
	if c.Weeks == nil && len(c.Cycles) == 0 {
		return q
	}
	q = q.join("cycle_week cw ON " + alias + ".cycle_week_id = cw.id")
	if c.Weeks != nil {
		q = q.where("cw.week BETWEEN ? AND ?", c.Weeks.From, c.Weeks.To)
	}
	if len(c.Cycles) > 0 {
		cycles := make([]int64, len(c.Cycles))
		for i, cy := range c.Cycles {
			cycles[i] = int64(cy)
		}
		q = q.where("cw.cycle = ANY(?)", pq.Array(cycles))
	}
	return q
}

// scopeEvents applies every criteria filter that bears on the event table.
func scopeEvents(c models.Criteria) query {
	q := scopeWeeks(newQuery("event e"), "e", c)
	if c.Years != nil {
		q = q.where("e.start BETWEEN ? AND ?", c.Years.From, c.Years.To)
	}
	if c.ExcludePeopleGroups {
		q = q.where("e.people_group IS NOT TRUE")
	}
	return q
}

// ── Keywords ────────────────────────────────────────────

var capitalizedWord = regexp.MustCompile(`[A-Z][a-z]+`)

// ExtractKeywords returns the event's stored keywords followed by every
// capitalized word in its name, de-duplicated in first-seen order.
func ExtractKeywords(e models.Event) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(kw string) {
		if kw == "" || seen[kw] {
			return
		}
		seen[kw] = true
		out = append(out, kw)
	}
	for _, kw := range e.KeywordList() {
		add(kw)
	}
	for _, kw := range capitalizedWord.FindAllString(e.Name, -1) {
		add(kw)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching kw literally anywhere.
func containsPattern(kw string) string {
	return "%" + likeEscaper.Replace(kw) + "%"
}

// matchingAny ORs a case-sensitive substring match of each keyword against
// name, primary_sentence and keywords.
func matchingAny(q query, alias string, keywords []string) query {
	clauses := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, 3*len(keywords))
	for _, kw := range keywords {
		clauses = append(clauses, fmt.Sprintf("%[1]s.name LIKE ? OR %[1]s.primary_sentence LIKE ? OR %[1]s.keywords LIKE ?", alias))
		p := containsPattern(kw)
		args = append(args, p, p, p)
	}
	return q.where("("+strings.Join(clauses, " OR ")+")", args...)
}
