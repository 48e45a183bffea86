// Package guidelines ships a curated set of week-tagged pregnancy
// guidance entries, embedded in the binary so the agent can answer
// without any network. Search is lexical and deterministic.
package guidelines

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/ishaanxgupta/BabyNest-sub001/agent/records"
)

//go:embed data/guidelines.yaml
var rawGuidelines []byte

// WeekRange is inclusive on both ends.
type WeekRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r WeekRange) Contains(week int) bool {
	return week >= r.Min && week <= r.Max
}

type Entry struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Content  string    `yaml:"content"`
	Weeks    WeekRange `yaml:"weeks"`
	Priority int       `yaml:"priority"`
	Keywords []string  `yaml:"keywords"`

	// lowered copies computed once at load time
	titleLower   string
	contentLower string
	keywordSet   map[string]bool
}

// Index is read-only after Load.
type Index struct {
	entries []Entry
}

func Load() (*Index, error) {
	var doc struct {
		Guidelines []Entry `yaml:"guidelines"`
	}
	if err := yaml.Unmarshal(rawGuidelines, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded guidelines: %w", err)
	}
	if len(doc.Guidelines) == 0 {
		return nil, fmt.Errorf("embedded guideline set is empty")
	}

	seen := make(map[string]bool, len(doc.Guidelines))
	for i := range doc.Guidelines {
		e := &doc.Guidelines[i]
		if e.ID == "" || e.Title == "" || e.Content == "" {
			return nil, fmt.Errorf("guideline %d (%q) has empty fields", i, e.ID)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate guideline id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Weeks.Min < records.MinWeek || e.Weeks.Max > records.MaxWeek || e.Weeks.Min > e.Weeks.Max {
			return nil, fmt.Errorf("guideline %q has week range %d-%d", e.ID, e.Weeks.Min, e.Weeks.Max)
		}

		e.titleLower = strings.ToLower(e.Title)
		e.contentLower = strings.ToLower(e.Content)
		e.keywordSet = make(map[string]bool, len(e.Keywords))
		for _, kw := range e.Keywords {
			e.keywordSet[strings.ToLower(kw)] = true
		}
	}
	return &Index{entries: doc.Guidelines}, nil
}

// MustLoad panics on malformed embedded data; that is a build defect,
// not a runtime condition.
func MustLoad() *Index {
	ix, err := Load()
	if err != nil {
		panic(err)
	}
	return ix
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search ranks entries against the query tokens: keyword hits weigh
// most, then title, then content, with a bonus for entries whose week
// range covers the given week and for higher priority. Entries scoring
// zero on the text never appear, whatever their priority.
func (ix *Index) Search(query string, week, limit int) []Entry {
	tokens := tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		e Entry
		s int
	}
	hits := make([]scored, 0, 8)
	for _, e := range ix.entries {
		s := 0
		for _, tok := range tokens {
			switch {
			case e.keywordSet[tok]:
				s += 3
			case strings.Contains(e.titleLower, tok):
				s += 2
			case strings.Contains(e.contentLower, tok):
				s++
			}
		}
		if s == 0 {
			continue
		}
		if e.Weeks.Contains(week) {
			s += 2
		}
		s += e.Priority
		hits = append(hits, scored{e, s})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].s > hits[j].s })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = h.e
	}
	return out
}

// ForWeek returns the entries relevant to a week, highest priority
// first, data order breaking ties.
func (ix *Index) ForWeek(week, limit int) []Entry {
	if limit <= 0 {
		return nil
	}
	out := make([]Entry, 0, limit)
	for _, e := range ix.entries {
		if e.Weeks.Contains(week) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "any": true, "are": true,
	"can": true, "do": true, "for": true, "how": true, "i": true,
	"in": true, "is": true, "it": true, "me": true, "my": true,
	"of": true, "on": true, "or": true, "should": true, "the": true,
	"this": true, "to": true, "what": true, "when": true, "will": true,
}

func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}
