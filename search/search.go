// Package search builds a weighted in-memory index over the homepage
// sections and answers substring queries against it.
package search

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/eringen/scholarpage/content"
)

// Entry types.
const (
	TypePublication = "publication"
	TypeNews        = "news"
	TypeAward       = "award"
	TypeExperience  = "experience"
	TypeInterest    = "interest"
)

// Base weights per entry type.
const (
	weightPublication = 3
	weightNews        = 2
	weightAward       = 2
	weightExperience  = 2
	weightInterest    = 1
)

// MinQueryLength is the shortest trimmed query, in runes, that is searched.
const MinQueryLength = 2

// Entry is one searchable item. ID is the item's position in its section.
type Entry struct {
	Type    string `json:"type"`
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Authors string `json:"authors,omitempty"`
	Venue   string `json:"venue,omitempty"`
	Section string `json:"section"`
	Score   int    `json:"score"`
}

// Result is an entry with the score accumulated for a query.
type Result struct {
	Entry
	Match int `json:"match"`
}

// BuildIndex flattens s into search entries, publications first.
func BuildIndex(s content.Site) []Entry {
	entries := make([]Entry, 0, len(s.Publications.Items)+len(s.News)+len(s.Awards)+len(s.Experience)+len(s.About.ResearchInterests))
	for i, p := range s.Publications.Items {
		entries = append(entries, Entry{Type: TypePublication, ID: i, Title: p.Title, Authors: p.Authors, Venue: p.Venue, Section: "publications", Score: weightPublication})
	}
	for i, n := range s.News {
		entries = append(entries, Entry{Type: TypeNews, ID: i, Title: n.Date, Content: content.StripHTML(n.Content), Section: "news", Score: weightNews})
	}
	for i, a := range s.Awards {
		entries = append(entries, Entry{Type: TypeAward, ID: i, Title: a.Name, Content: a.Institution, Section: "awards", Score: weightAward})
	}
	for i, e := range s.Experience {
		entries = append(entries, Entry{Type: TypeExperience, ID: i, Title: e.Title, Content: e.Institution, Section: "experience", Score: weightExperience})
	}
	for i, r := range s.About.ResearchInterests {
		entries = append(entries, Entry{Type: TypeInterest, ID: i, Title: r, Section: "about", Score: weightInterest})
	}
	return entries
}

// Index is a rebuildable search index, safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
}

// New builds an index over s.
func New(s content.Site) *Index {
	return &Index{entries: BuildIndex(s)}
}

// Rebuild replaces the indexed entries with those of s.
func (x *Index) Rebuild(s content.Site) {
	entries := BuildIndex(s)
	x.mu.Lock()
	x.entries = entries
	x.mu.Unlock()
}

// Entries returns a copy of the indexed entries.
func (x *Index) Entries() []Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Entry(nil), x.entries...)
}

// Search scores every entry against the whitespace separated terms of query.
// Per term a title hit adds twice the entry weight, and content and author
// hits add the weight once each. Entries scoring zero are dropped; the rest
// are ordered by score, highest first, keeping index order among ties.
func (x *Index) Search(query string) []Result {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []Result
	for _, e := range x.entries {
		title := strings.ToLower(e.Title)
		body := strings.ToLower(e.Content)
		authors := strings.ToLower(e.Authors)
		match := 0
		for _, t := range terms {
			if strings.Contains(title, t) {
				match += e.Score * 2
			}
			if body != "" && strings.Contains(body, t) {
				match += e.Score
			}
			if authors != "" && strings.Contains(authors, t) {
				match += e.Score
			}
		}
		if match > 0 {
			results = append(results, Result{Entry: e, Match: match})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Match > results[j].Match
	})
	return results
}

// Terms splits query into lowercased search terms. Queries shorter than
// MinQueryLength after trimming yield no terms.
func Terms(query string) []string {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}
	return strings.Fields(strings.ToLower(q))
}

// Highlight escapes text and wraps every case-insensitive occurrence of a
// query term longer than one rune in <mark>.
func Highlight(text, query string) string {
	var alts []string
	for _, t := range strings.Fields(strings.TrimSpace(query)) {
		if utf8.RuneCountInString(t) > 1 {
			alts = append(alts, regexp.QuoteMeta(t))
		}
	}
	if len(alts) == 0 {
		return html.EscapeString(text)
	}
	// Longest first so that overlapping terms prefer the wider match.
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	re := regexp.MustCompile("(?i)(" + strings.Join(alts, "|") + ")")

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
