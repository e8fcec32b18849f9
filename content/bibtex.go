package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// CiteKey is the BibTeX key: the first author, lowercased with spaces removed,
// followed by the first four-digit year in the venue or "xxxx".
func (p Publication) CiteKey() string {
	first, _, _ := strings.Cut(p.Authors, ",")
	first = strings.Join(strings.Fields(strings.ToLower(first)), "")
	year := yearPattern.FindString(p.Venue)
	if year == "" {
		year = "xxxx"
	}
	return first + year
}

// BibTeX renders p as an @article entry. When the venue carries no year,
// the year of now is used.
func (p Publication) BibTeX(now time.Time) string {
	var authors []string
	for _, a := range strings.Split(p.Authors, ",") {
		parts := strings.Fields(a)
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		authors = append(authors, strings.Join(parts, ", "))
	}
	year := yearPattern.FindString(p.Venue)
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	journal := strings.TrimSpace(yearPattern.ReplaceAllString(p.Venue, ""))

	return fmt.Sprintf("@article{%s,\n  author = {%s},\n  title = {%s},\n  journal = {%s},\n  year = {%s}\n}",
		p.CiteKey(), strings.Join(authors, " and "), p.Title, journal, year)
}
