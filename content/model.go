// Package content defines the homepage data model and its file formats:
// JSON (the canonical form), a data.js source literal, and a Markdown summary.
package content

import "strings"

// Site is the whole homepage. JSON field names match the original data file
// so that exported files can be imported back unchanged.
type Site struct {
	Profile      Profile      `json:"profile"`
	About        About        `json:"about"`
	News         []NewsItem   `json:"news"`
	Publications Publications `json:"publications"`
	Awards       []Award      `json:"awards"`
	Experience   []Experience `json:"experience"`
	Services     Services     `json:"services"`
}

// Profile is the sidebar card.
type Profile struct {
	Name        map[string]string `json:"name"` // locale -> display name, "en" is required
	Title       string            `json:"title"`
	Institution Institution       `json:"institution"`
	Quote       string            `json:"quote"`
	Location    string            `json:"location"`
	Email       string            `json:"email"`
	Avatar      string            `json:"avatar"`
	Social      map[string]string `json:"social"` // platform -> URL
}

// DisplayName returns the name for locale, falling back to English.
func (p Profile) DisplayName(locale string) string {
	if n := p.Name[locale]; n != "" {
		return n
	}
	return p.Name["en"]
}

type Institution struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type About struct {
	Description       []string `json:"description"` // trusted HTML paragraphs
	ResearchInterests []string `json:"researchInterests"`
}

// NewsItem content is a trusted HTML fragment.
type NewsItem struct {
	Date    string `json:"date"` // "YYYY.MM" by convention
	Icon    string `json:"icon"`
	Content string `json:"content"`
}

type Publications struct {
	MyName string        `json:"myName"`
	Items  []Publication `json:"items"`
}

type Publication struct {
	Title   string   `json:"title"`
	Authors string   `json:"authors"` // comma separated
	Venue   string   `json:"venue"`
	Badges  []string `json:"badges"`
	Links   []Link   `json:"links"`
}

// PrimaryURL is where the publication title links to.
func (p Publication) PrimaryURL() string {
	if len(p.Links) > 0 && p.Links[0].URL != "" {
		return p.Links[0].URL
	}
	return "#"
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Award struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Institution string `json:"institution"`
}

type Experience struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Supervisor  string `json:"supervisor"`
}

type Services struct {
	Reviewer []string `json:"reviewer"`
	PCMember []string `json:"pcMember"`
}

// Known publication badges.
const (
	BadgeCCFA      = "ccf-a"
	BadgeCCFB      = "ccf-b"
	BadgeCCFC      = "ccf-c"
	BadgeOral      = "oral"
	BadgePoster    = "poster"
	BadgeBestPaper = "best-paper"
)

// Badges lists the known badges in display order.
var Badges = []string{BadgeCCFA, BadgeCCFB, BadgeCCFC, BadgeOral, BadgePoster, BadgeBestPaper}

var badgeLabels = map[string]string{
	BadgeCCFA:      "CCF-A",
	BadgeCCFB:      "CCF-B",
	BadgeCCFC:      "CCF-C",
	BadgeOral:      "Oral",
	BadgePoster:    "Poster",
	BadgeBestPaper: "Best Paper",
}

// BadgeLabel returns the human label for a badge; unknown badges render as-is.
func BadgeLabel(badge string) string {
	if l, ok := badgeLabels[badge]; ok {
		return l
	}
	return badge
}

// SocialPlatforms is the fixed render order for known social links.
var SocialPlatforms = []string{"github", "googleScholar", "linkedin", "twitter", "orcid"}

// Clone returns a deep copy of s.
func (s Site) Clone() Site {
	out := s
	out.Profile.Name = cloneMap(s.Profile.Name)
	out.Profile.Social = cloneMap(s.Profile.Social)
	out.About.Description = cloneSlice(s.About.Description)
	out.About.ResearchInterests = cloneSlice(s.About.ResearchInterests)
	out.News = cloneSlice(s.News)
	out.Awards = cloneSlice(s.Awards)
	out.Experience = cloneSlice(s.Experience)
	out.Services.Reviewer = cloneSlice(s.Services.Reviewer)
	out.Services.PCMember = cloneSlice(s.Services.PCMember)
	out.Publications.Items = cloneSlice(s.Publications.Items)
	for i := range out.Publications.Items {
		p := &out.Publications.Items[i]
		p.Badges = cloneSlice(p.Badges)
		p.Links = cloneSlice(p.Links)
	}
	return out
}

// Normalize replaces nil slices and maps with empty ones so the JSON form
// always carries arrays and objects, never null.
func (s *Site) Normalize() {
	if s.Profile.Name == nil {
		s.Profile.Name = map[string]string{}
	}
	if s.Profile.Social == nil {
		s.Profile.Social = map[string]string{}
	}
	s.About.Description = nonNil(s.About.Description)
	s.About.ResearchInterests = nonNil(s.About.ResearchInterests)
	if s.News == nil {
		s.News = []NewsItem{}
	}
	if s.Publications.Items == nil {
		s.Publications.Items = []Publication{}
	}
	for i := range s.Publications.Items {
		p := &s.Publications.Items[i]
		p.Badges = nonNil(p.Badges)
		if p.Links == nil {
			p.Links = []Link{}
		}
	}
	if s.Awards == nil {
		s.Awards = []Award{}
	}
	if s.Experience == nil {
		s.Experience = []Experience{}
	}
	s.Services.Reviewer = nonNil(s.Services.Reviewer)
	s.Services.PCMember = nonNil(s.Services.PCMember)
}

// MyNameSet reports whether the author-highlight name has been configured.
func (p Publications) MyNameSet() bool {
	n := strings.TrimSpace(p.MyName)
	return n != "" && n != "Your Name"
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
