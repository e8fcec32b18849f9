// Package editor maps the admin edit form onto the homepage data and back.
//
// Form field names are dotted data paths such as "profile.title",
// "news.3.date" or "publications.items.1.links.0.url". Repeated sections are
// declared with "_list=<path>" and their items, in display order, with
// "_item=<path>.<key>", where key is the item's original index or any
// non-numeric token for an item added in the browser.
package editor

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/scholarpage/content"
)

// Form marker fields.
const (
	ListField = "_list"
	ItemField = "_item"
)

// DefaultNewsIcon is used for news items added without an icon.
const DefaultNewsIcon = "📝"

type form struct {
	values url.Values
	lists  map[string]bool
	items  []string
}

func newForm(values url.Values) form {
	f := form{values: values, lists: make(map[string]bool)}
	for _, l := range values[ListField] {
		f.lists[l] = true
	}
	seen := make(map[string]bool)
	for _, it := range values[ItemField] {
		if !seen[it] {
			seen[it] = true
			f.items = append(f.items, it)
		}
	}
	return f
}

// scalar returns the submitted value of path, or prior when the field is absent.
func (f form) scalar(path, prior string) string {
	vals, ok := f.values[path]
	if !ok || len(vals) == 0 {
		return prior
	}
	return strings.TrimSpace(vals[0])
}

// required is scalar, but an empty submission also keeps prior.
func (f form) required(path, prior string) string {
	if v := f.scalar(path, prior); v != "" {
		return v
	}
	return prior
}

// stringList returns the non-empty values of a declared string list, or prior.
func (f form) stringList(path string, prior []string) []string {
	if !f.lists[path] {
		return prior
	}
	out := []string{}
	for _, v := range f.values[path] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// itemKeys returns, in form order, the item keys declared directly under list.
func (f form) itemKeys(list string) []string {
	prefix := list + "."
	var keys []string
	for _, it := range f.items {
		rest, ok := strings.CutPrefix(it, prefix)
		if ok && rest != "" && !strings.Contains(rest, ".") {
			keys = append(keys, rest)
		}
	}
	return keys
}

// priorIndex resolves an item key to an index into a prior list of length n.
func priorIndex(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	return i, err == nil && i >= 0 && i < n
}

// Collect builds the edited site from a submitted form. Fields missing from
// the form keep their prior values. Lists are rebuilt only when declared:
// items appear in form order, undeclared items are dropped, and missing item
// fields fall back to the prior item the key refers to.
func Collect(prior content.Site, values url.Values) content.Site {
	f := newForm(values)
	s := prior.Clone()
	s.Normalize()

	collectProfile(f, &s.Profile)

	s.About.Description = f.stringList("about.description", s.About.Description)
	s.About.ResearchInterests = f.stringList("about.researchInterests", s.About.ResearchInterests)
	s.Services.Reviewer = f.stringList("services.reviewer", s.Services.Reviewer)
	s.Services.PCMember = f.stringList("services.pcMember", s.Services.PCMember)

	if f.lists["news"] {
		s.News = collectNews(f, s.News)
	}
	s.Publications.MyName = f.scalar("publications.myName", s.Publications.MyName)
	if f.lists["publications.items"] {
		s.Publications.Items = collectPublications(f, s.Publications.Items)
	}
	if f.lists["awards"] {
		s.Awards = collectAwards(f, s.Awards)
	}
	if f.lists["experience"] {
		s.Experience = collectExperience(f, s.Experience)
	}
	s.Normalize()
	return s
}

func collectProfile(f form, p *content.Profile) {
	for key := range f.values {
		if locale, ok := strings.CutPrefix(key, "profile.name."); ok && locale != "" && !strings.Contains(locale, ".") {
			if locale == "en" {
				continue
			}
			if v := f.scalar(key, ""); v != "" {
				p.Name[locale] = v
			} else {
				delete(p.Name, locale)
			}
		}
	}
	p.Name["en"] = f.required("profile.name.en", p.Name["en"])
	p.Title = f.required("profile.title", p.Title)
	p.Email = f.required("profile.email", p.Email)
	p.Institution.Name = f.scalar("profile.institution.name", p.Institution.Name)
	p.Institution.URL = f.scalar("profile.institution.url", p.Institution.URL)
	p.Quote = f.scalar("profile.quote", p.Quote)
	p.Location = f.scalar("profile.location", p.Location)
	p.Avatar = f.scalar("profile.avatar", p.Avatar)

	for key := range f.values {
		if platform, ok := strings.CutPrefix(key, "profile.social."); ok && platform != "" && !strings.Contains(platform, ".") {
			if v := f.scalar(key, ""); v != "" {
				p.Social[platform] = v
			} else {
				delete(p.Social, platform)
			}
		}
	}
}

func collectNews(f form, prior []content.NewsItem) []content.NewsItem {
	out := []content.NewsItem{}
	for _, key := range f.itemKeys("news") {
		var old content.NewsItem
		if i, ok := priorIndex(key, len(prior)); ok {
			old = prior[i]
		}
		base := "news." + key + "."
		item := content.NewsItem{
			Date:    f.scalar(base+"date", old.Date),
			Icon:    f.scalar(base+"icon", old.Icon),
			Content: f.scalar(base+"content", old.Content),
		}
		if item.Icon == "" {
			item.Icon = DefaultNewsIcon
		}
		out = append(out, item)
	}
	return out
}

func collectPublications(f form, prior []content.Publication) []content.Publication {
	out := []content.Publication{}
	for _, key := range f.itemKeys("publications.items") {
		var old content.Publication
		if i, ok := priorIndex(key, len(prior)); ok {
			old = prior[i]
		}
		path := "publications.items." + key
		base := path + "."
		p := content.Publication{
			Title:   f.scalar(base+"title", old.Title),
			Authors: f.scalar(base+"authors", old.Authors),
			Venue:   f.scalar(base+"venue", old.Venue),
			Badges:  f.stringList(base+"badges", old.Badges),
			Links:   old.Links,
		}
		if f.lists[base+"links"] {
			p.Links = collectLinks(f, base+"links", old.Links)
		}
		out = append(out, p)
	}
	return out
}

func collectLinks(f form, list string, prior []content.Link) []content.Link {
	out := []content.Link{}
	for _, key := range f.itemKeys(list) {
		var old content.Link
		if i, ok := priorIndex(key, len(prior)); ok {
			old = prior[i]
		}
		base := list + "." + key + "."
		l := content.Link{
			Label: f.scalar(base+"label", old.Label),
			URL:   f.scalar(base+"url", old.URL),
		}
		if l.Label == "" && l.URL == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func collectAwards(f form, prior []content.Award) []content.Award {
	out := []content.Award{}
	for _, key := range f.itemKeys("awards") {
		var old content.Award
		if i, ok := priorIndex(key, len(prior)); ok {
			old = prior[i]
		}
		base := "awards." + key + "."
		out = append(out, content.Award{
			Date:        f.scalar(base+"date", old.Date),
			Name:        f.scalar(base+"name", old.Name),
			Institution: f.scalar(base+"institution", old.Institution),
		})
	}
	return out
}

func collectExperience(f form, prior []content.Experience) []content.Experience {
	out := []content.Experience{}
	for _, key := range f.itemKeys("experience") {
		var old content.Experience
		if i, ok := priorIndex(key, len(prior)); ok {
			old = prior[i]
		}
		base := "experience." + key + "."
		out = append(out, content.Experience{
			Date:        f.scalar(base+"date", old.Date),
			Title:       f.scalar(base+"title", old.Title),
			Institution: f.scalar(base+"institution", old.Institution),
			Supervisor:  f.scalar(base+"supervisor", old.Supervisor),
		})
	}
	return out
}
