package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/scholarpage/content"
)

// PageMeta carries per-page OpenGraph and SEO metadata into <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "profile"
	Image       string
}

// VisitStats is the footer analytics widget.
type VisitStats struct {
	TotalViews     int
	UniqueVisitors int
	TodayViews     int
	LastVisit      string
}

// PageData is everything the home page needs.
type PageData struct {
	Site   content.Site
	Meta   PageMeta
	JSONLD []string // serialized JSON-LD documents
	Locale string

	// Visitor preferences, written as data-* attributes on <html>.
	Theme         string
	ReducedMotion bool
	HighContrast  bool
	FontSize      string

	// Main is the pre-rendered <main> element; nil renders it from Site.
	Main templ.Component

	Stats     *VisitStats // nil hides the widget
	CSRFToken string
	Admin     bool
	// Static drops the controls that need the server (search, preferences).
	Static bool
}

var sectionTitles = map[string]string{
	"about":        "About Me",
	"news":         "News",
	"publications": "Publications",
	"awards":       "Honors & Awards",
	"experience":   "Experience",
	"services":     "Academic Services",
}

// Home renders the full homepage.
func Home(d PageData) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		openDocument(b, d)
		writeHead(b, d.Meta, d.JSONLD)
		b.raw(`<body><div class="skip-links"><a href="#main-content" class="skip-link">Skip to main content</a><a href="#about" class="skip-link">Skip to about</a></div>`)
		writeNav(b, d)

		main := d.Main
		if main == nil {
			main = Main(d.Site, d.Locale)
		}
		if err := b.embed(ctx, main); err != nil {
			return err
		}

		b.raw(`<footer class="footer">`)
		if d.Stats != nil {
			if err := b.embed(ctx, StatsFooter(*d.Stats)); err != nil {
				return err
			}
		}
		b.raw(`<p>© `)
		b.text(d.Site.Profile.DisplayName("en"))
		b.raw(` · <a href="/feed.xml">RSS</a>`)
		if !d.Static {
			b.raw(` · <a href="/admin/">Admin</a>`)
		}
		b.raw(`</p></footer></body></html>`)
		return nil
	})
}

// Main renders the profile sidebar and every content section. It depends
// only on the site and locale, which makes it the cacheable part of the page.
func Main(s content.Site, locale string) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<main id="main-content" class="container"><aside class="sidebar">`)
		if err := b.embed(ctx, Profile(s.Profile, locale)); err != nil {
			return err
		}
		b.raw(`</aside><div class="content">`)

		sections := []templ.Component{
			About(s.About),
			News(s.News),
			Publications(s.Publications),
			Awards(s.Awards),
			Experience(s.Experience),
			Services(s.Services),
		}
		for i, id := range SectionIDs {
			b.raw(`<section`)
			b.attr("id", id)
			b.raw(` class="section">`)
			b.element("h2", "section-title", sectionTitles[id])
			if err := b.embed(ctx, sections[i]); err != nil {
				return err
			}
			b.raw(`</section>`)
		}
		b.raw(`</div></main>`)
		return nil
	})
}

func openDocument(b *buffer, d PageData) {
	lang := d.Locale
	if lang == "" {
		lang = "en"
	}
	b.raw(`<!DOCTYPE html><html`)
	b.attr("lang", lang)
	if d.Theme != "" {
		b.attr("data-theme", d.Theme)
	}
	b.attr("data-reduced-motion", strconv.FormatBool(d.ReducedMotion))
	b.attr("data-high-contrast", strconv.FormatBool(d.HighContrast))
	if d.FontSize != "" {
		b.attr("data-font-size", d.FontSize)
	}
	b.raw(`>`)
}

func writeHead(b *buffer, m PageMeta, jsonLD []string) {
	b.raw(`<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.element("title", "", m.Title)
	if m.Description != "" {
		b.raw(`<meta name="description"`)
		b.attr("content", m.Description)
		b.raw(`>`)
	}
	if m.URL != "" {
		b.raw(`<link rel="canonical"`)
		b.attr("href", m.URL)
		b.raw(`><meta property="og:url"`)
		b.attr("content", m.URL)
		b.raw(`>`)
	}
	b.raw(`<meta property="og:title"`)
	b.attr("content", m.Title)
	b.raw(`><meta property="og:type"`)
	b.attr("content", orDefault(m.OGType, "website"))
	b.raw(`>`)
	if m.Description != "" {
		b.raw(`<meta property="og:description"`)
		b.attr("content", m.Description)
		b.raw(`>`)
	}
	if m.Image != "" {
		b.raw(`<meta property="og:image"`)
		b.attr("content", m.Image)
		b.raw(`>`)
	}
	b.raw(`<link rel="stylesheet" href="/public/style.css">`)
	b.raw(`<link rel="alternate" type="application/rss+xml" title="News" href="/feed.xml">`)
	for _, ld := range jsonLD {
		// json.Marshal escapes <, > and &, so the document cannot close the tag.
		b.raw(`<script type="application/ld+json">` + ld + `</script>`)
	}
	b.raw(`</head>`)
}

func writeNav(b *buffer, d PageData) {
	b.raw(`<nav class="navbar"><div class="nav-container"><a class="nav-brand" href="#">`)
	b.text(d.Site.Profile.DisplayName(d.Locale))
	b.raw(`</a><ul class="nav-links">`)
	for _, id := range SectionIDs {
		b.raw(`<li><a`)
		b.attr("href", "#"+id)
		b.raw(`>`)
		b.text(sectionTitles[id])
		b.raw(`</a></li>`)
	}
	b.raw(`</ul>`)
	if !d.Static {
		b.raw(`<form class="nav-search" action="/search/" method="get" role="search">`)
		b.raw(`<input type="search" name="q" minlength="2" placeholder="Search publications, news, awards..." aria-label="Search">`)
		b.raw(`</form>`)
		writePrefsControls(b, d)
	}
	b.raw(`</div></nav>`)
}

func writePrefsControls(b *buffer, d PageData) {
	b.raw(`<form class="theme-toggle" action="/prefs/theme/" method="post">`)
	csrfField(b, d.CSRFToken)
	label := "Dark mode"
	if d.Theme == "dark" {
		label = "Light mode"
	}
	b.raw(`<button type="submit" class="theme-toggle-btn">`)
	b.text(label)
	b.raw(`</button></form>`)

	b.raw(`<details class="a11y-panel"><summary>Accessibility</summary>`)
	b.raw(`<form action="/prefs/accessibility/" method="post">`)
	csrfField(b, d.CSRFToken)
	checkbox(b, "reducedMotion", "Reduce motion", d.ReducedMotion)
	checkbox(b, "highContrast", "High contrast", d.HighContrast)
	b.raw(`<label>Font size <select name="fontSize">`)
	for _, size := range []string{"small", "normal", "large", "xlarge"} {
		b.raw(`<option`)
		b.attr("value", size)
		if size == d.FontSize {
			b.raw(` selected`)
		}
		b.raw(`>`)
		b.text(size)
		b.raw(`</option>`)
	}
	b.raw(`</select></label><button type="submit">Apply</button>`)
	b.raw(`<button type="submit" name="reset" value="1">Reset</button></form></details>`)
}

// StatsFooter renders the visitor counter widget.
func StatsFooter(s VisitStats) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div class="analytics-widget">`)
		stat(b, "Total views", strconv.Itoa(s.TotalViews))
		stat(b, "Unique visitors", strconv.Itoa(s.UniqueVisitors))
		stat(b, "Today", strconv.Itoa(s.TodayViews))
		if s.LastVisit != "" {
			stat(b, "Last visit", s.LastVisit)
		}
		b.raw(`</div>`)
		return nil
	})
}

func stat(b *buffer, label, value string) {
	b.raw(`<span class="stat">`)
	b.element("span", "stat-label", label)
	b.raw(` `)
	b.element("span", "stat-value", value)
	b.raw(`</span>`)
}

func csrfField(b *buffer, token string) {
	if token == "" {
		return
	}
	b.raw(`<input type="hidden" name="_csrf"`)
	b.attr("value", token)
	b.raw(`>`)
}

func checkbox(b *buffer, name, label string, checked bool) {
	b.raw(`<label><input type="checkbox" value="1"`)
	b.attr("name", name)
	if checked {
		b.raw(` checked`)
	}
	b.raw(`> `)
	b.text(label)
	b.raw(`</label>`)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
