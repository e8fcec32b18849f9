package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/search"
)

// DraftPrompt asks the admin to restore or discard an unsaved draft.
type DraftPrompt struct {
	SavedAt string
}

// SnapshotRow is one entry of the version history table.
type SnapshotRow struct {
	ID        int64
	Label     string
	Timestamp string
}

// DashboardData feeds the admin dashboard.
type DashboardData struct {
	Stats     content.Statistics
	Visits    *VisitStats
	Draft     *DraftPrompt
	Message   string
	Error     string
	CSRFToken string
}

// HistoryData feeds the version history page.
type HistoryData struct {
	Snapshots []SnapshotRow
	Max       int
	Message   string
	Error     string
	CSRFToken string
}

func adminPage(title string, body func(ctx context.Context, b *buffer) error) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex">`)
		b.element("title", "", title)
		b.raw(`<link rel="stylesheet" href="/public/style.css"></head><body class="admin">`)
		if err := body(ctx, b); err != nil {
			return err
		}
		b.raw(`</body></html>`)
		return nil
	})
}

func adminNav(b *buffer, csrf string) {
	b.raw(`<nav class="admin-nav"><a href="/">View site</a> <a href="/admin/">Dashboard</a> <a href="/admin/edit/">Edit</a> <a href="/admin/versions/">History</a> <a href="/admin/analytics/">Analytics</a>`)
	b.raw(`<form action="/admin/logout/" method="post" class="inline">`)
	csrfField(b, csrf)
	b.raw(`<button type="submit">Log out</button></form></nav>`)
}

func flash(b *buffer, message, errMsg string) {
	if message != "" {
		b.element("p", "flash flash-ok", message)
	}
	if errMsg != "" {
		b.raw(`<p class="flash flash-error" role="alert">`)
		b.text(errMsg)
		b.raw(`</p>`)
	}
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return adminPage("Admin login", func(ctx context.Context, b *buffer) error {
		b.raw(`<main class="admin-login"><h1>Admin</h1>`)
		if showError {
			b.raw(`<p class="flash flash-error" role="alert">Invalid password.</p>`)
		}
		b.raw(`<form action="/admin/login/" method="post">`)
		csrfField(b, csrfToken)
		b.raw(`<label>Password <input type="password" name="password" autofocus required></label><button type="submit">Log in</button></form></main>`)
		return nil
	})
}

// DraftBanner renders the restore/discard prompt for an unsaved draft.
func DraftBanner(d DraftPrompt, csrfToken string) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div class="draft-prompt" role="alert"><p>An unsaved draft from `)
		b.text(d.SavedAt)
		b.raw(` differs from the published site.</p>`)
		b.raw(`<a class="button" href="/admin/edit/?draft=restore">Restore draft</a>`)
		b.raw(`<form action="/admin/edit/draft/discard/" method="post" class="inline">`)
		csrfField(b, csrfToken)
		b.raw(`<button type="submit">Discard draft</button></form></div>`)
		return nil
	})
}

// AdminDashboard renders statistics, the draft prompt and the data tools.
func AdminDashboard(d DashboardData) templ.Component {
	return adminPage("Dashboard", func(ctx context.Context, b *buffer) error {
		adminNav(b, d.CSRFToken)
		b.raw(`<main class="admin-main"><h1>Dashboard</h1>`)
		flash(b, d.Message, d.Error)
		if d.Draft != nil {
			if err := b.embed(ctx, DraftBanner(*d.Draft, d.CSRFToken)); err != nil {
				return err
			}
		}

		st := d.Stats
		b.raw(`<section class="stats"><h2>Content</h2><dl>`)
		dl(b, "Name", st.Profile.Name)
		dl(b, "Email", st.Profile.Email)
		dl(b, "Institution", st.Profile.Institution)
		dl(b, "Publications", strconv.Itoa(st.Content.PublicationsCount))
		dl(b, "News", strconv.Itoa(st.Content.NewsCount))
		dl(b, "Awards", strconv.Itoa(st.Content.AwardsCount))
		dl(b, "Experience", strconv.Itoa(st.Content.ExperienceCount))
		dl(b, "Research interests", strconv.Itoa(st.Content.ResearchInterestsCount))
		dl(b, "Saved versions", strconv.Itoa(st.Versions))
		b.raw(`</dl></section>`)

		if d.Visits != nil {
			b.raw(`<section class="stats"><h2>Visitors</h2>`)
			if err := b.embed(ctx, StatsFooter(*d.Visits)); err != nil {
				return err
			}
			b.raw(`</section>`)
		}

		b.raw(`<section class="data-tools"><h2>Export</h2><ul>`)
		b.raw(`<li><a href="/admin/export/json/">site-data.json</a></li>`)
		b.raw(`<li><a href="/admin/export/js/">data.js</a></li>`)
		b.raw(`<li><a href="/admin/export/md/">site-data.md</a> (<a href="/admin/export/md/preview/">preview</a>)</li>`)
		b.raw(`</ul><h2>Import</h2>`)
		b.raw(`<form action="/admin/import/" method="post" enctype="multipart/form-data" onsubmit="return confirm('Importing replaces all current data. A snapshot is taken first. Continue?')">`)
		csrfField(b, d.CSRFToken)
		b.raw(`<input type="hidden" name="confirm" value="yes"><input type="file" name="file" accept="application/json,.json" required><button type="submit">Import JSON</button></form>`)
		b.raw(`<h2>Avatar</h2><form action="/admin/avatar/" method="post" enctype="multipart/form-data">`)
		csrfField(b, d.CSRFToken)
		b.raw(`<input type="file" name="avatar" accept="image/*" required><button type="submit">Upload</button></form></section>`)
		b.raw(`</main>`)
		return nil
	})
}

func dl(b *buffer, term, value string) {
	b.element("dt", "", term)
	b.element("dd", "", value)
}

// AdminHistory renders the snapshot list with restore and delete actions.
func AdminHistory(d HistoryData) templ.Component {
	return adminPage("Version history", func(ctx context.Context, b *buffer) error {
		adminNav(b, d.CSRFToken)
		b.raw(`<main class="admin-main"><h1>Version history</h1>`)
		flash(b, d.Message, d.Error)
		b.raw(`<p>Up to `)
		b.text(strconv.Itoa(d.Max))
		b.raw(` snapshots are kept; the oldest is dropped first.</p>`)

		b.raw(`<form action="/admin/versions/" method="post">`)
		csrfField(b, d.CSRFToken)
		b.raw(`<input type="text" name="label" placeholder="Label (optional)"><button type="submit">Create snapshot</button></form>`)

		if len(d.Snapshots) == 0 {
			b.raw(`<p class="empty">No snapshots yet.</p>`)
		} else {
			b.raw(`<table class="versions"><thead><tr><th>Label</th><th>Created</th><th></th></tr></thead><tbody>`)
			for _, s := range d.Snapshots {
				id := strconv.FormatInt(s.ID, 10)
				b.raw(`<tr>`)
				b.element("td", "", s.Label)
				b.element("td", "", s.Timestamp)
				b.raw(`<td><form method="post" class="inline"`)
				b.attr("action", "/admin/versions/"+id+"/restore/")
				b.attr("onsubmit", "return confirm("+strconv.Quote("Restore from \""+s.Label+"\"? This will replace all current data.")+")")
				b.raw(`>`)
				csrfField(b, d.CSRFToken)
				b.raw(`<input type="hidden" name="confirm" value="yes"><button type="submit">Restore</button></form>`)
				b.raw(`<form method="post" class="inline"`)
				b.attr("action", "/admin/versions/"+id+"/delete/")
				b.raw(` onsubmit="return confirm('Delete this snapshot?')">`)
				csrfField(b, d.CSRFToken)
				b.raw(`<button type="submit">Delete</button></form></td></tr>`)
			}
			b.raw(`</tbody></table>`)
			b.raw(`<form action="/admin/versions/clear/" method="post" onsubmit="return confirm('Delete all saved versions?')">`)
			csrfField(b, d.CSRFToken)
			b.raw(`<button type="submit">Clear all</button></form>`)
		}
		b.raw(`</main>`)
		return nil
	})
}

// MarkdownPreview wraps already rendered Markdown HTML in the admin layout.
func MarkdownPreview(htmlBody, csrfToken string) templ.Component {
	return adminPage("Markdown export", func(ctx context.Context, b *buffer) error {
		adminNav(b, csrfToken)
		b.raw(`<main class="admin-main markdown-preview">`)
		b.raw(htmlBody)
		b.raw(`</main>`)
		return nil
	})
}

// SearchResults renders the result page for query with matched terms marked.
func SearchResults(query string, results []search.Result) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<!DOCTYPE html><html lang="en">`)
		writeHead(b, PageMeta{Title: "Search: " + query}, nil)
		b.raw(`<body><main class="container search-page"><form action="/search/" method="get" role="search">`)
		b.raw(`<input type="search" name="q" minlength="2" autofocus`)
		b.attr("value", query)
		b.raw(`></form><div class="search-results">`)
		switch {
		case len(search.Terms(query)) == 0:
			b.raw(`<div class="search-empty">Start typing to search...</div>`)
		case len(results) == 0:
			b.raw(`<div class="search-empty">No results found</div>`)
		}
		for _, r := range results {
			b.raw(`<a class="search-result"`)
			b.href(resultAnchor(r.Entry))
			b.attr("data-type", r.Type)
			b.attr("data-id", strconv.Itoa(r.ID))
			b.raw(`><div class="search-result-title">`)
			b.raw(search.Highlight(r.Title, query))
			b.raw(`</div>`)
			if r.Content != "" {
				b.raw(`<div class="search-result-text">` + search.Highlight(r.Content, query) + `</div>`)
			}
			if r.Authors != "" {
				b.raw(`<div class="search-result-authors">` + search.Highlight(r.Authors, query) + `</div>`)
			}
			b.raw(`<div class="search-result-meta">`)
			b.element("span", "search-result-type", r.Type)
			b.raw(`</div></a>`)
		}
		b.raw(`</div><p><a href="/">Back to homepage</a></p></main></body></html>`)
		return nil
	})
}

func resultAnchor(e search.Entry) string {
	if e.Type == search.TypePublication {
		return "/#pub-" + strconv.Itoa(e.ID)
	}
	return "/#" + e.Section
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return errorPage("404", "Page not found", "The page you are looking for does not exist.")
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return errorPage("500", "Something went wrong", "Please try again later.")
}

// Unprocessable renders a 422 page with the rejection reason.
func Unprocessable(reason string) templ.Component {
	return errorPage("422", "Import rejected", reason)
}

func errorPage(code, title, detail string) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<!DOCTYPE html><html lang="en">`)
		writeHead(b, PageMeta{Title: title}, nil)
		b.raw(`<body><main class="container error-page">`)
		b.element("h1", "error-code", code)
		b.element("h2", "", title)
		b.element("p", "", detail)
		b.raw(`<p><a href="/">Back to homepage</a></p></main></body></html>`)
		return nil
	})
}

// Count is one labelled number in a breakdown table.
type Count struct {
	Name  string
	Value int
}

// AnalyticsData feeds the visitor analytics page.
type AnalyticsData struct {
	Visits    VisitStats
	Period    string
	Referrers []Count
	Daily     []Count
	CSRFToken string
}

// AdminAnalytics renders visitor totals, referrers and the daily series.
func AdminAnalytics(d AnalyticsData) templ.Component {
	return adminPage("Analytics", func(ctx context.Context, b *buffer) error {
		adminNav(b, d.CSRFToken)
		b.raw(`<main class="admin-main"><h1>Analytics</h1>`)
		if err := b.embed(ctx, StatsFooter(d.Visits)); err != nil {
			return err
		}
		b.raw(`<nav class="periods">`)
		for _, p := range []string{"today", "week", "month", "year"} {
			b.raw(`<a`)
			b.href("/admin/analytics/?period=" + p)
			if p == d.Period {
				b.raw(` aria-current="page"`)
			}
			b.raw(`>`)
			b.text(p)
			b.raw(`</a> `)
		}
		b.raw(`</nav>`)
		countTable(b, "Referrers", "Source", d.Referrers)
		countTable(b, "Views per day", "Date", d.Daily)
		b.raw(`</main>`)
		return nil
	})
}

func countTable(b *buffer, title, column string, rows []Count) {
	b.element("h2", "", title)
	if len(rows) == 0 {
		b.raw(`<p class="empty">No data yet.</p>`)
		return
	}
	b.raw(`<table class="counts"><thead><tr>`)
	b.element("th", "", column)
	b.raw(`<th>Views</th></tr></thead><tbody>`)
	for _, r := range rows {
		b.raw(`<tr>`)
		b.element("td", "", r.Name)
		b.element("td", "", strconv.Itoa(r.Value))
		b.raw(`</tr>`)
	}
	b.raw(`</tbody></table>`)
}
