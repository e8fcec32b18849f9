package views

import (
	"context"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/editor"
)

// EditData feeds the edit form.
type EditData struct {
	Site      content.Site
	SessionID string
	Draft     *DraftPrompt
	Message   string
	Error     string
	CSRFToken string
}

// Template row keys, replaced by editor.js with a fresh item key when a row
// is cloned. Nested lists use their own placeholder so that cloning an outer
// row leaves the inner template intact.
const (
	newKey    = "__KEY__"
	newSubKey = "__SUBKEY__"
)

// EditForm renders the whole site as one form. Field names are data paths
// and every repeated section declares itself with list and item markers, so
// the form can be collected back without knowing the DOM.
func EditForm(d EditData) templ.Component {
	return adminPage("Edit site", func(ctx context.Context, b *buffer) error {
		adminNav(b, d.CSRFToken)
		b.raw(`<main class="admin-main"><h1>Edit site</h1>`)
		flash(b, d.Message, d.Error)
		if d.Draft != nil {
			if err := b.embed(ctx, DraftBanner(*d.Draft, d.CSRFToken)); err != nil {
				return err
			}
		}
		s := d.Site

		b.raw(`<form id="edit-form" action="/admin/edit/save/" method="post" data-draft-url="/admin/edit/draft/">`)
		csrfField(b, d.CSRFToken)
		hidden(b, "session", d.SessionID)

		b.raw(`<fieldset><legend>Profile</legend>`)
		input(b, "Name (en)", "profile.name.en", s.Profile.Name["en"])
		locales := make([]string, 0, len(s.Profile.Name))
		for l := range s.Profile.Name {
			if l != "en" {
				locales = append(locales, l)
			}
		}
		sort.Strings(locales)
		for _, l := range locales {
			input(b, "Name ("+l+")", "profile.name."+l, s.Profile.Name[l])
		}
		input(b, "Title", "profile.title", s.Profile.Title)
		input(b, "Institution", "profile.institution.name", s.Profile.Institution.Name)
		input(b, "Institution URL", "profile.institution.url", s.Profile.Institution.URL)
		input(b, "Quote", "profile.quote", s.Profile.Quote)
		input(b, "Location", "profile.location", s.Profile.Location)
		input(b, "Email", "profile.email", s.Profile.Email)
		input(b, "Avatar", "profile.avatar", s.Profile.Avatar)
		platforms := append([]string(nil), content.SocialPlatforms...)
		for _, p := range SocialOrder(s.Profile.Social) {
			if _, ok := socialIcons[p]; !ok {
				platforms = append(platforms, p)
			}
		}
		for _, p := range platforms {
			input(b, p, "profile.social."+p, s.Profile.Social[p])
		}
		b.raw(`</fieldset>`)

		stringList(b, "About", "about.description", s.About.Description, true)
		stringList(b, "Research interests", "about.researchInterests", s.About.ResearchInterests, false)

		itemList(b, "News", "news", newKey, len(s.News), func(key string, i int) {
			var n content.NewsItem
			if i >= 0 {
				n = s.News[i]
			} else {
				n.Icon = editor.DefaultNewsIcon
			}
			base := "news." + key + "."
			input(b, "Date", base+"date", n.Date)
			input(b, "Icon", base+"icon", n.Icon)
			textarea(b, "Content (HTML)", base+"content", n.Content)
		})

		b.raw(`<fieldset><legend>Publications</legend>`)
		input(b, "My name (highlighted in author lists)", "publications.myName", s.Publications.MyName)
		b.raw(`</fieldset>`)
		itemList(b, "Publication list", "publications.items", newKey, len(s.Publications.Items), func(key string, i int) {
			var p content.Publication
			if i >= 0 {
				p = s.Publications.Items[i]
			}
			base := "publications.items." + key
			input(b, "Title", base+".title", p.Title)
			input(b, "Authors", base+".authors", p.Authors)
			input(b, "Venue", base+".venue", p.Venue)
			badges(b, base+".badges", p.Badges)
			itemList(b, "Links", base+".links", newSubKey, len(p.Links), func(lkey string, j int) {
				var l content.Link
				if j >= 0 {
					l = p.Links[j]
				}
				input(b, "Label", base+".links."+lkey+".label", l.Label)
				input(b, "URL", base+".links."+lkey+".url", l.URL)
			})
		})

		itemList(b, "Awards", "awards", newKey, len(s.Awards), func(key string, i int) {
			var a content.Award
			if i >= 0 {
				a = s.Awards[i]
			}
			base := "awards." + key + "."
			input(b, "Date", base+"date", a.Date)
			input(b, "Name", base+"name", a.Name)
			input(b, "Institution", base+"institution", a.Institution)
		})

		itemList(b, "Experience", "experience", newKey, len(s.Experience), func(key string, i int) {
			var e content.Experience
			if i >= 0 {
				e = s.Experience[i]
			}
			base := "experience." + key + "."
			input(b, "Date", base+"date", e.Date)
			input(b, "Title", base+"title", e.Title)
			input(b, "Institution", base+"institution", e.Institution)
			input(b, "Supervisor", base+"supervisor", e.Supervisor)
		})

		stringList(b, "Reviewer", "services.reviewer", s.Services.Reviewer, false)
		stringList(b, "PC member", "services.pcMember", s.Services.PCMember, false)

		b.raw(`<div class="form-actions"><button type="submit">Save</button> <span class="draft-status" aria-live="polite"></span></div></form>`)
		b.raw(`</main><script src="/public/editor.js" defer></script>`)
		return nil
	})
}

func hidden(b *buffer, name, value string) {
	b.raw(`<input type="hidden"`)
	b.attr("name", name)
	b.attr("value", value)
	b.raw(`>`)
}

func input(b *buffer, label, name, value string) {
	b.raw(`<label class="field"><span>`)
	b.text(label)
	b.raw(`</span><input type="text"`)
	b.attr("name", name)
	b.attr("value", value)
	b.raw(`></label>`)
}

func textarea(b *buffer, label, name, value string) {
	b.raw(`<label class="field"><span>`)
	b.text(label)
	b.raw(`</span><textarea rows="3"`)
	b.attr("name", name)
	b.raw(`>`)
	b.text(value)
	b.raw(`</textarea></label>`)
}

// stringList renders one input per value sharing the list's path as name.
func stringList(b *buffer, legend, path string, values []string, multiline bool) {
	b.raw(`<fieldset class="edit-list"`)
	b.attr("data-list", path)
	b.raw(`><legend>`)
	b.text(legend)
	b.raw(`</legend>`)
	hidden(b, editor.ListField, path)
	row := func(v string) {
		b.raw(`<div class="edit-item">`)
		if multiline {
			b.raw(`<textarea rows="3"`)
			b.attr("name", path)
			b.raw(`>`)
			b.text(v)
			b.raw(`</textarea>`)
		} else {
			b.raw(`<input type="text"`)
			b.attr("name", path)
			b.attr("value", v)
			b.raw(`>`)
		}
		b.raw(`<button type="button" class="remove-item">Remove</button></div>`)
	}
	b.raw(`<div class="edit-items">`)
	for _, v := range values {
		row(v)
	}
	b.raw(`</div><template>`)
	row("")
	b.raw(`</template><button type="button" class="add-item">Add</button></fieldset>`)
}

// itemList renders one row per item, keyed by the item's index, and a
// template row keyed placeholder. fields receives i = -1 for the template.
func itemList(b *buffer, legend, path, placeholder string, n int, fields func(key string, i int)) {
	b.raw(`<fieldset class="edit-list"`)
	b.attr("data-list", path)
	b.raw(`><legend>`)
	b.text(legend)
	b.raw(`</legend>`)
	hidden(b, editor.ListField, path)
	row := func(key string, i int) {
		b.raw(`<div class="edit-item">`)
		hidden(b, editor.ItemField, path+"."+key)
		fields(key, i)
		b.raw(`<button type="button" class="move-up">Up</button><button type="button" class="remove-item">Remove</button></div>`)
	}
	b.raw(`<div class="edit-items">`)
	for i := 0; i < n; i++ {
		row(strconv.Itoa(i), i)
	}
	b.raw(`</div><template>`)
	row(placeholder, -1)
	b.raw(`</template><button type="button" class="add-item"`)
	b.attr("data-placeholder", placeholder)
	b.raw(`>Add</button></fieldset>`)
}

// badges renders the known badges as checkboxes, plus any unknown badge
// already on the item so that saving does not drop it.
func badges(b *buffer, path string, current []string) {
	set := make(map[string]bool, len(current))
	for _, c := range current {
		set[c] = true
	}
	all := append([]string(nil), content.Badges...)
	for _, c := range current {
		if content.BadgeLabel(c) == c {
			all = append(all, c)
		}
	}
	b.raw(`<div class="badges">`)
	hidden(b, editor.ListField, path)
	for _, badge := range all {
		b.raw(`<label><input type="checkbox"`)
		b.attr("name", path)
		b.attr("value", badge)
		if set[badge] {
			b.raw(` checked`)
		}
		b.raw(`> `)
		b.text(content.BadgeLabel(badge))
		b.raw(`</label>`)
	}
	b.raw(`</div>`)
}
