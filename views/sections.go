package views

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/scholarpage/content"
)

// Section container ids, in page order.
var SectionIDs = []string{"about", "news", "publications", "awards", "experience", "services"}

var socialIcons = map[string]string{
	"github":        "fab fa-github",
	"googleScholar": "fas fa-graduation-cap",
	"linkedin":      "fab fa-linkedin-in",
	"twitter":       "fab fa-twitter",
	"orcid":         "fab fa-orcid",
}

// SocialOrder returns the platforms of social with a URL: the known
// platforms in fixed order, then any others sorted by name.
func SocialOrder(social map[string]string) []string {
	var out []string
	known := make(map[string]bool, len(content.SocialPlatforms))
	for _, p := range content.SocialPlatforms {
		known[p] = true
		if social[p] != "" {
			out = append(out, p)
		}
	}
	var rest []string
	for p, u := range social {
		if !known[p] && u != "" {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Profile renders the sidebar card into #profile-container.
func Profile(p content.Profile, locale string) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		name := p.DisplayName(locale)
		b.raw(`<div id="profile-container"><div class="profile-card">`)
		if p.Avatar != "" {
			b.raw(`<img`)
			b.attr("src", p.Avatar)
			b.attr("alt", name)
			b.raw(` class="profile-avatar">`)
		}
		b.element("h2", "profile-name", name)
		b.element("p", "profile-title", p.Title)
		if p.Institution.Name != "" {
			b.raw(`<p class="profile-institution"><a`)
			b.href(p.Institution.URL)
			b.raw(` target="_blank" rel="noopener">`)
			b.text(p.Institution.Name)
			b.raw(`</a></p>`)
		}
		if p.Quote != "" {
			b.element("p", "profile-quote", "“"+p.Quote+"”")
		}
		b.raw(`<div class="profile-info">`)
		if p.Location != "" {
			b.raw(`<div class="profile-info-item"><i class="fas fa-map-marker-alt"></i><span>`)
			b.text(p.Location)
			b.raw(`</span></div>`)
		}
		if p.Email != "" {
			b.raw(`<div class="profile-info-item"><i class="fas fa-envelope"></i><a`)
			b.href("mailto:" + p.Email)
			b.raw(`>`)
			b.text(p.Email)
			b.raw(`</a></div>`)
		}
		b.raw(`</div><div class="profile-social">`)
		for _, platform := range SocialOrder(p.Social) {
			b.raw(`<a`)
			b.href(p.Social[platform])
			b.attr("class", "social-link social-"+platform)
			b.attr("aria-label", platform)
			b.raw(` target="_blank" rel="noopener noreferrer">`)
			if icon, ok := socialIcons[platform]; ok {
				b.raw(`<i`)
				b.attr("class", icon)
				b.raw(`></i>`)
			} else {
				b.text(platform)
			}
			b.raw(`</a>`)
		}
		b.raw(`</div></div></div>`)
		return nil
	})
}

// About renders the biography paragraphs and research interests. The
// paragraphs are trusted HTML.
func About(a content.About) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="about-container"><div class="about-content">`)
		for _, p := range a.Description {
			b.raw("<p>" + p + "</p>")
		}
		b.raw(`</div><div class="research-interests"><h4>Research Interests</h4><div class="interest-tags">`)
		for _, r := range a.ResearchInterests {
			b.element("span", "interest-tag", r)
		}
		b.raw(`</div></div></div>`)
		return nil
	})
}

// News renders the news feed. Item content is trusted HTML.
func News(items []content.NewsItem) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="news-container"><div class="news-container">`)
		for _, n := range items {
			b.raw(`<div class="news-item">`)
			b.element("div", "news-icon", n.Icon)
			b.raw(`<div class="news-content">`)
			b.element("div", "news-date", n.Date)
			b.raw(`<div class="news-text">` + n.Content + `</div></div></div>`)
		}
		b.raw(`</div></div>`)
		return nil
	})
}

// HighlightAuthors escapes authors and wraps every case-insensitive
// occurrence of myName in <span class="my-name">. Substring hits inside
// longer names are highlighted too.
func HighlightAuthors(authors, myName string) string {
	if !(content.Publications{MyName: myName}).MyNameSet() {
		return templ.EscapeString(authors)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(myName))
	var b buffer
	last := 0
	for _, m := range re.FindAllStringIndex(authors, -1) {
		b.text(authors[last:m[0]])
		b.raw(`<span class="my-name">`)
		b.text(authors[m[0]:m[1]])
		b.raw(`</span>`)
		last = m[1]
	}
	b.text(authors[last:])
	return b.String()
}

// Publications renders the publication list with author highlighting,
// badges and links. Each item gets a BibTeX link keyed by its position.
func Publications(p content.Publications) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="publications-container"><div class="publication-list">`)
		for i, pub := range p.Items {
			b.raw(`<div class="publication-item"`)
			b.attr("id", "pub-"+strconv.Itoa(i))
			b.raw(`><div class="pub-title"><a`)
			b.href(pub.PrimaryURL())
			b.raw(` target="_blank" rel="noopener">`)
			b.text(pub.Title)
			b.raw(`</a></div><div class="pub-authors">`)
			b.raw(HighlightAuthors(pub.Authors, p.MyName))
			b.raw(`</div>`)
			b.element("div", "pub-venue", pub.Venue)
			if len(pub.Badges) > 0 {
				b.raw(`<div class="pub-badges">`)
				for j, badge := range pub.Badges {
					if j > 0 {
						b.raw(" ")
					}
					b.element("span", "badge "+badge, content.BadgeLabel(badge))
				}
				b.raw(`</div>`)
			}
			b.raw(`<div class="pub-links">`)
			for _, l := range pub.Links {
				b.raw(`<a`)
				b.href(l.URL)
				b.raw(` class="pub-link" target="_blank" rel="noopener">`)
				b.text(l.Label)
				b.raw(`</a>`)
			}
			b.raw(`<a class="pub-link pub-bibtex"`)
			b.href("/publications/" + strconv.Itoa(i) + "/bibtex/")
			b.raw(`>BibTeX</a></div></div>`)
		}
		b.raw(`</div></div>`)
		return nil
	})
}

// Awards renders the awards list.
func Awards(awards []content.Award) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="awards-container"><ul class="awards-list">`)
		for _, a := range awards {
			b.raw(`<li class="award-item">`)
			b.element("div", "award-date", a.Date)
			b.raw(`<div class="award-content">`)
			b.element("div", "award-name", a.Name)
			b.element("div", "award-institution", a.Institution)
			b.raw(`</div></li>`)
		}
		b.raw(`</ul></div>`)
		return nil
	})
}

// Experience renders the timeline.
func Experience(items []content.Experience) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="experience-container"><div class="experience-timeline">`)
		for _, e := range items {
			b.raw(`<div class="experience-item">`)
			b.element("div", "exp-date", e.Date)
			b.element("div", "exp-title", e.Title)
			b.element("div", "exp-institution", e.Institution)
			if e.Supervisor != "" {
				b.element("div", "exp-supervisor", e.Supervisor)
			}
			b.raw(`</div>`)
		}
		b.raw(`</div></div>`)
		return nil
	})
}

// Services renders the reviewer list and, when present, PC memberships.
func Services(s content.Services) templ.Component {
	return render(func(ctx context.Context, b *buffer) error {
		b.raw(`<div id="services-container"><div class="services-list">`)
		serviceCategory(b, "Reviewer", s.Reviewer)
		if len(s.PCMember) > 0 {
			serviceCategory(b, "PC Member", s.PCMember)
		}
		b.raw(`</div></div>`)
		return nil
	})
}

func serviceCategory(b *buffer, title string, items []string) {
	b.raw(`<div class="service-category">`)
	b.element("h4", "", title)
	b.raw(`<div class="service-items">`)
	for _, it := range items {
		b.element("span", "service-item", it)
	}
	b.raw(`</div></div>`)
}
