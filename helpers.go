package scholarpage

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/views"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// SectionURL returns the homepage URL with a section fragment.
func SectionURL(base, section string) string {
	return BuildURL(base) + "#" + section
}

// absoluteAsset resolves a relative asset reference (such as the avatar)
// against base. Absolute URLs are returned unchanged.
func absoluteAsset(base, ref string) string {
	if ref == "" {
		return ""
	}
	if content.IsValidURL(ref) {
		return ref
	}
	b, err := url.Parse(BuildURL(base))
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PersonJsonLD returns a schema.org Person document for the profile.
func PersonJsonLD(s content.Site, cfg SiteConfig) string {
	p := s.Profile
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     p.DisplayName("en"),
		"url":      BuildURL(cfg.URL),
	}
	if p.Title != "" {
		data["jobTitle"] = p.Title
	}
	if p.Email != "" {
		data["email"] = "mailto:" + p.Email
	}
	if img := absoluteAsset(cfg.URL, p.Avatar); img != "" {
		data["image"] = img
	}
	if p.Institution.Name != "" {
		org := map[string]string{"@type": "CollegeOrUniversity", "name": p.Institution.Name}
		if p.Institution.URL != "" {
			org["url"] = p.Institution.URL
		}
		data["affiliation"] = org
	}
	if p.Location != "" {
		data["address"] = p.Location
	}
	var sameAs []string
	for _, platform := range views.SocialOrder(p.Social) {
		if u := p.Social[platform]; content.IsValidURL(u) {
			sameAs = append(sameAs, u)
		}
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	if len(s.About.ResearchInterests) > 0 {
		data["knowsAbout"] = s.About.ResearchInterests
	}
	return marshalLD(data)
}

// WebsiteJsonLD returns a schema.org WebSite document.
func WebsiteJsonLD(s content.Site, cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.siteName(s),
		"url":      BuildURL(cfg.URL),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(cfg.URL, "search") + "?q={query}",
			"query-input": "required name=query",
		},
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if author := cfg.author(s); author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": author}
	}
	return marshalLD(data)
}

// ScholarlyArticleJsonLD returns a schema.org ScholarlyArticle document for
// the i-th publication.
func ScholarlyArticleJsonLD(s content.Site, i int, cfg SiteConfig) string {
	pub := s.Publications.Items[i]
	var authors []map[string]string
	for _, a := range strings.Split(pub.Authors, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, map[string]string{"@type": "Person", "name": a})
		}
	}
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "ScholarlyArticle",
		"headline": pub.Title,
		"url":      SectionURL(cfg.URL, fmt.Sprintf("pub-%d", i)),
	}
	if len(authors) > 0 {
		data["author"] = authors
	}
	if pub.Venue != "" {
		data["isPartOf"] = map[string]string{"@type": "PublicationIssue", "name": pub.Venue}
	}
	if u := pub.PrimaryURL(); u != "#" && content.IsValidURL(u) {
		data["sameAs"] = u
	}
	return marshalLD(data)
}

// jsonLD returns every structured-data document for the homepage.
func jsonLD(s content.Site, cfg SiteConfig) []string {
	docs := []string{WebsiteJsonLD(s, cfg), PersonJsonLD(s, cfg)}
	for i := range s.Publications.Items {
		docs = append(docs, ScholarlyArticleJsonLD(s, i, cfg))
	}
	return docs
}

// RobotsTxt allows everything except the admin area and points crawlers at
// the sitemap.
func RobotsTxt(cfg SiteConfig) string {
	return "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " +
		strings.TrimSuffix(BuildURL(cfg.URL), "/") + "/sitemap.xml\n"
}

// pageMeta builds the homepage meta tags.
func pageMeta(s content.Site, cfg SiteConfig) views.PageMeta {
	desc := cfg.Description
	if desc == "" {
		desc = strings.TrimSpace(strings.Join([]string{s.Profile.Title, s.Profile.Institution.Name}, " · "))
		desc = strings.Trim(desc, " ·")
	}
	return views.PageMeta{
		Title:       cfg.siteName(s),
		Description: desc,
		URL:         BuildURL(cfg.URL),
		OGType:      "profile",
		Image:       absoluteAsset(cfg.URL, s.Profile.Avatar),
	}
}
