package scholarpage

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// writeSitemap lists the homepage and one anchor per non-empty section.
func writeSitemap(w io.Writer, s content.Site, base, lastMod string) error {
	urls := []sitemapURL{
		{Loc: BuildURL(base), LastMod: lastMod, ChangeFreq: "weekly", Priority: "1.0"},
	}
	nonEmpty := map[string]bool{
		"about":        len(s.About.Description) > 0 || len(s.About.ResearchInterests) > 0,
		"news":         len(s.News) > 0,
		"publications": len(s.Publications.Items) > 0,
		"awards":       len(s.Awards) > 0,
		"experience":   len(s.Experience) > 0,
		"services":     len(s.Services.Reviewer) > 0 || len(s.Services.PCMember) > 0,
	}
	for _, id := range views.SectionIDs {
		if nonEmpty[id] {
			urls = append(urls, sitemapURL{Loc: SectionURL(base, id), LastMod: lastMod, Priority: "0.8"})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

func (a *App) handleSitemap(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Site.State().Current(), a.Config.URL, a.lastModified())
}
