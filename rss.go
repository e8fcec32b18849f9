package scholarpage

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// newsDateLayouts are the date forms news items use, most specific first.
var newsDateLayouts = []string{"2006-01-02", "2006.01.02", "2006-01", "2006.01", "2006"}

func parseNewsDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range newsDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// writeRSS renders the news list as an RSS 2.0 feed, in list order.
func writeRSS(w io.Writer, s content.Site, cfg SiteConfig) error {
	base := cfg.URL
	items := make([]rssItem, 0, len(s.News))
	for i, n := range s.News {
		text := content.StripHTML(n.Content)
		title := text
		if r := []rune(title); len(r) > 80 {
			title = string(r[:77]) + "..."
		}
		pubDate := ""
		if t, ok := parseNewsDate(n.Date); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		items = append(items, rssItem{
			Title:       title,
			Link:        SectionURL(base, "news"),
			Description: n.Content,
			PubDate:     pubDate,
			GUID:        SectionURL(base, "news") + "-" + n.Date + "-" + strconv.Itoa(i),
		})
	}
	desc := cfg.Description
	if desc == "" {
		desc = "News from " + cfg.siteName(s)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.siteName(s),
			Link:        BuildURL(base),
			Description: desc,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}

func (a *App) handleFeed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Site.State().Current(), a.Config)
}
