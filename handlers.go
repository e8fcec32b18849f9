package scholarpage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/prefs"
	"github.com/eringen/scholarpage/search"
	"github.com/eringen/scholarpage/views"
)

func (a *App) handleHome(c echo.Context) error {
	if a.tracker != nil {
		a.tracker.Track(c)
	}
	h := c.Response().Header()
	h.Set("Accept-CH", prefs.HintColorScheme+", "+prefs.HintReducedMotion)
	h.Add(echo.HeaderVary, prefs.HintColorScheme)
	h.Add(echo.HeaderVary, prefs.HintReducedMotion)

	ctx := c.Request().Context()
	page, err := a.Pages.Page(ctx, c.QueryParam("lang"))
	if err != nil {
		return err
	}
	s := page.Site
	p := preferences(c)
	return Render(c, views.Home(views.PageData{
		Site:          s,
		Meta:          pageMeta(s, a.Config),
		JSONLD:        jsonLD(s, a.Config),
		Locale:        page.Locale,
		Theme:         p.Theme,
		ReducedMotion: p.Accessibility.ReducedMotion,
		HighContrast:  p.Accessibility.HighContrast,
		FontSize:      p.Accessibility.FontSize,
		Main:          templ.Raw(page.Main),
		Stats:         a.visitStats(ctx),
		CSRFToken:     CsrfToken(c),
		Admin:         IsAdmin(c),
	}))
}

// pageLocale accepts lang only when the profile has a name in it, which
// also bounds the number of cached pages.
func pageLocale(s content.Site, lang string) string {
	if lang != "" {
		if _, ok := s.Profile.Name[lang]; ok {
			return lang
		}
	}
	return "en"
}

// visitStats returns the footer widget data, or nil when analytics is off
// or failing.
func (a *App) visitStats(ctx context.Context) *views.VisitStats {
	if a.tracker == nil {
		return nil
	}
	sum, err := a.tracker.Summary(ctx, 7)
	if err != nil {
		a.Logger().Errorf("visit stats: %v", err)
		return nil
	}
	return &views.VisitStats{
		TotalViews:     sum.TotalViews,
		UniqueVisitors: sum.UniqueVisitors,
		TodayViews:     sum.TodayViews,
		LastVisit:      sum.LastVisit,
	}
}

func (a *App) handleSearch(c echo.Context) error {
	q := c.QueryParam("q")
	results := a.Index.Search(q)
	a.metrics.searches.Inc()
	return Render(c, views.SearchResults(q, results))
}

// searchResponse is the body of GET /api/search.
type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func (a *App) handleSearchAPI(c echo.Context) error {
	q := c.QueryParam("q")
	results := a.Index.Search(q)
	if results == nil {
		results = []search.Result{}
	}
	a.metrics.searches.Inc()
	return c.JSON(http.StatusOK, searchResponse{Query: q, Results: results})
}

func (a *App) handleBibTeX(c echo.Context) error {
	s := a.Site.State().Current()
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 || i >= len(s.Publications.Items) {
		return echo.ErrNotFound
	}
	pub := s.Publications.Items[i]
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+pub.CiteKey()+`.bib"`)
	return c.Blob(http.StatusOK, "application/x-bibtex; charset=utf-8", []byte(pub.BibTeX(time.Now())))
}

// handleRobots serves StaticDir/robots.txt when present, otherwise a
// generated file pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	fp := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(fp); err == nil {
		return c.File(fp)
	}
	return c.String(http.StatusOK, RobotsTxt(a.Config))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
