package scholarpage

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/analytics"
	"github.com/eringen/scholarpage/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, views.AdminLogin(false, CsrfToken(c)))
	}
	return Render(c, views.AdminDashboard(views.DashboardData{
		Stats:     a.Site.Statistics(),
		Visits:    a.visitStats(c.Request().Context()),
		Draft:     a.draftPrompt(),
		Message:   flashMessage(c.QueryParam("msg")),
		Error:     flashMessage(c.QueryParam("err")),
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return RenderStatus(c, http.StatusUnauthorized, views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// draftPrompt is non-nil when a stored draft differs from the live site.
func (a *App) draftPrompt() *views.DraftPrompt {
	d, ok := a.Site.PendingDraft()
	if !ok {
		return nil
	}
	return &views.DraftPrompt{SavedAt: d.SavedAt.Local().Format("2006-01-02 15:04")}
}

func (a *App) handleStatsJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Site.Statistics())
}

func (a *App) handleAnalytics(c echo.Context) error {
	if a.tracker == nil {
		return echo.NewHTTPError(http.StatusNotFound, "analytics disabled")
	}
	period, days := analytics.ParsePeriod(c.QueryParam("period"))
	sum, err := a.tracker.Summary(c.Request().Context(), days)
	if err != nil {
		return err
	}
	d := views.AnalyticsData{
		Visits: views.VisitStats{
			TotalViews:     sum.TotalViews,
			UniqueVisitors: sum.UniqueVisitors,
			TodayViews:     sum.TodayViews,
			LastVisit:      sum.LastVisit,
		},
		Period:    period,
		CSRFToken: CsrfToken(c),
	}
	for _, r := range sum.TopReferrers {
		d.Referrers = append(d.Referrers, views.Count{Name: r.Name, Value: r.Count})
	}
	// Newest day first reads better in a table.
	for i := len(sum.DailyViews) - 1; i >= 0; i-- {
		dv := sum.DailyViews[i]
		d.Daily = append(d.Daily, views.Count{Name: dv.Date, Value: dv.Views})
	}
	return Render(c, views.AdminAnalytics(d))
}
