package scholarpage

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/site"
	"github.com/eringen/scholarpage/views"
)

func (a *App) handleVersions(c echo.Context) error {
	snaps, err := a.Site.Snapshots()
	if err != nil {
		return err
	}
	rows := make([]views.SnapshotRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, views.SnapshotRow{
			ID:        s.ID,
			Label:     s.Label,
			Timestamp: s.Time().Local().Format("2006-01-02 15:04:05"),
		})
	}
	return Render(c, views.AdminHistory(views.HistoryData{
		Snapshots: rows,
		Max:       a.Config.MaxSnapshots,
		Message:   flashMessage(c.QueryParam("msg")),
		Error:     flashMessage(c.QueryParam("err")),
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleSnapshotCreate(c echo.Context) error {
	if _, err := a.Site.CreateSnapshot(strings.TrimSpace(c.FormValue("label"))); err != nil {
		return err
	}
	a.metrics.snapshots.WithLabelValues("create").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/versions/?msg=snapshot")
}

// handleSnapshotRestore replaces the live site with a stored version. The
// form must carry confirm=yes; the current site is saved as a version first.
func (a *App) handleSnapshotRestore(c echo.Context) error {
	id, err := snapshotID(c)
	if err != nil {
		return err
	}
	if c.FormValue("confirm") != "yes" {
		return c.Redirect(http.StatusSeeOther, "/admin/versions/?err=confirm")
	}
	if _, err := a.Site.RestoreSnapshot(id); err != nil {
		if errors.Is(err, site.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/admin/versions/?err=not-found")
		}
		return err
	}
	a.metrics.snapshots.WithLabelValues("restore").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/versions/?msg=restored")
}

func (a *App) handleSnapshotDelete(c echo.Context) error {
	id, err := snapshotID(c)
	if err != nil {
		return err
	}
	if err := a.Site.DeleteSnapshot(id); err != nil {
		if errors.Is(err, site.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/admin/versions/?err=not-found")
		}
		return err
	}
	a.metrics.snapshots.WithLabelValues("delete").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/versions/?msg=deleted")
}

func (a *App) handleSnapshotClear(c echo.Context) error {
	if err := a.Site.ClearSnapshots(); err != nil {
		return err
	}
	a.metrics.snapshots.WithLabelValues("clear").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/versions/?msg=cleared")
}

func snapshotID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return id, nil
}
