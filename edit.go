package scholarpage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/editor"
	"github.com/eringen/scholarpage/views"
)

func (a *App) handleEditForm(c echo.Context) error {
	d := views.EditData{
		Site:      a.Site.State().Current(),
		SessionID: uuid.NewString(),
		Message:   flashMessage(c.QueryParam("msg")),
		CSRFToken: CsrfToken(c),
	}
	if draft, ok := a.Site.PendingDraft(); ok {
		if c.QueryParam("draft") == "restore" {
			d.Site = draft.Data
			d.Message = flashMessage("draft-restored")
		} else {
			d.Draft = &views.DraftPrompt{SavedAt: draft.SavedAt.Local().Format("2006-01-02 15:04")}
		}
	}
	return Render(c, views.EditForm(d))
}

func (a *App) handleEditSave(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	a.drafts.Cancel(form.Get("session"))

	s := editor.Collect(a.Site.State().Current(), form)
	if err := content.Validate(s, c.Logger()); err != nil {
		var ve *content.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		return RenderStatus(c, http.StatusUnprocessableEntity, views.EditForm(views.EditData{
			Site:      s,
			SessionID: form.Get("session"),
			Error:     ve.Error(),
			CSRFToken: CsrfToken(c),
		}))
	}
	if err := a.Site.Commit(s); err != nil {
		return err
	}
	if err := a.Site.DiscardDraft(); err != nil {
		c.Logger().Warnf("discard draft after save: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/edit/?msg=saved")
}

// handleDraft collects the posted form and schedules a draft save for the
// editing session. Only the last call within the quiet period is stored.
func (a *App) handleDraft(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	key := form.Get("session")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session")
	}
	s := editor.Collect(a.Site.State().Current(), form)
	a.drafts.Trigger(key, func() {
		if err := a.Site.SaveDraft(s); err == nil {
			a.metrics.drafts.Inc()
		}
	})
	return c.NoContent(http.StatusAccepted)
}

func (a *App) handleDraftDiscard(c echo.Context) error {
	if err := a.Site.DiscardDraft(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=draft-discarded")
}

func (a *App) handleSiteJSON(c echo.Context) error {
	b, err := content.Marshal(a.Site.State().Current())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, b)
}

// patchResponse is returned after a successful PATCH of the site.
type patchResponse struct {
	Revision uint64       `json:"revision"`
	Site     content.Site `json:"site"`
}

// handleSitePatch applies a JSON array of editor patches atomically and
// commits the result.
func (a *App) handleSitePatch(c echo.Context) error {
	var patches []editor.Patch
	if err := json.NewDecoder(c.Request().Body).Decode(&patches); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "body must be a JSON array of patches"})
	}
	s := a.Site.State().Current()
	if err := editor.Apply(&s, patches...); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := content.Validate(s, c.Logger()); err != nil {
		var ve *content.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": ve.Error(), "field": ve.Field})
		}
		return err
	}
	if err := a.Site.Commit(s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patchResponse{Revision: a.Site.State().Revision(), Site: a.Site.State().Current()})
}
