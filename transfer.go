package scholarpage

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/markdown"
	"github.com/eringen/scholarpage/views"
)

// Export file names, shared with the static build.
const (
	exportJSON     = "site-data.json"
	exportDataJS   = "data.js"
	exportMarkdown = "site-data.md"
)

func attachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
}

func (a *App) handleExportJSON(c echo.Context) error {
	var buf bytes.Buffer
	if err := content.EncodeJSON(&buf, a.Site.State().Current()); err != nil {
		return err
	}
	attachment(c, exportJSON)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, buf.Bytes())
}

func (a *App) handleExportJS(c echo.Context) error {
	var buf bytes.Buffer
	if err := content.EncodeDataJS(&buf, a.Site.State().Current(), time.Now()); err != nil {
		return err
	}
	attachment(c, exportDataJS)
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", buf.Bytes())
}

func (a *App) handleExportMarkdown(c echo.Context) error {
	var buf bytes.Buffer
	if err := content.EncodeMarkdown(&buf, a.Site.State().Current(), time.Now()); err != nil {
		return err
	}
	attachment(c, exportMarkdown)
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
}

// handleMarkdownPreview renders the Markdown export as HTML inside the
// admin layout.
func (a *App) handleMarkdownPreview(c echo.Context) error {
	var src bytes.Buffer
	if err := content.EncodeMarkdown(&src, a.Site.State().Current(), time.Now()); err != nil {
		return err
	}
	html, err := markdown.String(src.Bytes())
	if err != nil {
		return err
	}
	return Render(c, views.MarkdownPreview(html, CsrfToken(c)))
}

// handleImport replaces the live site with an uploaded JSON file, or with a
// JSON request body. The request must carry confirm=yes. Invalid files are
// rejected with 422 and leave the site untouched.
func (a *App) handleImport(c echo.Context) error {
	if c.FormValue("confirm") != "yes" {
		return RenderStatus(c, http.StatusBadRequest, views.Unprocessable("Import must be confirmed: it replaces all current data."))
	}
	r, err := importBody(c)
	if err != nil {
		a.metrics.imports.WithLabelValues("invalid").Inc()
		return RenderStatus(c, http.StatusBadRequest, views.Unprocessable("No file was uploaded."))
	}
	defer r.Close()

	s, err := content.DecodeImport(r, c.Logger())
	if err != nil {
		var ve *content.ValidationError
		if errors.As(err, &ve) || errors.Is(err, content.ErrInvalidJSON) {
			a.metrics.imports.WithLabelValues("invalid").Inc()
			c.Logger().Warnf("import rejected: %v", err)
			return RenderStatus(c, http.StatusUnprocessableEntity, views.Unprocessable(err.Error()))
		}
		a.metrics.imports.WithLabelValues("error").Inc()
		return err
	}
	if err := a.Site.Import(s); err != nil {
		a.metrics.imports.WithLabelValues("error").Inc()
		return err
	}
	a.metrics.imports.WithLabelValues("ok").Inc()
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=imported")
}

func importBody(c echo.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return c.Request().Body, nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	return fh.Open()
}
