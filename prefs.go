package scholarpage

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/scholarpage/prefs"
)

// visitorPrefs is what the page needs to style itself for one request.
type visitorPrefs struct {
	Theme         string
	Accessibility prefs.Accessibility
}

// savedPrefs reads the raw stored values from the preference session.
func savedPrefs(c echo.Context) (theme string, acc prefs.Accessibility) {
	sess, err := session.Get(prefsName, c)
	if err != nil {
		return "", prefs.DefaultAccessibility()
	}
	theme, _ = sess.Values[prefs.ThemeKey].(string)
	raw, _ := sess.Values[prefs.AccessibilityKey].(string)
	return theme, prefs.ParseAccessibility(raw)
}

// preferences resolves the visitor's saved settings against the system
// hints the browser sent.
func preferences(c echo.Context) visitorPrefs {
	h := c.Request().Header
	saved, acc := savedPrefs(c)
	return visitorPrefs{
		Theme:         prefs.ResolveTheme(saved, prefs.SystemPrefersDark(h)),
		Accessibility: acc.Effective(prefs.SystemReducedMotion(h)),
	}
}

func savePrefs(c echo.Context, set func(s *sessions.Session)) error {
	sess, err := session.Get(prefsName, c)
	if err != nil {
		return err
	}
	set(sess)
	sess.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   sess.Options != nil && sess.Options.Secure,
	}
	return sess.Save(c.Request(), c.Response())
}

func (a *App) handleThemeToggle(c echo.Context) error {
	current := preferences(c).Theme
	err := savePrefs(c, func(s *sessions.Session) {
		s.Values[prefs.ThemeKey] = prefs.Toggle(current)
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, backTo(c))
}

func (a *App) handleAccessibility(c echo.Context) error {
	_, acc := savedPrefs(c)
	if c.FormValue("reset") != "" {
		acc = prefs.DefaultAccessibility()
	} else {
		acc.ReducedMotion = c.FormValue("reducedMotion") != ""
		acc.HighContrast = c.FormValue("highContrast") != ""
		acc.SetFontSize(c.FormValue("fontSize"))
	}
	err := savePrefs(c, func(s *sessions.Session) {
		s.Values[prefs.AccessibilityKey] = acc.Encode()
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, backTo(c))
}

// backTo returns the same-site page the form was posted from, or "/".
func backTo(c echo.Context) string {
	ref := c.Request().Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host != c.Request().Host || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return u.RequestURI()
}
