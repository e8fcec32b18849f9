// Package prefs resolves visitor display preferences: the color theme and
// the accessibility settings. Saved values come from the visitor's
// preference cookie; system values come from client hint headers.
package prefs

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Storage keys inside the preference session.
const (
	ThemeKey         = "site-theme"
	AccessibilityKey = "site-accessibility"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Client hint headers. Browsers send them after the server lists them in
// Accept-CH.
const (
	HintColorScheme   = "Sec-CH-Prefers-Color-Scheme"
	HintReducedMotion = "Sec-CH-Prefers-Reduced-Motion"
)

// ResolveTheme returns the saved theme, or the system preference when
// nothing valid was saved.
func ResolveTheme(saved string, systemDark bool) string {
	if saved == ThemeLight || saved == ThemeDark {
		return saved
	}
	if systemDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle flips between light and dark.
func Toggle(theme string) string {
	if theme == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SystemPrefersDark reports whether the request carries a dark color scheme hint.
func SystemPrefersDark(h http.Header) bool {
	return hintValue(h, HintColorScheme) == "dark"
}

// SystemReducedMotion reports whether the request asks for reduced motion.
func SystemReducedMotion(h http.Header) bool {
	return hintValue(h, HintReducedMotion) == "reduce"
}

// hintValue unquotes a structured-field string token.
func hintValue(h http.Header, name string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(h.Get(name)), `"`))
}

// FontSizes lists the accepted font sizes, smallest first.
var FontSizes = []string{"small", "normal", "large", "xlarge"}

// Accessibility is the stored accessibility settings object.
type Accessibility struct {
	ReducedMotion bool   `json:"reducedMotion"`
	HighContrast  bool   `json:"highContrast"`
	FontSize      string `json:"fontSize"`
}

// DefaultAccessibility is used for visitors without saved settings.
func DefaultAccessibility() Accessibility {
	return Accessibility{FontSize: "normal"}
}

// ParseAccessibility merges saved JSON over the defaults. Unreadable input
// yields the defaults and an unknown font size falls back to normal.
func ParseAccessibility(saved string) Accessibility {
	a := DefaultAccessibility()
	if saved == "" {
		return a
	}
	if err := json.Unmarshal([]byte(saved), &a); err != nil {
		return DefaultAccessibility()
	}
	if !ValidFontSize(a.FontSize) {
		a.FontSize = "normal"
	}
	return a
}

// Encode returns the stored form of a.
func (a Accessibility) Encode() string {
	b, _ := json.Marshal(a)
	return string(b)
}

// Effective applies the system reduced motion preference, which always wins.
func (a Accessibility) Effective(systemReducedMotion bool) Accessibility {
	if systemReducedMotion {
		a.ReducedMotion = true
	}
	return a
}

// SetFontSize changes the font size if size is accepted.
func (a *Accessibility) SetFontSize(size string) bool {
	if !ValidFontSize(size) {
		return false
	}
	a.FontSize = size
	return true
}

// ValidFontSize reports whether size is one of FontSizes.
func ValidFontSize(size string) bool {
	for _, s := range FontSizes {
		if s == size {
			return true
		}
	}
	return false
}
