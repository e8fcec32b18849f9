package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// maxImportSize bounds an imported file; real sites are a few kilobytes.
const maxImportSize = 5 << 20

// ErrInvalidJSON is returned when an imported file is not parseable JSON.
var ErrInvalidJSON = errors.New("content: failed to parse JSON")

// ValidationError describes why an imported file was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content: %s: %s", e.Field, e.Reason)
}

// Warner receives non-fatal import findings. echo.Logger satisfies it.
type Warner interface {
	Warnf(format string, args ...interface{})
}

// requiredFields must be present in every imported file.
var requiredFields = []string{
	"profile.name.en",
	"profile.title",
	"profile.email",
	"about.description",
	"about.researchInterests",
	"news",
	"publications.myName",
	"publications.items",
	"awards",
	"experience",
	"services",
}

// arrayFields must be JSON arrays.
var arrayFields = []string{
	"about.description",
	"about.researchInterests",
	"news",
	"publications.items",
	"awards",
	"experience",
}

// urlFields are checked for well-formed absolute URLs. Failures only warn.
var urlFields = []string{
	"profile.institution.url",
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DecodeImport reads and validates an imported JSON file. Structural problems
// and a malformed email reject the file; malformed URLs are reported to warn
// and the import proceeds.
func DecodeImport(r io.Reader, warn Warner) (Site, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return Site{}, fmt.Errorf("content: read import: %w", err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return Site{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := validateTree(tree, warn); err != nil {
		return Site{}, err
	}

	var s Site
	if err := json.Unmarshal(raw, &s); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Site{}, &ValidationError{Field: typeErr.Field, Reason: "has the wrong type, expected " + typeErr.Type.String()}
		}
		return Site{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	s.Normalize()
	return s, nil
}

// Validate runs the import checks against an in-memory site.
func Validate(s Site, warn Warner) error {
	b, err := Marshal(s)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(b, &tree); err != nil {
		return err
	}
	return validateTree(tree, warn)
}

func validateTree(tree map[string]interface{}, warn Warner) error {
	for _, field := range requiredFields {
		if _, ok := lookup(tree, field); !ok {
			return &ValidationError{Field: field, Reason: "missing required field"}
		}
	}
	for _, field := range arrayFields {
		v, _ := lookup(tree, field)
		if _, ok := v.([]interface{}); !ok {
			return &ValidationError{Field: field, Reason: "must be an array"}
		}
	}

	fields := append([]string(nil), urlFields...)
	if social, ok := lookup(tree, "profile.social"); ok {
		if m, ok := social.(map[string]interface{}); ok {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fields = append(fields, "profile.social."+k)
			}
		}
	}
	for _, field := range fields {
		v, ok := lookup(tree, field)
		if !ok {
			continue
		}
		if s, _ := v.(string); s != "" && !IsValidURL(s) {
			warnf(warn, "Invalid URL: %s = %s", field, s)
		}
	}
	if v, ok := lookup(tree, "profile.avatar"); ok {
		if s, _ := v.(string); s != "" && !isValidAssetRef(s) {
			warnf(warn, "Invalid URL: profile.avatar = %s", s)
		}
	}

	if v, _ := lookup(tree, "profile.email"); v != nil {
		email, ok := v.(string)
		if !ok || (email != "" && !IsValidEmail(email)) {
			return &ValidationError{Field: "profile.email", Reason: "invalid email format"}
		}
	}
	return nil
}

// lookup walks a dotted path through decoded JSON. A null value counts as missing.
func lookup(tree map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = tree
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// IsValidURL reports whether s parses as an absolute URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

// isValidAssetRef accepts absolute URLs and site-relative paths.
func isValidAssetRef(s string) bool {
	_, err := url.Parse(s)
	return err == nil && !strings.ContainsAny(s, " \t\n")
}

// IsValidEmail applies the loose address check used by the editor.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func warnf(w Warner, format string, args ...interface{}) {
	if w != nil {
		w.Warnf(format, args...)
	}
}
