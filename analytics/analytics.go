// Package analytics counts homepage visits without storing anything that
// identifies a visitor: the visitor cookie is a random UUID and only its
// salted hash reaches the database.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// VisitorCookie holds the random visitor UUID.
const VisitorCookie = "visitor_id"

// Visit is a single counted page view.
type Visit struct {
	VisitorHash string
	Path        string
	Referrer    string // host only, "" for direct traffic
	Timestamp   time.Time
}

// Summary is the aggregate shown in the footer widget and the dashboard.
type Summary struct {
	TotalViews     int             `json:"totalViews"`
	UniqueVisitors int             `json:"uniqueVisitors"`
	TodayViews     int             `json:"todayViews"`
	LastVisit      string          `json:"lastVisit"`
	TopReferrers   []DimensionStat `json:"topReferrers"`
	DailyViews     []DailyView     `json:"dailyViews"`
}

// DimensionStat is one row of a breakdown such as referrers.
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView is the number of views on one UTC day.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// LoadSalt returns the persistent hashing salt, generating and storing one
// on first use.
func LoadSalt(store *Store) (string, error) {
	s, err := store.GetSetting("hash_salt")
	if err != nil {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	if s != "" {
		return s, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	s = hex.EncodeToString(b)
	if err := store.SetSetting("hash_salt", s); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	return s, nil
}

// HashVisitor derives the stored visitor key from the cookie value.
func HashVisitor(salt, visitorID string) string {
	h := sha256.Sum256([]byte(salt + "|" + visitorID))
	return hex.EncodeToString(h[:])[:16]
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"facebookexternalhit", "yandex", "baidu", "curl/", "wget/",
	"python-requests", "go-http-client", "headless",
}

// IsBot reports whether the User-Agent looks like a crawler or a script.
// An empty User-Agent counts as a bot.
func IsBot(ua string) bool {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return true
	}
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

// CleanReferrer reduces a Referer header to its host, dropping "www." and
// references from the site itself.
func CleanReferrer(ref, selfHost string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	self := strings.TrimPrefix(strings.ToLower(selfHost), "www.")
	if i := strings.IndexByte(self, ':'); i >= 0 {
		self = self[:i]
	}
	if host == self {
		return ""
	}
	return host
}

// ParsePeriod maps a period name to the number of days it covers.
// Unknown names fall back to a week.
func ParsePeriod(period string) (string, int) {
	switch period {
	case "today":
		return period, 1
	case "month":
		return period, 30
	case "year":
		return period, 365
	default:
		return "week", 7
	}
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
