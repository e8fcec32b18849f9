package scholarpage

import (
	"time"

	"github.com/eringen/scholarpage/content"
)

// SiteConfig holds all configuration for a homepage.
type SiteConfig struct {
	Name        string // Site name (default: the profile's English name)
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Meta description and RSS channel description
	Author      string // Author name for JSON-LD (default: the profile's English name)

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path for site data, history and drafts (default "data/site.db")
	StaticDir    string // User-owned static assets served under /public (default "public")

	ContentFile  string // Optional JSON file seeding the site on first start
	WatchContent bool   // Re-import ContentFile whenever it changes

	AnalyticsEnabled      bool   // Count visits (default false)
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")
	AnalyticsRetention    int    // Days of visits kept (default 365)

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PageCacheTTL  time.Duration // Rendered page cache TTL (default 5min)
	MaxSnapshots  int           // Version history length (default 10)
	DraftDebounce time.Duration // Quiet period before an autosaved draft is stored (default 500ms)

	Publish PublishConfig
}

// PublishConfig selects the bucket the static build is uploaded to.
type PublishConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365
	}
	if c.PageCacheTTL == 0 {
		c.PageCacheTTL = 5 * time.Minute
	}
	if c.MaxSnapshots == 0 {
		c.MaxSnapshots = 10
	}
	if c.DraftDebounce == 0 {
		c.DraftDebounce = 500 * time.Millisecond
	}
}

// siteName falls back to the profile name when Name is unset.
func (c SiteConfig) siteName(s content.Site) string {
	if c.Name != "" {
		return c.Name
	}
	return s.Profile.DisplayName("en")
}

func (c SiteConfig) author(s content.Site) string {
	if c.Author != "" {
		return c.Author
	}
	return s.Profile.DisplayName("en")
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithSeed sets the site used when the database holds none yet. It takes
// precedence over ContentFile.
func WithSeed(s content.Site) Option {
	return func(a *App) {
		seed := s.Clone()
		a.seed = &seed
	}
}
