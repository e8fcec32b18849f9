// Package scholarpage serves an academic homepage built from one JSON
// document: profile, news, publications, awards, experience and services.
// It provides the public page with search, BibTeX, RSS and sitemap, an
// admin area to edit, version, export and import the data, visitor
// preferences and privacy-friendly visit counting.
package scholarpage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/scholarpage/analytics"
	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/editor"
	"github.com/eringen/scholarpage/scaffold"
	"github.com/eringen/scholarpage/search"
	"github.com/eringen/scholarpage/site"
)

// App is the central application. It wires together the store, the live
// site state, its caches, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Site   *site.Manager
	Index  *search.Index
	Pages  *PageCache

	tracker        *analytics.Tracker
	analyticsStore *analytics.Store
	loginLimiter   *LoginLimiter
	drafts         *editor.Debouncer
	metrics        *metrics
	seed           *content.Site
	customRoutes   []func(*App)
	stops          []func()
	initialized    bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(log.INFO)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger returns the application logger.
func (a *App) Logger() echo.Logger {
	return a.Echo.Logger
}

// Init opens the database, loads the site and registers middleware and
// routes without listening. Start calls it; the build and CLI commands use
// it directly.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("scholarpage: init store: %w", err)
	}
	a.Store = store

	seed, err := a.loadSeed()
	if err != nil {
		return err
	}
	state := site.NewState(seed)
	a.Site = site.NewManager(state, store, a.Logger(), site.WithMaxSnapshots(a.Config.MaxSnapshots))
	if err := a.Site.Load(seed); err != nil {
		return fmt.Errorf("scholarpage: load site: %w", err)
	}

	a.Index = search.New(state.Current())
	state.Subscribe(func(s content.Site, _ uint64) { a.Index.Rebuild(s) })
	a.Pages = NewPageCache(state, a.Config.PageCacheTTL)

	a.metrics = newMetrics()
	a.metrics.revision.Set(float64(state.Revision()))
	state.Subscribe(func(_ content.Site, rev uint64) { a.metrics.revision.Set(float64(rev)) })

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.drafts = editor.NewDebouncer(a.Config.DraftDebounce)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("scholarpage: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		tracker, err := analytics.NewTracker(analyticsStore, a.Logger(), analytics.WithSecureCookie(a.Config.CookieSecure))
		if err != nil {
			return fmt.Errorf("scholarpage: init analytics salt: %w", err)
		}
		a.tracker = tracker
		a.stops = append(a.stops, analyticsStore.StartCleanupScheduler(a.Config.AnalyticsRetention, 24*time.Hour, a.Logger()))
	}

	if a.Config.WatchContent && a.Config.ContentFile != "" {
		stop, err := a.watchContent(a.Config.ContentFile)
		if err != nil {
			return fmt.Errorf("scholarpage: watch %s: %w", a.Config.ContentFile, err)
		}
		a.stops = append(a.stops, stop)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start validates the configuration, initializes the app and serves HTTP
// until the server is shut down.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("scholarpage: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("scholarpage: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// loadSeed picks the site used when the database is empty: WithSeed, then
// ContentFile, then the starter site.
func (a *App) loadSeed() (content.Site, error) {
	if a.seed != nil {
		return a.seed.Clone(), nil
	}
	if a.Config.ContentFile != "" {
		s, err := readContentFile(a.Config.ContentFile, a.Logger())
		if err != nil {
			return content.Site{}, fmt.Errorf("scholarpage: read %s: %w", a.Config.ContentFile, err)
		}
		return s, nil
	}
	s, err := scaffold.Site(scaffold.Data{Name: a.Config.Author})
	if err != nil {
		return content.Site{}, fmt.Errorf("scholarpage: starter site: %w", err)
	}
	return s, nil
}

func readContentFile(path string, warn content.Warner) (content.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return content.Site{}, err
	}
	defer f.Close()
	return content.DecodeImport(f, warn)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (editor.js, style.css) are embedded; anything else
	// under /public comes from the user's static directory.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	for _, name := range embeddedNames() {
		e.GET("/public/"+name, embeddedHandler)
	}
	e.Static("/public", a.Config.StaticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.metrics.registry}))

	e.GET("/", a.handleHome)
	e.GET("/search/", a.handleSearch)
	e.GET("/api/search", a.handleSearchAPI)
	e.GET("/publications/:index/bibtex/", a.handleBibTeX)
	e.POST("/prefs/theme/", a.handleThemeToggle)
	e.POST("/prefs/accessibility/", a.handleAccessibility)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	admin := e.Group("/admin", requireAdmin)
	admin.GET("/edit/", a.handleEditForm)
	admin.POST("/edit/save/", a.handleEditSave)
	admin.POST("/edit/draft/", a.handleDraft)
	admin.POST("/edit/draft/discard/", a.handleDraftDiscard)
	admin.GET("/api/site", a.handleSiteJSON)
	admin.PATCH("/api/site", a.handleSitePatch)
	admin.GET("/api/stats", a.handleStatsJSON)

	admin.GET("/versions/", a.handleVersions)
	admin.POST("/versions/", a.handleSnapshotCreate)
	admin.POST("/versions/clear/", a.handleSnapshotClear)
	admin.POST("/versions/:id/restore/", a.handleSnapshotRestore)
	admin.POST("/versions/:id/delete/", a.handleSnapshotDelete)

	admin.GET("/export/json/", a.handleExportJSON)
	admin.GET("/export/js/", a.handleExportJS)
	admin.GET("/export/md/", a.handleExportMarkdown)
	admin.GET("/export/md/preview/", a.handleMarkdownPreview)
	admin.POST("/import/", a.handleImport)
	admin.POST("/avatar/", a.handleAvatarUpload)

	admin.GET("/analytics/", a.handleAnalytics)
	if a.tracker != nil {
		a.tracker.RegisterRoutes(admin)
	}
}

// Close flushes pending drafts and releases resources. Call this when the
// app is shutting down.
func (a *App) Close() error {
	if a.drafts != nil {
		a.drafts.Stop()
	}
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// lastModified is the time the live site was last saved, in sitemap form.
func (a *App) lastModified() string {
	t, err := a.Store.UpdatedAt(site.KeySite)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
