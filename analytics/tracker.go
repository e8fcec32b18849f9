package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Tracker records page views for incoming requests.
type Tracker struct {
	store        *Store
	salt         string
	limiter      *rateLimiter
	logger       echo.Logger
	now          func() time.Time
	secureCookie bool
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithSecureCookie marks the visitor cookie Secure.
func WithSecureCookie(secure bool) TrackerOption {
	return func(t *Tracker) { t.secureCookie = secure }
}

// WithRateLimit overrides the default 60 views per IP per minute.
func WithRateLimit(max int, window time.Duration) TrackerOption {
	return func(t *Tracker) { t.limiter = newRateLimiter(max, window) }
}

// NewTracker loads the store's salt and returns a ready Tracker.
func NewTracker(store *Store, logger echo.Logger, opts ...TrackerOption) (*Tracker, error) {
	salt, err := LoadSalt(store)
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		store:   store,
		salt:    salt,
		limiter: newRateLimiter(60, time.Minute),
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Track counts the current request as a page view. Requests with Do Not
// Track or Global Privacy Control set, bots and rate-limited clients are
// ignored. Storage failures are logged and otherwise ignored.
func (t *Tracker) Track(c echo.Context) {
	req := c.Request()
	if req.Method != http.MethodGet {
		return
	}
	if req.Header.Get("DNT") == "1" || req.Header.Get("Sec-GPC") == "1" {
		return
	}
	if IsBot(req.UserAgent()) {
		return
	}
	now := t.now()
	if !t.limiter.allow(c.RealIP(), now) {
		return
	}

	v := Visit{
		VisitorHash: HashVisitor(t.salt, t.visitorID(c)),
		Path:        req.URL.Path,
		Referrer:    CleanReferrer(req.Referer(), req.Host),
		Timestamp:   now,
	}
	if err := t.store.SaveVisit(req.Context(), v); err != nil {
		t.logger.Errorf("save visit: %v", err)
	}
}

// visitorID returns the visitor cookie, issuing a new one when missing or
// malformed.
func (t *Tracker) visitorID(c echo.Context) string {
	if ck, err := c.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   t.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Summary aggregates stored visits with a days-long daily series.
func (t *Tracker) Summary(ctx context.Context, days int) (Summary, error) {
	return t.store.Summary(ctx, t.now(), days)
}

// StatsResponse is the JSON body of the stats endpoint.
type StatsResponse struct {
	Period     string  `json:"period"`
	PeriodDays int     `json:"periodDays"`
	Summary    Summary `json:"summary"`
}

// Stats serves the summary as JSON. The period query parameter selects the
// daily series length: today, week, month or year.
func (t *Tracker) Stats(c echo.Context) error {
	period, days := ParsePeriod(c.QueryParam("period"))
	sum, err := t.Summary(c.Request().Context(), days)
	if err != nil {
		c.Logger().Errorf("analytics stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, StatsResponse{Period: period, PeriodDays: days, Summary: sum})
}

// RegisterRoutes mounts the admin analytics API on an authenticated group.
func (t *Tracker) RegisterRoutes(admin *echo.Group) {
	admin.GET("/analytics/api/stats", t.Stats)
}
