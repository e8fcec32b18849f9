package scholarpage

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/site"
	"github.com/eringen/scholarpage/views"
)

// CachedPage is a rendered <main> element together with the site revision
// it was rendered from. Everything else on the page must come from Site.
type CachedPage struct {
	Site     content.Site
	Revision uint64
	Locale   string
	Main     string
}

// PageCache keeps the rendered <main> element of the homepage per locale.
// Every state change drops it; the TTL bounds how long a render is reused
// otherwise.
type PageCache struct {
	mu      sync.RWMutex
	site    content.Site
	rev     uint64
	pages   map[string]string
	fetched time.Time
	ttl     time.Duration
	state   *site.State
}

// NewPageCache creates a PageCache over state and subscribes it to changes.
func NewPageCache(state *site.State, ttl time.Duration) *PageCache {
	c := &PageCache{state: state, ttl: ttl}
	state.Subscribe(func(content.Site, uint64) { c.Invalidate() })
	return c
}

func (c *PageCache) valid() bool {
	return c.pages != nil && c.rev == c.state.Revision() && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read renders again.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = nil
	c.mu.Unlock()
}

// Page returns the main element for the requested language, falling back
// to English when the profile has no name in lang. It tries a read lock
// first and only takes the write lock to render.
func (c *PageCache) Page(ctx context.Context, lang string) (CachedPage, error) {
	c.mu.RLock()
	if c.valid() {
		locale := pageLocale(c.site, lang)
		if html, ok := c.pages[locale]; ok {
			p := c.page(locale, html)
			c.mu.RUnlock()
			return p, nil
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid() {
		c.site, c.rev = c.state.Snapshot()
		c.pages = make(map[string]string)
		c.fetched = time.Now()
	}
	locale := pageLocale(c.site, lang)
	if html, ok := c.pages[locale]; ok {
		return c.page(locale, html), nil
	}
	var buf bytes.Buffer
	if err := views.Main(c.site, locale).Render(ctx, &buf); err != nil {
		return CachedPage{}, err
	}
	c.pages[locale] = buf.String()
	return c.page(locale, c.pages[locale]), nil
}

func (c *PageCache) page(locale, html string) CachedPage {
	return CachedPage{Site: c.site.Clone(), Revision: c.rev, Locale: locale, Main: html}
}
