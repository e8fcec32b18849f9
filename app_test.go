package scholarpage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/search"
)

const (
	testPassword = "correct horse"
	browserUA    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

func testSite() content.Site {
	s := content.Site{
		Profile: content.Profile{
			Name:        map[string]string{"en": "Jane Doe", "zh": "简"},
			Title:       "Ph.D. Candidate",
			Institution: content.Institution{Name: "Example University", URL: "https://example.edu"},
			Email:       "jane@example.edu",
			Avatar:      "public/avatar.jpg",
			Social:      map[string]string{"github": "https://github.com/jane"},
		},
		About: content.About{
			Description:       []string{"I work on <em>distributed systems</em>."},
			ResearchInterests: []string{"Consensus", "Storage engines"},
		},
		News: []content.NewsItem{
			{Date: "2024.06", Icon: "🎉", Content: "Paper accepted at <strong>OSDI</strong>"},
		},
		Publications: content.Publications{
			MyName: "Jane Doe",
			Items: []content.Publication{
				{
					Title:   "Raft at Scale",
					Authors: "Jane Doe, John Roe",
					Venue:   "OSDI 2024",
					Badges:  []string{"ccf-a"},
					Links:   []content.Link{{Label: "PDF", URL: "https://example.edu/raft.pdf"}},
				},
			},
		},
		Awards:     []content.Award{{Date: "2023", Name: "Best Paper", Institution: "SOSP"}},
		Experience: []content.Experience{{Date: "2020 - now", Title: "PhD", Institution: "Example University", Supervisor: "Prof. X"}},
		Services:   content.Services{Reviewer: []string{"NeurIPS"}},
	}
	s.Normalize()
	return s
}

func testLogger() echo.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func newTestApp(t *testing.T, opts ...func(*SiteConfig)) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := SiteConfig{
		URL:           "https://jane.example.edu",
		DatabasePath:  filepath.Join(dir, "site.db"),
		StaticDir:     filepath.Join(dir, "public"),
		AdminPassword: testPassword,
		SessionSecret: "test-secret-test-secret-test-sec",
		DraftDebounce: 10 * time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg)
	}
	a := New(cfg, WithSeed(testSite()))
	a.Echo.Logger.SetOutput(io.Discard)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// client replays cookies between requests and echoes the CSRF cookie back
// in the header, as editor.js does.
type client struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, a *App) *client {
	c := &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
	if rec := c.do(http.MethodGet, "/admin/", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /admin/ = %d", rec.Code)
	}
	return c
}

func (c *client) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("User-Agent", browserUA)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if ck, ok := c.cookies["_csrf"]; ok {
		req.Header.Set("X-CSRF-Token", ck.Value)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil, "")
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
}

func (c *client) login() {
	c.t.Helper()
	rec := c.postForm("/admin/login/", url.Values{"password": {testPassword}})
	if rec.Code != http.StatusSeeOther {
		c.t.Fatalf("login = %d, want 303", rec.Code)
	}
}

func upload(t *testing.T, field, name string, data []byte, extra url.Values) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range extra {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	fw, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func TestStartRequiresSecrets(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "x"})
	if err := a.Start(); err == nil || !strings.Contains(err.Error(), "AdminPassword") {
		t.Errorf("Start without password = %v", err)
	}
	a = New(SiteConfig{AdminPassword: "x"})
	if err := a.Start(); err == nil || !strings.Contains(err.Error(), "SessionSecret") {
		t.Errorf("Start without secret = %v", err)
	}
}

func TestHomeRendersSite(t *testing.T) {
	c := newClient(t, newTestApp(t))
	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Jane Doe", "Raft at Scale", `"@type":"Person"`, `id="main-content"`, `data-theme="light"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if got := rec.Header().Get("Accept-CH"); !strings.Contains(got, "Sec-CH-Prefers-Color-Scheme") {
		t.Errorf("Accept-CH = %q", got)
	}
}

func TestHomeFollowsSystemTheme(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-CH-Prefers-Color-Scheme", `"dark"`)
	req.Header.Set("Sec-CH-Prefers-Reduced-Motion", "reduce")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	body := rec.Body.String()
	if !strings.Contains(body, `data-theme="dark"`) || !strings.Contains(body, `data-reduced-motion="true"`) {
		t.Error("system hints were not applied")
	}
}

func TestHomeReflectsCommit(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.get("/") // fill the page cache

	s := a.Site.State().Current()
	s.Publications.Items[0].Title = "Paxos Made Live"
	if err := a.Site.Commit(s); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if body := c.get("/").Body.String(); !strings.Contains(body, "Paxos Made Live") {
		t.Error("page cache served stale content after commit")
	}
	if res := a.Index.Search("paxos"); len(res) != 1 {
		t.Errorf("search index not rebuilt: %+v", res)
	}
}

func TestPageLocale(t *testing.T) {
	s := testSite()
	tests := map[string]string{"": "en", "zh": "zh", "fr": "en", "en": "en"}
	for lang, want := range tests {
		if got := pageLocale(s, lang); got != want {
			t.Errorf("pageLocale(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestSearchAPI(t *testing.T) {
	c := newClient(t, newTestApp(t))
	rec := c.get("/api/search?q=raft")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/search = %d", rec.Code)
	}
	var resp struct {
		Query   string          `json:"query"`
		Results []search.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Type != search.TypePublication {
		t.Errorf("results = %+v", resp.Results)
	}

	rec = c.get("/api/search?q=r")
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("short query body = %s", rec.Body.String())
	}
}

func TestSearchPage(t *testing.T) {
	c := newClient(t, newTestApp(t))
	rec := c.get("/search/?q=raft")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<mark>Raft</mark>") {
		t.Errorf("search page = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBibTeX(t *testing.T) {
	c := newClient(t, newTestApp(t))
	rec := c.get("/publications/0/bibtex/")
	if rec.Code != http.StatusOK {
		t.Fatalf("bibtex = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "@article{janedoe2024,") {
		t.Errorf("bibtex body = %q", rec.Body.String())
	}
	for _, target := range []string{"/publications/5/bibtex/", "/publications/x/bibtex/"} {
		if rec := c.get(target); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", target, rec.Code)
		}
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	c := newClient(t, newTestApp(t))
	if rec := c.get("/admin/edit/"); rec.Code != http.StatusSeeOther {
		t.Errorf("GET /admin/edit/ = %d, want 303", rec.Code)
	}
	if rec := c.get("/admin/api/site"); rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /admin/api/site = %d, want 401", rec.Code)
	}
	c.login()
	if rec := c.get("/admin/api/site"); rec.Code != http.StatusOK {
		t.Errorf("GET /admin/api/site after login = %d", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	c := newClient(t, newTestApp(t))
	for i := 0; i < 5; i++ {
		if rec := c.postForm("/admin/login/", url.Values{"password": {"wrong"}}); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d = %d, want 401", i+1, rec.Code)
		}
	}
	if rec := c.postForm("/admin/login/", url.Values{"password": {testPassword}}); rec.Code != http.StatusTooManyRequests {
		t.Errorf("attempt after limit = %d, want 429", rec.Code)
	}
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/prefs/theme/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token = %d, want 403", rec.Code)
	}
}

func TestThemeToggle(t *testing.T) {
	c := newClient(t, newTestApp(t))
	rec := c.postForm("/prefs/theme/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("toggle = %d to %q", rec.Code, rec.Header().Get("Location"))
	}
	if body := c.get("/").Body.String(); !strings.Contains(body, `data-theme="dark"`) {
		t.Error("saved theme not applied")
	}
	c.postForm("/prefs/theme/", nil)
	if body := c.get("/").Body.String(); !strings.Contains(body, `data-theme="light"`) {
		t.Error("second toggle did not flip back")
	}
}

func TestAccessibilityPrefs(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.postForm("/prefs/accessibility/", url.Values{"highContrast": {"on"}, "fontSize": {"xlarge"}})
	body := c.get("/").Body.String()
	if !strings.Contains(body, `data-high-contrast="true"`) || !strings.Contains(body, `data-font-size="xlarge"`) {
		t.Error("accessibility settings not applied")
	}

	c.postForm("/prefs/accessibility/", url.Values{"fontSize": {"huge"}})
	if body := c.get("/").Body.String(); !strings.Contains(body, `data-font-size="xlarge"`) {
		t.Error("invalid font size replaced the saved one")
	}

	c.postForm("/prefs/accessibility/", url.Values{"reset": {"1"}})
	body = c.get("/").Body.String()
	if !strings.Contains(body, `data-high-contrast="false"`) || !strings.Contains(body, `data-font-size="normal"`) {
		t.Error("reset did not restore defaults")
	}
}

func TestEditSave(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	rec := c.postForm("/admin/edit/save/", url.Values{
		"profile.title":     {"Assistant Professor"},
		"_list":             {"news"},
		"_item":             {"news.new1", "news.0"},
		"news.new1.date":    {"2024.09"},
		"news.new1.content": {"Joined the faculty"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save = %d: %s", rec.Code, rec.Body.String())
	}
	s := a.Site.State().Current()
	if s.Profile.Title != "Assistant Professor" {
		t.Errorf("title = %q", s.Profile.Title)
	}
	if len(s.News) != 2 || s.News[0].Date != "2024.09" || s.News[1].Date != "2024.06" {
		t.Errorf("news = %+v", s.News)
	}
	if s.Profile.Email != "jane@example.edu" {
		t.Error("fields missing from the form should keep their value")
	}
}

func TestEditSaveRejectsBadEmail(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()
	rec := c.postForm("/admin/edit/save/", url.Values{"profile.email": {"not-an-email"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save = %d, want 422", rec.Code)
	}
	if a.Site.State().Current().Profile.Email != "jane@example.edu" {
		t.Error("invalid save changed the live site")
	}
}

func TestDraftIsDebouncedAndPrompted(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	for _, title := range []string{"A", "AB", "ABC"} {
		rec := c.postForm("/admin/edit/draft/", url.Values{"session": {"s1"}, "profile.title": {title}})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("draft = %d", rec.Code)
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if d, ok := a.Site.PendingDraft(); ok && d.Data.Profile.Title == "ABC" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("the last edit was never saved as a draft")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if a.Site.State().Current().Profile.Title == "ABC" {
		t.Error("draft leaked into the live site")
	}

	if body := c.get("/admin/").Body.String(); !strings.Contains(body, "/admin/edit/?draft=restore") {
		t.Error("dashboard does not offer the draft")
	}
	if body := c.get("/admin/edit/?draft=restore").Body.String(); !strings.Contains(body, `value="ABC"`) {
		t.Error("restored draft not loaded into the form")
	}
	if rec := c.postForm("/admin/edit/draft/discard/", nil); rec.Code != http.StatusSeeOther {
		t.Fatalf("discard = %d", rec.Code)
	}
	if _, ok := a.Site.PendingDraft(); ok {
		t.Error("draft still pending after discard")
	}
}

func TestSitePatch(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	body := `[{"op":"set","path":"profile.title","value":"Professor"},{"op":"delete","path":"awards.0"}]`
	rec := c.do(http.MethodPatch, "/admin/api/site", strings.NewReader(body), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH = %d: %s", rec.Code, rec.Body.String())
	}
	s := a.Site.State().Current()
	if s.Profile.Title != "Professor" || len(s.Awards) != 0 {
		t.Errorf("site after patch: title %q, awards %d", s.Profile.Title, len(s.Awards))
	}

	bad := `[{"op":"set","path":"profile.title","value":"X"},{"op":"set","path":"nope.field","value":1}]`
	rec = c.do(http.MethodPatch, "/admin/api/site", strings.NewReader(bad), echo.MIMEApplicationJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad PATCH = %d, want 400", rec.Code)
	}
	if a.Site.State().Current().Profile.Title != "Professor" {
		t.Error("failed PATCH applied partially")
	}
}

func TestImport(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	next := testSite()
	next.Profile.Title = "Imported"
	data, err := content.MarshalIndent(next)
	if err != nil {
		t.Fatal(err)
	}

	body, ct := upload(t, "file", "site.json", data, nil)
	if rec := c.do(http.MethodPost, "/admin/import/", body, ct); rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed import = %d, want 400", rec.Code)
	}

	body, ct = upload(t, "file", "site.json", data, url.Values{"confirm": {"yes"}})
	if rec := c.do(http.MethodPost, "/admin/import/", body, ct); rec.Code != http.StatusSeeOther {
		t.Fatalf("import = %d", rec.Code)
	}
	if got := a.Site.State().Current().Profile.Title; got != "Imported" {
		t.Errorf("title after import = %q", got)
	}
	snaps, err := a.Site.Snapshots()
	if err != nil || len(snaps) != 1 || snaps[0].Label != "Before import" {
		t.Errorf("snapshots = %+v, %v", snaps, err)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	tests := map[string]string{
		"not json":      `{"profile":`,
		"missing field": `{"profile":{"name":{"en":"X"},"title":"T","email":"x@y.z"}}`,
		"bad email":     strings.Replace(mustJSON(t, testSite()), "jane@example.edu", "jane", 1),
	}
	for name, doc := range tests {
		rec := c.do(http.MethodPost, "/admin/import/?confirm=yes", strings.NewReader(doc), echo.MIMEApplicationJSON)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: import = %d, want 422", name, rec.Code)
		}
	}
	if !content.Equal(a.Site.State().Current(), testSite()) {
		t.Error("rejected import changed the live site")
	}
}

func mustJSON(t *testing.T, s content.Site) string {
	t.Helper()
	b, err := content.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestVersionsRestore(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	if rec := c.postForm("/admin/versions/", url.Values{"label": {"good"}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("create snapshot = %d", rec.Code)
	}
	snaps, _ := a.Site.Snapshots()
	id := snaps[0].ID

	s := a.Site.State().Current()
	s.Profile.Title = "Changed"
	if err := a.Site.Commit(s); err != nil {
		t.Fatal(err)
	}

	path := "/admin/versions/" + strconv.FormatInt(id, 10) + "/restore/"
	rec := c.postForm(path, nil)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "err=confirm") {
		t.Errorf("restore without confirm redirected to %q", loc)
	}
	if a.Site.State().Current().Profile.Title != "Changed" {
		t.Fatal("restore ran without confirmation")
	}

	c.postForm(path, url.Values{"confirm": {"yes"}})
	if got := a.Site.State().Current().Profile.Title; got != "Ph.D. Candidate" {
		t.Errorf("title after restore = %q", got)
	}
	snaps, _ = a.Site.Snapshots()
	if len(snaps) != 2 || snaps[0].Label != "Before restore: good" {
		t.Errorf("snapshots = %+v", snaps)
	}
	if body := c.get("/admin/versions/").Body.String(); !strings.Contains(body, "Before restore: good") {
		t.Error("history page does not list the snapshot")
	}

	if rec := c.postForm("/admin/versions/999/restore/", url.Values{"confirm": {"yes"}}); !strings.Contains(rec.Header().Get("Location"), "err=not-found") {
		t.Errorf("unknown id redirected to %q", rec.Header().Get("Location"))
	}
	c.postForm("/admin/versions/"+strconv.FormatInt(id, 10)+"/delete/", nil)
	c.postForm("/admin/versions/clear/", nil)
	if snaps, _ := a.Site.Snapshots(); len(snaps) != 0 {
		t.Errorf("history not cleared: %+v", snaps)
	}
}

func TestExports(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.login()
	tests := []struct {
		path, contentType, contains string
	}{
		{"/admin/export/json/", "application/json", `"myName": "Jane Doe"`},
		{"/admin/export/js/", "text/javascript", "const siteData = "},
		{"/admin/export/md/", "text/markdown", "Raft at Scale"},
		{"/admin/export/md/preview/", "text/html", "<h2"},
	}
	for _, tt := range tests {
		rec := c.get(tt.path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", tt.path, rec.Code)
			continue
		}
		if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, tt.contentType) {
			t.Errorf("GET %s content type = %q", tt.path, ct)
		}
		if !strings.Contains(rec.Body.String(), tt.contains) {
			t.Errorf("GET %s missing %q", tt.path, tt.contains)
		}
	}
}

func TestStatsJSON(t *testing.T) {
	c := newClient(t, newTestApp(t))
	c.login()
	rec := c.get("/admin/api/stats")
	var st content.Statistics
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Content.PublicationsCount != 1 || st.Profile.Name != "Jane Doe" {
		t.Errorf("stats = %+v", st)
	}
}

func TestSEOEndpoints(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	tests := []struct {
		path, contains string
	}{
		{"/sitemap.xml", "<loc>https://jane.example.edu/#publications</loc>"},
		{"/feed.xml", "<rss"},
		{"/robots.txt", "Sitemap: https://jane.example.edu/sitemap.xml"},
		{"/metrics", "scholarpage_site_revision"},
	}
	for _, tt := range tests {
		rec := c.get(tt.path)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), tt.contains) {
			t.Errorf("GET %s = %d, missing %q", tt.path, rec.Code, tt.contains)
		}
	}

	if err := os.MkdirAll(a.Config.StaticDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(a.Config.StaticDir, "robots.txt"), []byte("User-agent: *\nDisallow: /\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if body := c.get("/robots.txt").Body.String(); !strings.Contains(body, "Disallow: /\n") || strings.Contains(body, "Sitemap") {
		t.Errorf("static robots.txt not served: %q", body)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	c := newClient(t, newTestApp(t))
	for _, name := range []string{"style.css", "editor.js"} {
		if rec := c.get("/public/" + name); rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Errorf("GET /public/%s = %d", name, rec.Code)
		}
	}
}

func TestBuild(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	res, err := a.Build(context.Background(), dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, name := range []string{"index.html", "site-data.json", "data.js", "site-data.md", "site-data.html", "search-index.json", "sitemap.xml", "robots.txt", "feed.xml", "public/style.css"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if len(res.Files) < 10 {
		t.Errorf("Files = %v", res.Files)
	}

	index, _ := os.ReadFile(filepath.Join(dir, "index.html"))
	if bytes.Contains(index, []byte("/prefs/theme/")) || !bytes.Contains(index, []byte("Raft at Scale")) {
		t.Error("static index.html should have content but no server controls")
	}
	var entries []search.Entry
	raw, _ := os.ReadFile(filepath.Join(dir, "search-index.json"))
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
		t.Errorf("search-index.json: %v, %d entries", err, len(entries))
	}
	exported, _ := os.ReadFile(filepath.Join(dir, "site-data.json"))
	s, err := content.DecodeImport(bytes.NewReader(exported), testLogger())
	if err != nil || !content.Equal(s, testSite()) {
		t.Errorf("site-data.json does not import back: %v", err)
	}
}

func TestFlashMessage(t *testing.T) {
	tests := map[string]string{
		"saved":            "Changes saved",
		"not-found":        "Version not found",
		"bad-image":        "The uploaded file is not a supported image",
		"draft-restored":   "Draft restored, review and save",
		"<script>alert(1)": "",
		"":                 "",
	}
	for code, want := range tests {
		if got := flashMessage(code); got != want {
			t.Errorf("flashMessage(%q) = %q, want %q", code, got, want)
		}
	}
}
