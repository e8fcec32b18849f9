package scholarpage

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe", "jane-doe"},
		{"  Hello,   World!  ", "hello-world"},
		{"简", ""},
		{"Dr. X-Y 2", "dr-x-y-2"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://jane.example.edu", nil, "https://jane.example.edu/"},
		{"https://jane.example.edu/", []string{"feed.xml"}, "https://jane.example.edu/feed.xml/"},
		{"https://example.edu/~jane", []string{"cv"}, "https://example.edu/~jane/cv/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
	if got := SectionURL("https://jane.example.edu", "news"); got != "https://jane.example.edu/#news" {
		t.Errorf("SectionURL = %q", got)
	}
}

func TestPersonJsonLD(t *testing.T) {
	cfg := SiteConfig{URL: "https://jane.example.edu"}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(PersonJsonLD(testSite(), cfg)), &doc); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if doc["@type"] != "Person" || doc["name"] != "Jane Doe" {
		t.Errorf("person = %v", doc)
	}
	if doc["image"] != "https://jane.example.edu/public/avatar.jpg" {
		t.Errorf("image = %v, want the avatar resolved against the site URL", doc["image"])
	}
}

func TestJsonLDEscapesScriptClose(t *testing.T) {
	s := testSite()
	s.Publications.Items[0].Title = "</script><script>alert(1)</script>"
	for _, doc := range jsonLD(s, SiteConfig{URL: "https://jane.example.edu"}) {
		if strings.Contains(doc, "</script>") {
			t.Fatalf("JSON-LD can close its script tag: %s", doc)
		}
	}
}

func TestWriteRSS(t *testing.T) {
	s := testSite()
	s.News = append(s.News, testSite().News[0])
	s.News[1].Date = "sometime"
	s.News[1].Content = strings.Repeat("long ", 40)

	var buf bytes.Buffer
	if err := writeRSS(&buf, s, SiteConfig{URL: "https://jane.example.edu"}); err != nil {
		t.Fatalf("writeRSS: %v", err)
	}
	var feed rssXML
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v", err)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Channel.Items))
	}
	first := feed.Channel.Items[0]
	if first.Title != "Paper accepted at OSDI" || first.PubDate == "" {
		t.Errorf("first item = %+v", first)
	}
	second := feed.Channel.Items[1]
	if second.PubDate != "" || len([]rune(second.Title)) != 80 {
		t.Errorf("second item title %q, pubDate %q", second.Title, second.PubDate)
	}
	if first.GUID == second.GUID {
		t.Error("items share a GUID")
	}
}

func TestParseNewsDate(t *testing.T) {
	for _, in := range []string{"2024-06-01", "2024.06", "2024", " 2024-06 "} {
		if _, ok := parseNewsDate(in); !ok {
			t.Errorf("parseNewsDate(%q) failed", in)
		}
	}
	if _, ok := parseNewsDate("June"); ok {
		t.Error("parseNewsDate accepted a month name")
	}
}

func TestWriteSitemapSkipsEmptySections(t *testing.T) {
	s := testSite()
	s.Awards = nil
	var buf bytes.Buffer
	if err := writeSitemap(&buf, s, "https://jane.example.edu", "2024-06-01"); err != nil {
		t.Fatalf("writeSitemap: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "#awards") {
		t.Error("empty awards section listed")
	}
	if !strings.Contains(out, "#experience") || !strings.Contains(out, "<lastmod>2024-06-01</lastmod>") {
		t.Errorf("sitemap = %s", out)
	}
}

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessAvatar(t *testing.T) {
	out, err := processAvatar(bytes.NewReader(testImage(t, 900, 500)))
	if err != nil {
		t.Fatalf("processAvatar: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != avatarSize || b.Dy() != avatarSize {
		t.Errorf("avatar is %dx%d, want %dx%d", b.Dx(), b.Dy(), avatarSize, avatarSize)
	}

	small, err := processAvatar(bytes.NewReader(testImage(t, 64, 100)))
	if err != nil {
		t.Fatalf("processAvatar: %v", err)
	}
	img, _ = jpeg.Decode(bytes.NewReader(small))
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("small avatar is %dx%d, want 64x64", b.Dx(), b.Dy())
	}

	if _, err := processAvatar(strings.NewReader("not an image")); err == nil {
		t.Error("expected an error for non-image input")
	}
}

func TestAvatarUpload(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	body, ct := upload(t, "avatar", "me.png", testImage(t, 50, 50), nil)
	rec := c.do(http.MethodPost, "/admin/avatar/", body, ct)
	if loc := rec.Header().Get("Location"); loc != "/admin/?msg=avatar" {
		t.Fatalf("upload redirected to %q", loc)
	}
	avatar := a.Site.State().Current().Profile.Avatar
	if !strings.HasPrefix(avatar, "/public/uploads/jane-doe-avatar-") {
		t.Fatalf("avatar = %q", avatar)
	}
	fp := filepath.Join(a.Config.StaticDir, filepath.FromSlash(strings.TrimPrefix(avatar, "/public/")))
	if _, err := os.Stat(fp); err != nil {
		t.Errorf("avatar file missing: %v", err)
	}
	if rec := c.get(avatar); rec.Code != http.StatusOK {
		t.Errorf("GET %s = %d", avatar, rec.Code)
	}

	body, ct = upload(t, "avatar", "me.txt", []byte("hello"), url.Values{})
	rec = c.do(http.MethodPost, "/admin/avatar/", body, ct)
	if loc := rec.Header().Get("Location"); loc != "/admin/?err=bad-image" {
		t.Errorf("bad upload redirected to %q", loc)
	}
}
