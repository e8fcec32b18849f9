package publish

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 accepts PutObject requests and records them by key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]object
	fail    string
}

type object struct {
	body         []byte
	contentType  string
	cacheControl string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	// path style: /bucket/key
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	if key == f.fail {
		body := `<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`
		return &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	f.mu.Lock()
	f.objects[key] = object{body: body, contentType: req.Header.Get("Content-Type"), cacheControl: req.Header.Get("Cache-Control")}
	f.mu.Unlock()
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {`"etag"`}}}, nil
}

func newFake(t *testing.T, prefix string) (*Publisher, *fakeS3) {
	t.Helper()
	rt := &fakeS3{objects: make(map[string]object)}
	p, err := New(context.Background(), Config{
		Bucket:          "site",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		Prefix:          prefix,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, rt
}

func writeBuild(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":        "<!DOCTYPE html><title>Jane</title>",
		"site-data.json":    `{"profile":{}}`,
		"public/editor.js":  "console.log(1)",
		"public/avatar.jpg": "\xff\xd8\xff",
	}
	for name, body := range files {
		fp := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fp, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPublishUploadsBuild(t *testing.T) {
	p, rt := newFake(t, "/www/")
	res, err := p.Publish(context.Background(), writeBuild(t))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Files != 4 {
		t.Errorf("Files = %d, want 4", res.Files)
	}

	idx, ok := rt.objects["www/index.html"]
	if !ok {
		t.Fatalf("index.html not uploaded; have %v", res.Keys)
	}
	if !strings.HasPrefix(idx.contentType, "text/html") {
		t.Errorf("index.html content type = %q", idx.contentType)
	}
	if idx.cacheControl != "no-cache" {
		t.Errorf("index.html cache control = %q", idx.cacheControl)
	}
	if !bytes.Contains(idx.body, []byte("<title>Jane</title>")) {
		t.Error("index.html body not uploaded")
	}
	if img := rt.objects["www/public/avatar.jpg"]; img.contentType != "image/jpeg" || img.cacheControl != "public, max-age=86400" {
		t.Errorf("avatar headers = %q, %q", img.contentType, img.cacheControl)
	}
}

func TestPublishStopsOnError(t *testing.T) {
	p, rt := newFake(t, "")
	rt.fail = "index.html"
	if _, err := p.Publish(context.Background(), writeBuild(t)); err == nil {
		t.Fatal("expected an error for a rejected upload")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected an error without a bucket")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"data.js":      "text/javascript; charset=utf-8",
		"site-data.md": "text/markdown; charset=utf-8",
		"robots":       "application/octet-stream",
		"style.CSS":    "text/css; charset=utf-8",
	}
	for key, want := range tests {
		if got := ContentType(key); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", key, got, want)
		}
	}
}
