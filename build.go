package scholarpage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/markdown"
	"github.com/eringen/scholarpage/search"
	"github.com/eringen/scholarpage/views"
)

// BuildResult lists the files a static build wrote, relative to its directory.
type BuildResult struct {
	Files []string
}

// Build writes a static copy of the site into dir: the page without its
// server controls, every export format, the search index, SEO files and the
// public assets. The app must be initialized.
func (a *App) Build(ctx context.Context, dir string) (BuildResult, error) {
	if a.Site == nil {
		return BuildResult{}, fmt.Errorf("scholarpage: build before Init")
	}
	var res BuildResult
	s := a.Site.State().Current()
	now := time.Now()

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"index.html", func(w io.Writer) error {
			return views.Home(views.PageData{
				Site:   s,
				Meta:   pageMeta(s, a.Config),
				JSONLD: jsonLD(s, a.Config),
				Locale: "en",
				Static: true,
			}).Render(ctx, w)
		}},
		{exportJSON, func(w io.Writer) error { return content.EncodeJSON(w, s) }},
		{exportDataJS, func(w io.Writer) error { return content.EncodeDataJS(w, s, now) }},
		{exportMarkdown, func(w io.Writer) error { return content.EncodeMarkdown(w, s, now) }},
		{"site-data.html", func(w io.Writer) error {
			var src bytes.Buffer
			if err := content.EncodeMarkdown(&src, s, now); err != nil {
				return err
			}
			return markdown.Page(w, a.Config.siteName(s), src.Bytes())
		}},
		{"search-index.json", func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(search.BuildIndex(s))
		}},
		{"sitemap.xml", func(w io.Writer) error {
			return writeSitemap(w, s, a.Config.URL, now.UTC().Format("2006-01-02"))
		}},
		{"robots.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, RobotsTxt(a.Config))
			return err
		}},
		{"feed.xml", func(w io.Writer) error { return writeRSS(w, s, a.Config) }},
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("scholarpage: build: %w", err)
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return res, fmt.Errorf("scholarpage: build %s: %w", f.name, err)
		}
		res.Files = append(res.Files, f.name)
	}

	// The user's static directory wins over the embedded assets.
	embedded, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return res, err
	}
	copied, err := copyTree(embedded, filepath.Join(dir, "public"))
	if err != nil {
		return res, fmt.Errorf("scholarpage: build assets: %w", err)
	}
	res.Files = append(res.Files, copied...)
	if info, err := os.Stat(a.Config.StaticDir); err == nil && info.IsDir() {
		copied, err := copyTree(os.DirFS(a.Config.StaticDir), filepath.Join(dir, "public"))
		if err != nil {
			return res, fmt.Errorf("scholarpage: build static: %w", err)
		}
		res.Files = append(res.Files, copied...)
	}
	a.Logger().Infof("built %d files into %s", len(res.Files), dir)
	return res, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// copyTree copies every regular file of src into dst and returns their
// paths relative to dst's parent.
func copyTree(src fs.FS, dst string) ([]string, error) {
	var copied []string
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		in, err := src.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		if err := writeFile(target, func(w io.Writer) error {
			_, err := io.Copy(w, in)
			return err
		}); err != nil {
			return err
		}
		copied = append(copied, filepath.ToSlash(filepath.Join(filepath.Base(dst), p)))
		return nil
	})
	return copied, err
}
