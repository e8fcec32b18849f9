// Package scaffold provides the embedded starter files written by
// `scholarpage init` and the seed site used when no content exists yet.
package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/eringen/scholarpage/content"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	Name  string
	Email string
}

func (d *Data) setDefaults() {
	if d.Name == "" {
		d.Name = "Your Name"
	}
	if d.Email == "" {
		d.Email = "you@example.edu"
	}
}

var funcs = template.FuncMap{
	"json": func(s string) (string, error) {
		b, err := json.Marshal(s)
		return string(b), err
	},
}

func execute(path string, data Data, w io.Writer) error {
	src, err := Templates.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(funcs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", path, err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute template %s: %w", path, err)
	}
	return nil
}

// Site returns the starter homepage for data, validated like an import.
func Site(data Data) (content.Site, error) {
	data.setDefaults()
	var buf bytes.Buffer
	if err := execute(root+"/site.json.tmpl", data, &buf); err != nil {
		return content.Site{}, err
	}
	return content.DecodeImport(&buf, nil)
}

// Generate writes the starter project into dir, which must not exist yet.
// Each created path is reported to out.
func Generate(dir string, data Data, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	data.setDefaults()

	return fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := execute(path, data, f); err != nil {
			return err
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
}
