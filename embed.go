package scholarpage

import (
	"embed"
	"io/fs"
)

// EmbeddedAssets contains static assets shipped with the binary:
// style.css and editor.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// embeddedNames lists the file names under embedded/.
func embeddedNames() []string {
	entries, err := fs.ReadDir(EmbeddedAssets, "embedded")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
