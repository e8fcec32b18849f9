package scholarpage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	avatarSize    = 400
	jpegQuality   = 85
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processAvatar decodes an image, crops it to a centered square, scales it
// to avatarSize and encodes it as JPEG.
func processAvatar(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))

	out := side
	if out > avatarSize {
		out = avatarSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, out, out))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// handleAvatarUpload stores a resized avatar under StaticDir/uploads and
// points profile.avatar at it.
func (a *App) handleAvatarUpload(c echo.Context) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?err=no-file")
	}
	if file.Size > maxUploadSize {
		return c.Redirect(http.StatusSeeOther, "/admin/?err=too-large")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processAvatar(src)
	if err != nil {
		c.Logger().Warnf("avatar upload: %v", err)
		return c.Redirect(http.StatusSeeOther, "/admin/?err=bad-image")
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	// Unique per upload: /public responses are cached for a day.
	s := a.Site.State().Current()
	name := "avatar-" + strconv.FormatInt(time.Now().Unix(), 10) + ".jpg"
	if slug := Slugify(s.Profile.DisplayName("en")); slug != "" {
		name = slug + "-" + name
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write avatar: %w", err)
	}

	s.Profile.Avatar = "/public/" + uploadsSubdir + "/" + name
	if err := a.Site.Commit(s); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=avatar")
}
