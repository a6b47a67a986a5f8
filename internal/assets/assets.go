package assets

import (
	"embed"
	"io/fs"

	"golang.org/x/image/font/gofont/goregular"
)

// CaptionFontTTF is the TrueType font used for framebuffer captions.
var CaptionFontTTF = goregular.TTF

//go:embed web
var webFS embed.FS

// WebUI is an embedded filesystem rooted at internal/assets/web.
// It contains the preview page served at '/'.
var WebUI fs.FS

func init() {
	// Embed paths include the leading directory; strip it for serving at '/'.
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	WebUI = sub
}
