package overlay

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontCache parses each font file once per preparation pass.
type fontCache struct {
	parsed map[string]*opentype.Font
}

func newFontCache() *fontCache {
	return &fontCache{parsed: map[string]*opentype.Font{}}
}

// face loads path at size pixels. An empty path selects the embedded Go
// Regular font; a missing or unparsable file is an error so the caller can
// skip the entry.
func (c *fontCache) face(path string, size float64) (font.Face, error) {
	f, ok := c.parsed[path]
	if !ok {
		data := goregular.TTF
		if path != "" {
			var err error
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read font: %w", err)
			}
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %q: %w", path, err)
		}
		c.parsed[path] = parsed
		f = parsed
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}
