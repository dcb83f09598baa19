package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	labelSize   = 12
	labelMargin = 6
)

// fonts holds the parsed label font. The x/image face draws glyphs; the
// go-text font measures shaped runs.
var fonts = sync.OnceValues(func() (*labelFonts, error) {
	otf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    labelSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	gt, err := gotext.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &labelFonts{face: face, shapingFont: gt.Font}, nil
})

type labelFonts struct {
	mu          sync.Mutex // font.Face is not safe for concurrent use
	face        font.Face
	shapingFont *gotext.Font
}

// MeasureLabel returns the shaped advance of s in pixels.
func MeasureLabel(s string) (float32, error) {
	f, err := fonts()
	if err != nil {
		return 0, err
	}
	runes := []rune(s)
	out := (&shaping.HarfbuzzShaper{}).Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shapingFont),
		Size:      fixed.I(labelSize),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	})
	return float32(out.Advance) / 64, nil
}

// drawLabel writes s into the top-left corner of dst on a backdrop sized
// from the shaped advance. Labels are skipped if the font cannot load.
func drawLabel(dst draw.Image, s string, c color.Color) {
	f, err := fonts()
	if err != nil {
		return
	}
	width, _ := MeasureLabel(s)

	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face.Metrics()
	top := labelMargin
	base := top + m.Ascent.Ceil()
	back := image.Rect(labelMargin-2, top-2, labelMargin+int(width)+2, base+m.Descent.Ceil()+2)
	draw.Draw(dst, back.Intersect(dst.Bounds()), image.NewUniform(color.NRGBA{A: 160}), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(labelMargin, base),
	}
	d.DrawString(s)
}
