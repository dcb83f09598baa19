// Package preview renders deformed meshes as wireframe images.
package preview

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/deform"
)

// Options configures Render.
type Options struct {
	Size        int     // output width and height in pixels
	Supersample int     // rasterization scale factor, 1 disables
	LineWidth   float32 // in output pixels
	Label       string  // drawn in the top-left corner when non-empty

	Background color.Color
	Foreground color.Color
}

// DefaultOptions returns a 256 pixel preview on a dark background.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		LineWidth:   1,
		Background:  color.NRGBA{R: 24, G: 26, B: 33, A: 255},
		Foreground:  color.NRGBA{R: 236, G: 178, B: 74, A: 255},
	}
}

// Bounds is an axis-aligned rectangle in the XY plane.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float32
}

// BoundsOf returns the XY bounds of points, grown by margin on every side.
func BoundsOf(points []deform.Vec3, margin float32) Bounds {
	b := Bounds{MinX: math.MaxFloat32, MinY: math.MaxFloat32, MaxX: -math.MaxFloat32, MaxY: -math.MaxFloat32}
	for _, p := range points {
		b.MinX, b.MaxX = min(b.MinX, p[0]), max(b.MaxX, p[0])
		b.MinY, b.MaxY = min(b.MinY, p[1]), max(b.MaxY, p[1])
	}
	if len(points) == 0 {
		b = Bounds{}
	}
	b.MinX -= margin
	b.MinY -= margin
	b.MaxX += margin
	b.MaxY += margin
	return b
}

// Union returns the smallest bounds containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, o.MinX), MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX), MaxY: max(b.MaxY, o.MaxY),
	}
}

// projection maps the XY plane onto a square image, Y up, keeping the
// aspect ratio and centering the bounds.
type projection struct {
	scale, offX, offY, size float32
}

func newProjection(b Bounds, size int) projection {
	w, h := b.MaxX-b.MinX, b.MaxY-b.MinY
	extent := max(w, h, 1e-6)
	s := float32(size) / extent
	return projection{
		scale: s,
		offX:  (float32(size) - w*s) / 2,
		offY:  (float32(size) - h*s) / 2,
		size:  float32(size),
	}.withOrigin(b)
}

func (p projection) withOrigin(b Bounds) projection {
	p.offX -= b.MinX * p.scale
	p.offY -= b.MinY * p.scale
	return p
}

func (p projection) apply(v deform.Vec3) (x, y float32) {
	return v[0]*p.scale + p.offX, p.size - (v[1]*p.scale + p.offY)
}

// Render draws the edges between points, viewed along -Z and fitted to
// bounds.
func Render(points []deform.Vec3, edges [][2]int, bounds Bounds, o Options) *image.NRGBA {
	ss := max(o.Supersample, 1)
	size := o.Size * ss
	proj := newProjection(bounds, size)

	r := vector.NewRasterizer(size, size)
	half := max(o.LineWidth, 0.25) * float32(ss) / 2
	for _, e := range edges {
		x0, y0 := proj.apply(points[e[0]])
		x1, y1 := proj.apply(points[e[1]])
		line(r, x0, y0, x1, y1, half)
	}

	big := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(big, big.Bounds(), image.NewUniform(o.Background), image.Point{}, xdraw.Src)
	r.Draw(big, big.Bounds(), image.NewUniform(o.Foreground), image.Point{})

	out := image.NewNRGBA(image.Rect(0, 0, o.Size, o.Size))
	if ss == 1 {
		xdraw.Draw(out, out.Bounds(), big, image.Point{}, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	}

	if o.Label != "" {
		drawLabel(out, o.Label, o.Foreground)
	}
	return out
}

// line adds a segment of half-width half as a quad.
func line(r *vector.Rasterizer, x0, y0, x1, y1, half float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		dx, dy, l = 1, 0, 1
	}
	nx, ny := -dy/l*half, dx/l*half
	r.MoveTo(x0+nx, y0+ny)
	r.LineTo(x1+nx, y1+ny)
	r.LineTo(x1-nx, y1-ny)
	r.LineTo(x0-nx, y0-ny)
	r.ClosePath()
}
