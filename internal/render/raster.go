package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/enixma/dashboard/pkg/core"
	"golang.org/x/image/vector"
)

// circleSegments is the number of chords used to approximate a circle.
const circleSegments = 32

// Raster renders onto an in-memory RGBA frame.
type Raster struct {
	img *image.RGBA
	z   vector.Rasterizer
}

// NewRaster creates a transparent w x h frame.
func NewRaster(w, h int) *Raster {
	return &Raster{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the backing frame.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// EncodePNG writes the current frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Clear resets every pixel to transparent.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// FillPolygon fills the closed outline pts.
func (r *Raster) FillPolygon(pts []core.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	r.fill(pts, c)
}

// StrokePath strokes the polyline pts. Each segment is drawn as a quad and
// every joint gets a round cap.
func (r *Raster) StrokePath(pts []core.Point, closed bool, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	half := width / 2
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		if quad, ok := segmentQuad(a, b, half); ok {
			r.fill(quad, c)
		}
	}
	for _, p := range pts {
		r.fill(circle(p, half), c)
	}
}

// StrokeCircle strokes a circle outline.
func (r *Raster) StrokeCircle(center core.Point, radius, width float64, c color.Color) {
	pts := circle(center, radius)
	r.StrokePath(pts, true, width, c)
}

func (r *Raster) fill(pts []core.Point, c color.Color) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	clip := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(r.img.Bounds())
	if clip.Empty() {
		return
	}

	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	r.z.Reset(clip.Dx(), clip.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	r.z.ClosePath()
	r.z.Draw(r.img, clip, image.NewUniform(c), image.Point{})
}

func segmentQuad(a, b core.Point, half float64) ([]core.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil, false
	}
	nx, ny := -dy/l*half, dx/l*half
	return []core.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, true
}

func circle(center core.Point, radius float64) []core.Point {
	pts := make([]core.Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = core.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return pts
}
