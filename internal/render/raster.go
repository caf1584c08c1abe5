package render

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"shape-annotator/pkg/colorutil"
	"shape-annotator/pkg/geometry"
)

// Raster is a Surface backed by a gg software context. Clear restores the
// background image, so overlays never accumulate between renders.
//
// Geometry is clipped to the visible area before it reaches the rasterizer;
// shapes may extend arbitrarily far past the image.
type Raster struct {
	width, height int

	pm *gg.Pixmap
	dc *gg.Context

	background image.Image
	base       *image.RGBA // white + background, rebuilt when either changes
	face       font.Face
}

// NewRaster creates a width x height raster over background, which may be nil.
func NewRaster(width, height int, background image.Image) *Raster {
	r := &Raster{
		background: background,
		face:       basicfont.Face7x13,
	}
	r.alloc(width, height)
	return r
}

// NewRasterForBackground sizes the raster to the background image.
func NewRasterForBackground(background image.Image) *Raster {
	b := background.Bounds()
	return NewRaster(b.Dx(), b.Dy(), background)
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() *image.RGBA {
	return r.pm.ToImage()
}

// SetBackground replaces the background shown by Clear.
func (r *Raster) SetBackground(bg image.Image) {
	r.background = bg
	r.base = nil
}

// Resize reallocates the pixel buffer when the size changes.
func (r *Raster) Resize(width, height int) {
	if r.width == width && r.height == height {
		return
	}
	r.alloc(width, height)
}

func (r *Raster) alloc(width, height int) {
	if r.dc != nil {
		_ = r.dc.Close()
	}
	r.width, r.height = width, height
	r.pm = gg.NewPixmap(width, height)
	r.dc = gg.NewContextForPixmap(r.pm)
	r.base = nil
}

func (r *Raster) Clear() {
	if r.base == nil {
		bounds := image.Rect(0, 0, r.width, r.height)
		r.base = image.NewRGBA(bounds)
		draw.Draw(r.base, bounds, image.NewUniform(colorutil.White), image.Point{}, draw.Src)
		if r.background != nil {
			draw.Draw(r.base, bounds, r.background, r.background.Bounds().Min, draw.Over)
		}
	}
	// Both buffers hold premultiplied RGBA.
	copy(r.pm.Data(), r.base.Pix)
	r.pm.NotifyPixelsChanged()
}

func (r *Raster) StrokeRect(rect geometry.Rect, s Stroke) {
	x1, y1 := rect.X, rect.Y
	x2, y2 := rect.X+rect.Width, rect.Y+rect.Height
	if !finite(x1, y1, x2, y2) {
		return
	}
	vx1, vy1, vx2, vy2 := r.view(s)

	if x2 < vx1 || y2 < vy1 || x1 > vx2 || y1 > vy2 {
		return
	}
	// The view lies entirely inside the outline.
	if x1 < vx1 && y1 < vy1 && x2 > vx2 && y2 > vy2 {
		return
	}

	// Clamped edges land outside the view, so they never show.
	x1, x2 = clamp(x1, vx1, vx2), clamp(x2, vx1, vx2)
	y1, y2 = clamp(y1, vy1, vy2), clamp(y2, vy1, vy2)

	r.begin(s)
	r.dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
	_ = r.dc.Stroke()
}

func (r *Raster) StrokeCircle(center geometry.Point2D, radius float64, s Stroke) {
	cx, cy := center.X, center.Y
	if !finite(cx, cy, radius) || radius <= 0 {
		return
	}
	vx1, vy1, vx2, vy2 := r.view(s)

	near := math.Hypot(cx-clamp(cx, vx1, vx2), cy-clamp(cy, vy1, vy2))
	far := 0.0
	for _, c := range [4][2]float64{{vx1, vy1}, {vx2, vy1}, {vx2, vy2}, {vx1, vy2}} {
		far = math.Max(far, math.Hypot(c[0]-cx, c[1]-cy))
	}
	if near > radius || far < radius {
		return
	}

	r.begin(s)
	if near == 0 {
		// Center inside the view: radius <= far, so the full circle is small.
		r.dc.DrawCircle(cx, cy, radius)
	} else {
		lo, hi := cornerSpan(cx, cy, vx1, vy1, vx2, vy2)
		r.dc.DrawArc(cx, cy, radius, lo, hi)
	}
	_ = r.dc.Stroke()
}

func (r *Raster) FillText(text string, baseline geometry.Point2D, c color.RGBA) {
	if !finite(baseline.X, baseline.Y) {
		return
	}
	d := &font.Drawer{
		Dst:  r.pm,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(int(clamp(math.Round(baseline.X), -1<<20, 1<<20)), int(clamp(math.Round(baseline.Y), -1<<20, 1<<20))),
	}
	d.DrawString(text)
}

func (r *Raster) MeasureText(text string) (w, h float64) {
	adv := font.MeasureString(r.face, text)
	return float64(adv.Ceil()), float64(r.face.Metrics().Ascent.Ceil())
}

func (r *Raster) begin(s Stroke) {
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(strokeWidth(s))
	if len(s.Dash) > 0 {
		r.dc.SetDash(s.Dash...)
	} else {
		r.dc.ClearDash()
	}
}

// view returns the image bounds grown by a margin wider than the stroke.
func (r *Raster) view(s Stroke) (x1, y1, x2, y2 float64) {
	m := strokeWidth(s) + 2
	return -m, -m, float64(r.width) + m, float64(r.height) + m
}

// cornerSpan returns the angular range, seen from a center outside the
// rectangle, that covers all four corners. The span is always below pi.
func cornerSpan(cx, cy, x1, y1, x2, y2 float64) (lo, hi float64) {
	base := math.Atan2((y1+y2)/2-cy, (x1+x2)/2-cx)
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range [4][2]float64{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}} {
		a := math.Atan2(c[1]-cy, c[0]-cx) - base
		for a <= -math.Pi {
			a += 2 * math.Pi
		}
		for a > math.Pi {
			a -= 2 * math.Pi
		}
		lo, hi = math.Min(lo, a), math.Max(hi, a)
	}
	return base + lo, base + hi
}

func strokeWidth(s Stroke) float64 {
	if s.Width < 1 {
		return 1
	}
	return s.Width
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
