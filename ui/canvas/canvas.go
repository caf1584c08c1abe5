// Package canvas provides the annotation canvas widget: the background
// image with the rendered overlay, reporting taps and pointer moves in
// canvas-local coordinates.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/render"
	"shape-annotator/pkg/geometry"
)

var defaultSize = fyne.NewSize(640, 480)

// AnnotationCanvas shows the rendered scene and forwards pointer input.
// It implements app.Renderer.
type AnnotationCanvas struct {
	widget.BaseWidget

	surface *render.Raster
	orch    *render.Orchestrator

	raster  *fynecanvas.Raster
	content *pointerContent
	scroll  *container.Scroll
	imgSize fyne.Size

	onClick func(p geometry.Point2D)
	onMove  func(p geometry.Point2D)
	onLeave func()
}

// pointerContent wraps the raster to receive taps and hover events.
type pointerContent struct {
	widget.BaseWidget
	canvas *AnnotationCanvas
}

var (
	_ fyne.Tappable     = (*pointerContent)(nil)
	_ desktop.Hoverable = (*pointerContent)(nil)
)

func newPointerContent(ac *AnnotationCanvas) *pointerContent {
	pc := &pointerContent{canvas: ac}
	pc.ExtendBaseWidget(pc)
	return pc
}

func (pc *pointerContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.canvas.raster)
}

func (pc *pointerContent) MinSize() fyne.Size {
	return pc.canvas.imgSize
}

// Tapped handles left-click events.
func (pc *pointerContent) Tapped(ev *fyne.PointEvent) {
	if pc.canvas.onClick == nil {
		return
	}
	if p, ok := pc.local(ev.Position); ok {
		pc.canvas.onClick(p)
	}
}

func (pc *pointerContent) MouseIn(ev *desktop.MouseEvent) {
	pc.MouseMoved(ev)
}

func (pc *pointerContent) MouseMoved(ev *desktop.MouseEvent) {
	if pc.canvas.onMove == nil {
		return
	}
	if p, ok := pc.local(ev.Position); ok {
		pc.canvas.onMove(p)
	}
}

func (pc *pointerContent) MouseOut() {
	if pc.canvas.onLeave != nil {
		pc.canvas.onLeave()
	}
}

// local converts a widget-relative position to canvas-local image
// coordinates, rejecting events outside the image.
func (pc *pointerContent) local(pos fyne.Position) (geometry.Point2D, bool) {
	size := pc.canvas.imgSize
	if pos.X < 0 || pos.Y < 0 || pos.X > size.Width || pos.Y > size.Height {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)}, true
}

// New creates an empty canvas drawing with theme.
func New(theme render.Theme) *AnnotationCanvas {
	ac := &AnnotationCanvas{imgSize: defaultSize}

	ac.surface = render.NewRaster(int(defaultSize.Width), int(defaultSize.Height), nil)
	ac.orch = render.NewOrchestrator(ac.surface, theme)
	ac.surface.Clear()

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.raster.SetMinSize(ac.imgSize)

	ac.content = newPointerContent(ac)
	ac.scroll = container.NewScroll(ac.content)
	ac.scroll.Direction = container.ScrollBoth

	ac.ExtendBaseWidget(ac)
	return ac
}

// OnClick sets the callback for clicks inside the image.
func (ac *AnnotationCanvas) OnClick(callback func(p geometry.Point2D)) {
	ac.onClick = callback
}

// OnPointerMove sets the callback for pointer moves inside the image.
func (ac *AnnotationCanvas) OnPointerMove(callback func(p geometry.Point2D)) {
	ac.onMove = callback
}

// OnPointerLeave sets the callback for the pointer leaving the canvas.
func (ac *AnnotationCanvas) OnPointerLeave(callback func()) {
	ac.onLeave = callback
}

// SetBackground replaces the background image and resizes the canvas to it.
// A nil image restores the blank default canvas.
func (ac *AnnotationCanvas) SetBackground(img image.Image) {
	w, h := int(defaultSize.Width), int(defaultSize.Height)
	if img != nil {
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}
	ac.surface.SetBackground(img)
	ac.surface.Resize(w, h)
	ac.imgSize = fyne.NewSize(float32(w), float32(h))

	ac.raster.SetMinSize(ac.imgSize)
	ac.raster.Resize(ac.imgSize)
	ac.content.Resize(ac.imgSize)
	ac.content.Refresh()
	ac.scroll.Refresh()
}

// SetTheme changes the overlay styles used by the next Render.
func (ac *AnnotationCanvas) SetTheme(t render.Theme) {
	ac.orch.Theme = t
}

// Theme returns the overlay styles.
func (ac *AnnotationCanvas) Theme() render.Theme {
	return ac.orch.Theme
}

// Render redraws the overlay and refreshes the display.
func (ac *AnnotationCanvas) Render(list []annotation.Annotation, draft *annotation.Draft, hoveredID string) {
	ac.orch.Render(list, draft, hoveredID)
	ac.raster.Refresh()
}

// Image returns the last rendered frame.
func (ac *AnnotationCanvas) Image() *image.RGBA {
	return ac.surface.Image()
}

func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	return ac.surface.Image()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.scroll)
}
