// Package ocr suggests annotation labels by reading the text inside the
// annotated region of the background image.
package ocr

import (
	"errors"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/ocr/prep"
)

// LabelChars is the restricted character set for part-number style labels.
const LabelChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-/."

// ErrOutsideImage is returned when an annotation does not overlap the image.
var ErrOutsideImage = errors.New("annotation outside image")

const minTextHeight = 150

// Engine recognizes text with Tesseract. It is not safe for concurrent use.
type Engine struct {
	client     *gosseract.Client
	restricted bool
	padding    int
}

// NewEngine creates an engine for the given Tesseract language, e.g. "eng".
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Labels are identifiers, not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client, padding: 2}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetRestricted limits recognition to LabelChars and upper-cases results.
func (e *Engine) SetRestricted(enabled bool) {
	e.restricted = enabled
}

// SetPadding grows the recognized region by px pixels on each side.
func (e *Engine) SetPadding(px int) {
	e.padding = px
}

// Suggest reads the text inside a on img.
func (e *Engine) Suggest(img image.Image, a annotation.Annotation) (string, error) {
	r, ok := prep.Region(a, img.Bounds(), e.padding)
	if !ok {
		return "", ErrOutsideImage
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return "", fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	return e.RecognizeRegion(mat, r.Sub(img.Bounds().Min))
}

// RecognizeRegion performs OCR on a region of an image.
func (e *Engine) RecognizeRegion(img gocv.Mat, r image.Rectangle) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}
	r = r.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if r.Empty() {
		return "", fmt.Errorf("invalid region bounds")
	}

	region := img.Region(r)
	defer region.Close()

	processed := preprocess(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// PSM 6: a single uniform block of text
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}

	whitelist := ""
	if e.restricted {
		whitelist = LabelChars
	}
	if err := e.client.SetWhitelist(whitelist); err != nil && e.restricted {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return prep.CleanText(text, e.restricted), nil
}

// preprocess upscales, equalizes and binarizes a region so Tesseract sees
// dark text on a light background.
func preprocess(region gocv.Mat) gocv.Mat {
	scaled := gocv.NewMat()
	if f := prep.UpscaleFactor(region.Cols(), region.Rows(), minTextHeight); f > 1 {
		gocv.Resize(region, &scaled, image.Point{}, f, f, gocv.InterpolationCubic)
	} else {
		region.CopyTo(&scaled)
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	if prep.NeedsInvert(gocv.CountNonZero(binary), binary.Rows()*binary.Cols()) {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()

	return result
}
