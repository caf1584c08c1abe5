package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shape-annotator/internal/annotation"
	"shape-annotator/pkg/geometry"
)

// ErrUnsupportedVersion is returned for documents newer than CurrentVersion.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// Encode serializes doc into the canonical compact form.
func Encode(doc Document) (string, error) {
	doc.Version = CurrentVersion
	if doc.Annotations == nil {
		doc.Annotations = []annotation.Annotation{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored session. Besides the canonical document it accepts
// a bare array of annotations and the older flat record layouts
// (firstClickX/secondClickX, the misspelled seconcClickX, startX/endX and a
// numeric type). Records left without both click points are dropped.
func Decode(s string) (Document, error) {
	data := bytes.TrimSpace([]byte(s))
	if len(data) == 0 {
		return *New(), nil
	}

	var envelope struct {
		Version     int               `json:"version"`
		Modified    time.Time         `json:"modified"`
		Background  string            `json:"background"`
		Annotations []json.RawMessage `json:"annotations"`
	}
	doc := Document{Version: CurrentVersion}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &envelope.Annotations); err != nil {
			return Document{}, fmt.Errorf("decode annotation list: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &envelope); err != nil {
			return Document{}, fmt.Errorf("decode document: %w", err)
		}
		if envelope.Version > CurrentVersion {
			return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, envelope.Version)
		}
		doc.Modified = envelope.Modified
		doc.Background = envelope.Background
	}

	doc.Annotations = make([]annotation.Annotation, 0, len(envelope.Annotations))
	for i, raw := range envelope.Annotations {
		a, err := decodeRecord(raw)
		if err != nil {
			return Document{}, fmt.Errorf("annotation %d: %w", i, err)
		}
		if !a.Complete() {
			logger().Warn("dropping annotation without both click points", "index", i, "id", a.ID)
			doc.Dropped++
			continue
		}
		doc.Annotations = append(doc.Annotations, a)
	}
	return doc, nil
}

// record is the union of every layout an annotation has been stored in.
type record struct {
	ID     string            `json:"id"`
	Kind   *annotation.Kind  `json:"kind"`
	Type   json.RawMessage   `json:"type"`
	Anchor *geometry.Point2D `json:"anchor"`
	Extent *geometry.Point2D `json:"extent"`
	Label  string            `json:"label"`

	FirstClickX  *float64 `json:"firstClickX"`
	FirstClickY  *float64 `json:"firstClickY"`
	SecondClickX *float64 `json:"secondClickX"`
	SecondClickY *float64 `json:"secondClickY"`
	SeconcClickX *float64 `json:"seconcClickX"`
	SeconcClickY *float64 `json:"seconcClickY"`
	StartX       *float64 `json:"startX"`
	StartY       *float64 `json:"startY"`
	EndX         *float64 `json:"endX"`
	EndY         *float64 `json:"endY"`
}

func decodeRecord(raw json.RawMessage) (annotation.Annotation, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return annotation.Annotation{}, err
	}

	a := annotation.Annotation{
		ID:     r.ID,
		Label:  r.Label,
		Anchor: r.Anchor,
		Extent: r.Extent,
	}

	switch {
	case r.Kind != nil:
		a.Kind = *r.Kind
	case len(r.Type) > 0 && string(r.Type) != "null":
		k, err := legacyKind(r.Type)
		if err != nil {
			return annotation.Annotation{}, err
		}
		a.Kind = k
	default:
		a.Kind = annotation.KindRectangle
	}

	if a.Anchor == nil {
		a.Anchor = firstPoint(
			legacyPoint(r.FirstClickX, r.FirstClickY),
			legacyPoint(r.StartX, r.StartY),
		)
	}
	if a.Extent == nil {
		a.Extent = firstPoint(
			legacyPoint(r.SecondClickX, r.SecondClickY),
			legacyPoint(r.SeconcClickX, r.SeconcClickY),
			legacyPoint(r.EndX, r.EndY),
		)
	}
	return a, nil
}

// legacyKind reads the old numeric type (0 rectangle, 1 circle), also
// tolerating its string spellings.
func legacyKind(raw json.RawMessage) (annotation.Kind, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 0:
			return annotation.KindRectangle, nil
		case 1:
			return annotation.KindCircle, nil
		}
		return 0, fmt.Errorf("unknown shape type %d", n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("shape type %s: %w", raw, err)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return legacyKind(json.RawMessage(strconv.Itoa(n)))
	}
	var k annotation.Kind
	if err := k.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return k, nil
}

// legacyPoint mirrors the old truthiness checks: an absent, null or zero
// coordinate means the click never happened.
func legacyPoint(x, y *float64) *geometry.Point2D {
	if x == nil || y == nil || *x == 0 || *y == 0 {
		return nil
	}
	return &geometry.Point2D{X: *x, Y: *y}
}

func firstPoint(pts ...*geometry.Point2D) *geometry.Point2D {
	for _, p := range pts {
		if p != nil {
			return p
		}
	}
	return nil
}
