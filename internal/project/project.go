// Package project provides session persistence: the saved document format,
// decoding of older annotation layouts and string-keyed stores.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shape-annotator/internal/annotation"
)

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

// Document is a saved annotation session.
type Document struct {
	Version     int                     `json:"version"`
	Modified    time.Time               `json:"modified,omitzero"`
	Background  string                  `json:"background,omitempty"` // relative to the document when saved to a file
	Annotations []annotation.Annotation `json:"annotations"`

	// Dropped counts records Decode skipped because a click point was missing.
	Dropped int `json:"-"`
}

// New creates an empty document.
func New() *Document {
	return &Document{
		Version:     CurrentVersion,
		Annotations: []annotation.Annotation{},
	}
}

// LoadFile reads a document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// SaveFile writes the document to path.
func (d *Document) SaveFile(path string) error {
	d.Version = CurrentVersion
	d.Modified = time.Now()
	if d.Annotations == nil {
		d.Annotations = []annotation.Annotation{}
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Normalize gives every annotation without an id a fresh one and rejects
// duplicate ids or unknown kinds. Decoded older layouts carry no ids, so
// documents are normalized before they are written back.
func (d *Document) Normalize() error {
	store := annotation.NewStore()
	if err := store.ReplaceAll(d.Annotations); err != nil {
		return err
	}
	d.Annotations = store.List()
	return nil
}

// SetBackground records imagePath relative to the document at docPath.
// An empty imagePath clears the background.
func (d *Document) SetBackground(docPath, imagePath string) {
	if imagePath == "" {
		d.Background = ""
		return
	}
	rel, err := filepath.Rel(filepath.Dir(docPath), imagePath)
	if err != nil {
		d.Background = imagePath
	} else {
		d.Background = rel
	}
}

// BackgroundPath returns the absolute background image path for a document
// stored at docPath.
func (d *Document) BackgroundPath(docPath string) string {
	if d.Background == "" {
		return ""
	}
	if filepath.IsAbs(d.Background) {
		return d.Background
	}
	return filepath.Join(filepath.Dir(docPath), d.Background)
}
