package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shape-annotator/internal/annotation"
	"shape-annotator/internal/project"
)

func TestReport(t *testing.T) {
	doc, err := project.Decode(`[
		{"id":"a","type":0,"firstClickX":1,"firstClickY":2,"seconcClickX":30,"seconcClickY":40,"label":"U1"},
		{"id":"b","type":1,"firstClickX":5,"firstClickY":5}
	]`)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	report(&buf, doc)
	out := buf.String()

	for _, want := range []string{
		"Loaded 1 annotation(s), dropped 1 incomplete record(s)",
		"rectangle",
		"U1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, *project.New())
	if got := buf.String(); got != "Loaded 0 annotation(s)\n" {
		t.Errorf("report = %q", got)
	}
}

func TestMigrateAssignsIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `[
		{"type":0,"firstClickX":1,"firstClickY":2,"endX":30,"endY":40},
		{"type":"circle","startX":50,"startY":50,"seconcClickX":60,"seconcClickY":50},
		{"id":"kept","type":1,"firstClickX":5,"firstClickY":5,"secondClickX":9,"secondClickY":5}
	]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := migrate(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := project.Encode(*doc)
	if err != nil {
		t.Fatal(err)
	}
	out, err := project.Decode(s)
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Annotations) != 3 {
		t.Fatalf("got %d annotations, want 3", len(out.Annotations))
	}
	seen := map[string]bool{}
	for i, a := range out.Annotations {
		if a.ID == "" {
			t.Errorf("annotation %d has an empty id", i)
		}
		if seen[a.ID] {
			t.Errorf("annotation %d repeats id %q", i, a.ID)
		}
		seen[a.ID] = true
	}
	if out.Annotations[2].ID != "kept" {
		t.Errorf("existing id = %q, want kept", out.Annotations[2].ID)
	}
}

func TestMigrateRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.json")
	dup := `[
		{"id":"x","type":0,"firstClickX":1,"firstClickY":1,"secondClickX":5,"secondClickY":5},
		{"id":"x","type":0,"firstClickX":2,"firstClickY":2,"secondClickX":6,"secondClickY":6}
	]`
	if err := os.WriteFile(path, []byte(dup), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := migrate(path); !errors.Is(err, annotation.ErrDuplicateID) {
		t.Errorf("migrate: err = %v, want ErrDuplicateID", err)
	}
}
