// Command sessionmigrate converts saved annotation sessions, including the
// older flat record layouts, to the current document format.
//
// Usage: sessionmigrate -in <session.json> [-out <file>] [-store <dir> -key <name>]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shape-annotator/internal/project"
)

func main() {
	inPath := flag.String("in", "", "Session file to convert")
	outPath := flag.String("out", "", "Write the converted session here (default: stdout)")
	storeDir := flag.String("store", "", "Also save into this session store directory")
	key := flag.String("key", "", "Key within -store (default: input file name)")
	quiet := flag.Bool("q", false, "Only report errors")
	flag.Parse()

	if *inPath == "" {
		fmt.Println("Usage: sessionmigrate -in <session.json> [-out <file>] [-store <dir> -key <name>]")
		os.Exit(1)
	}

	doc, err := migrate(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		report(os.Stderr, *doc)
	}

	if *outPath != "" {
		if *outPath != *inPath {
			doc.SetBackground(*outPath, doc.BackgroundPath(*inPath))
		}
		if err := doc.SaveFile(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
			os.Exit(1)
		}
	} else {
		s, err := project.Encode(*doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(s)
	}

	if *storeDir != "" {
		storeKey := *key
		if storeKey == "" {
			storeKey = filepath.Base(*inPath)
		}
		kv, err := project.NewDirKV(*storeDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
			os.Exit(1)
		}
		if err := project.Save(kv, storeKey, *doc); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save %q: %v\n", storeKey, err)
			os.Exit(1)
		}
	}
}

// migrate loads the session at path and assigns ids to records that had
// none, so every written form carries stable unique ids.
func migrate(path string) (*project.Document, error) {
	doc, err := project.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// report prints a summary table of doc to w.
func report(w io.Writer, doc project.Document) {
	fmt.Fprintf(w, "Loaded %d annotation(s)", len(doc.Annotations))
	if doc.Dropped > 0 {
		fmt.Fprintf(w, ", dropped %d incomplete record(s)", doc.Dropped)
	}
	fmt.Fprintln(w)
	if doc.Background != "" {
		fmt.Fprintf(w, "Background: %s\n", doc.Background)
	}
	if len(doc.Annotations) == 0 {
		return
	}

	fmt.Fprintf(w, "%-38s %-10s %9s %9s %9s %9s  %s\n",
		"ID", "Kind", "X1", "Y1", "X2", "Y2", "Label")
	for _, a := range doc.Annotations {
		fmt.Fprintf(w, "%-38s %-10s %9.1f %9.1f %9.1f %9.1f  %s\n",
			a.ID, a.Kind, a.Anchor.X, a.Anchor.Y, a.Extent.X, a.Extent.Y, a.Label)
	}
}
