// Command labelsuggest runs OCR over every annotation in a saved session and
// prints the text found inside each shape.
//
// Usage: labelsuggest [options] <session.json> [options]
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"shape-annotator/internal/annotation"
	bgimage "shape-annotator/internal/image"
	"shape-annotator/internal/ocr"
	"shape-annotator/internal/project"
)

var (
	flagImage      = flag.String("image", "", "Background image (default: the one recorded in the session)")
	flagLang       = flag.String("lang", "eng", "Tesseract language")
	flagRestricted = flag.Bool("restricted", false, "Restrict recognition to label characters")
	flagPadding    = flag.Int("pad", 4, "Padding around each shape in pixels")
	flagParallel   = flag.Int("j", 2, "Number of parallel workers")
	flagFill       = flag.Bool("fill", false, "Write suggestions into unlabeled annotations and save the session")
	flagVerbose    = flag.Bool("v", false, "Verbose output")
)

type suggestion struct {
	index    int
	text     string
	err      error
	duration time.Duration
}

func main() {
	args, err := parseArgs(flag.CommandLine, os.Args[1:])
	if err != nil || len(args) != 1 {
		fmt.Println("Usage: labelsuggest [options] <session.json> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	sessionPath := args[0]

	doc, err := project.LoadFile(sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
		os.Exit(1)
	}

	imagePath := *flagImage
	if imagePath == "" {
		imagePath = doc.BackgroundPath(sessionPath)
	}
	if imagePath == "" {
		fmt.Fprintln(os.Stderr, "Session has no background image; pass -image")
		os.Exit(1)
	}
	bg, err := bgimage.Load(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels, %d annotation(s)\n",
		bg.Format, bg.Width(), bg.Height(), len(doc.Annotations))

	results := suggestAll(bg, doc.Annotations, *flagParallel)

	filled := 0
	fmt.Printf("\n%-38s %-10s %-16s %-16s %8s\n", "ID", "Kind", "Label", "Suggestion", "Time")
	for _, r := range results {
		a := doc.Annotations[r.index]
		text := r.text
		if r.err != nil {
			text = "error: " + r.err.Error()
		}
		fmt.Printf("%-38s %-10s %-16s %-16s %8s\n",
			a.ID, a.Kind, a.Label, text, r.duration.Round(time.Millisecond))
		if *flagFill && r.err == nil && a.Label == "" && r.text != "" {
			doc.Annotations[r.index].Label = r.text
			filled++
		}
	}

	if *flagFill && filled > 0 {
		if err := doc.Normalize(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
			os.Exit(1)
		}
		if err := doc.SaveFile(sessionPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nFilled %d label(s) in %s\n", filled, sessionPath)
	}
}

// parseArgs parses fs from args, accepting flags both before and after the
// positional arguments, which it returns in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// suggestAll runs OCR for each annotation. Each worker owns its own engine
// since a Tesseract client is not safe for concurrent use.
func suggestAll(bg *bgimage.Background, list []annotation.Annotation, workers int) []suggestion {
	if workers < 1 {
		workers = 1
	}
	results := make([]suggestion, len(list))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine, err := ocr.NewEngine(*flagLang)
			if err != nil {
				for i := range jobs {
					results[i] = suggestion{index: i, err: err}
				}
				return
			}
			defer engine.Close()
			engine.SetRestricted(*flagRestricted)
			engine.SetPadding(*flagPadding)

			for i := range jobs {
				start := time.Now()
				text, err := engine.Suggest(bg.Image, list[i])
				results[i] = suggestion{index: i, text: text, err: err, duration: time.Since(start)}
				if *flagVerbose {
					fmt.Fprintf(os.Stderr, "  %s: %q (%v)\n", list[i].ID, text, err)
				}
			}
		}()
	}

	for i := range list {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
