package main

import (
	"errors"
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/glob"
	"github.com/BradSegal/anatomize/internal/ignore"
	"github.com/BradSegal/anatomize/internal/pack"
)

// errSelectionAborted is returned when the user leaves the picker.
var errSelectionAborted = errors.New("interactive selection aborted")

// runInteractiveFinder lists what the ignore rules leave under opts.Root and
// lets the user pick files and directories. The picks come back as anchored,
// escaped include patterns.
func runInteractiveFinder(opts pack.Options) ([]string, error) {
	excluder, err := ignore.Build(opts.Root, ignore.BuildOptions{
		CLI:             opts.Ignore,
		Files:           opts.IgnoreFiles,
		RespectStandard: opts.RespectStandardIgnores,
	})
	if err != nil {
		return nil, err
	}
	paths, err := discovery.Discover(opts.Root, discovery.Options{
		Excluder:      excluder,
		Symlinks:      opts.Symlinks,
		NestedIgnores: opts.NestedIgnores,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for files/directories: %w", err)
	}
	candidates := paths[1:]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no files or directories found to select from")
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string { return displayPath(candidates[i]) },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select files or directories to pack. Press Tab to multi-select, Enter to confirm."
			}
			p := candidates[i]
			if p.IsDir {
				return fmt.Sprintf("Path: %s\nType: Directory", p.RelativePath)
			}
			kind := "File"
			if p.IsBinary {
				kind = "Binary file"
			}
			return fmt.Sprintf("Path: %s\nType: %s\nSize: %d bytes", p.RelativePath, kind, p.Size)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, errSelectionAborted
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	selected := make([]discovery.Path, len(idx))
	for i, j := range idx {
		selected[i] = candidates[j]
	}
	return selectionPatterns(selected), nil
}

func displayPath(p discovery.Path) string {
	if p.IsDir {
		return p.RelativePath + "/"
	}
	return p.RelativePath
}

// selectionPatterns turns picked paths into include patterns that match
// exactly those paths; a directory covers everything beneath it.
func selectionPatterns(selected []discovery.Path) []string {
	out := make([]string, 0, len(selected))
	for _, p := range selected {
		out = append(out, "/"+glob.Escape(displayPath(p)))
	}
	return out
}
