package pack

import (
	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/tokens"
)

// Manifest is the result of a packing run: every selected file tagged with
// its representation, plus aggregate counts.
type Manifest struct {
	Root     string                `json:"root"`
	Mode     Mode                  `json:"mode"`
	Dirs     []string              `json:"dirs"`
	Entries  []Entry               `json:"entries"`
	Overview Overview              `json:"overview"`
	Tokens   *tokens.Counts        `json:"tokens,omitempty"`
	Trace    []discovery.TraceItem `json:"trace,omitempty"`
	Errors   []EntryError          `json:"errors,omitempty"`
}

// Entry is one selected file.
type Entry struct {
	Path           string                        `json:"path"`
	Representation representation.Representation `json:"representation"`
	Size           int64                         `json:"size"`
	Binary         bool                          `json:"binary,omitempty"`
	Language       string                        `json:"language,omitempty"`
	Transform      string                        `json:"transform,omitempty"`
	Content        string                        `json:"content,omitempty"`
	Summary        any                           `json:"summary,omitempty"`
	Tokens         int                           `json:"tokens,omitempty"`
}

// EntryError records a file that could not be rendered as requested.
type EntryError struct {
	Path      string                        `json:"path"`
	Requested representation.Representation `json:"requested"`
	Error     string                        `json:"error"`
}

// Overview is a compact count of the selected files.
type Overview struct {
	Files           int                                   `json:"files"`
	GoFiles         int                                   `json:"go_files"`
	BinaryFiles     int                                   `json:"binary_files"`
	TotalBytes      int64                                 `json:"total_bytes"`
	Representations map[representation.Representation]int `json:"representations"`
}

func buildOverview(entries []Entry) Overview {
	ov := Overview{Representations: map[representation.Representation]int{}}
	for _, e := range entries {
		ov.Files++
		ov.TotalBytes += e.Size
		if e.Binary {
			ov.BinaryFiles++
		}
		if isGoFile(e.Path) {
			ov.GoFiles++
		}
		ov.Representations[e.Representation]++
	}
	return ov
}
