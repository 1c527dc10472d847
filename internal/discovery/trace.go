package discovery

// Decisions recorded in trace items.
const (
	DecisionIncluded = "included"
	DecisionExcluded = "excluded"
)

// Reasons recorded for exclusions.
const (
	ReasonIgnore       = "ignore"
	ReasonInclude      = "include"
	ReasonNestedIgnore = "nested_ignore"
)

// TraceItem records why an entry was excluded, or that a file was included.
// Included directories are not traced.
type TraceItem struct {
	Path           string `json:"path"`
	IsDir          bool   `json:"is_dir"`
	Decision       string `json:"decision"`
	Reason         string `json:"reason,omitempty"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
	MatchedSource  string `json:"matched_source,omitempty"`
}
