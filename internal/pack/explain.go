package pack

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BradSegal/anatomize/internal/glob"
	"github.com/BradSegal/anatomize/internal/ignore"
	"github.com/BradSegal/anatomize/internal/representation"
)

// Explanation is the verdict for one path: whether ignore rules exclude it,
// whether the include allowlist keeps it, and which representation applies.
type Explanation struct {
	Path               string                        `json:"path"`
	IsDir              bool                          `json:"is_dir"`
	Excluded           bool                          `json:"excluded"`
	MatchedPattern     string                        `json:"matched_pattern,omitempty"`
	MatchedSource      string                        `json:"matched_source,omitempty"`
	MatchedPath        string                        `json:"matched_path,omitempty"`
	Included           bool                          `json:"included"`
	Representation     representation.Representation `json:"representation,omitempty"`
	RepresentationRule string                        `json:"representation_rule,omitempty"`
}

// Explain evaluates relPaths against the rules opts would use, without
// walking the tree. A path is a directory when it exists as one under the
// root or ends with "/". Ancestors are checked first, the way discovery
// prunes them; MatchedPath names the ancestor when one carried the exclusion.
func Explain(opts Options, relPaths []string) ([]Explanation, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	excluder, err := ignore.Build(opts.Root, ignore.BuildOptions{
		CLI:             opts.Ignore,
		Files:           opts.IgnoreFiles,
		RespectStandard: opts.RespectStandardIgnores,
	})
	if err != nil {
		return nil, err
	}
	policy, err := buildPolicy(opts)
	if err != nil {
		return nil, err
	}
	include := glob.NewMatcher(opts.Include)

	out := make([]Explanation, 0, len(relPaths))
	for _, raw := range relPaths {
		rel := strings.Trim(filepath.ToSlash(raw), "/")
		isDir := strings.HasSuffix(filepath.ToSlash(raw), "/")
		if info, err := os.Stat(filepath.Join(opts.Root, filepath.FromSlash(rel))); err == nil {
			isDir = info.IsDir()
		}

		ex := Explanation{Path: rel, IsDir: isDir}
		if err := explainExclusion(&ex, opts, excluder); err != nil {
			return nil, err
		}
		ex.Included = !ex.Excluded && (isDir || include.Empty() || include.MatchesAny(rel, false))
		if !isDir {
			if opts.Mode == ModeBundle {
				ex.Representation = representation.Content
			} else {
				rep, rule := policy.Explain(rel, false, opts.Default)
				ex.Representation = rep
				if rule != nil {
					ex.RepresentationRule = rule.Raw
				}
			}
		}
		out = append(out, ex)
	}
	return out, nil
}

// explainExclusion replays the walker's pruning along ex.Path: each prefix is
// checked against the excluder and then against nested ignore files of the
// directories above it, deepest first.
func explainExclusion(ex *Explanation, opts Options, excluder *ignore.Excluder) error {
	if ex.Path == "" {
		return nil
	}
	parts := glob.SplitPath(ex.Path)
	var nested []*ignore.Nested
	for i := range parts {
		cur := strings.Join(parts[:i+1], "/")
		last := i == len(parts)-1
		curDir := !last || ex.IsDir

		if excluded, m := excluder.Explain(cur, curDir); excluded {
			ex.Excluded = true
			ex.MatchedPattern = m.Display()
			ex.MatchedSource = m.Source
		}
		for j := len(nested) - 1; !ex.Excluded && j >= 0; j-- {
			if nested[j].Match(cur, curDir) {
				ex.Excluded = true
				ex.MatchedSource = nested[j].Source()
			}
		}
		if ex.Excluded {
			if !last {
				ex.MatchedPath = cur
			}
			return nil
		}

		if opts.NestedIgnores && !last {
			n, err := ignore.LoadNested(opts.Root, cur)
			if err != nil {
				return err
			}
			if n != nil {
				nested = append(nested, n)
			}
		}
	}
	return nil
}
