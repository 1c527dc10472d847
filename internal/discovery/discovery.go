// Package discovery walks a repository deterministically and reports the
// files and directories selected by ignore rules, an include allowlist, a
// symlink policy and a size limit.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/glob"
	"github.com/BradSegal/anatomize/internal/ignore"
)

// Path is one discovered entry. Directories have Size 0 and are never binary.
type Path struct {
	AbsolutePath string `json:"absolute_path"`
	RelativePath string `json:"relative_path"`
	IsDir        bool   `json:"is_dir"`
	IsSymlink    bool   `json:"is_symlink"`
	Size         int64  `json:"size"`
	IsBinary     bool   `json:"is_binary"`
}

// Options configures a walk.
type Options struct {
	// Excluder decides ignore exclusions. Nil excludes nothing.
	Excluder *ignore.Excluder
	// Include, when non-empty, keeps only files matching at least one pattern.
	// Directories are always traversed.
	Include []string
	// Symlinks selects which symbolic links are followed.
	Symlinks SymlinkPolicy
	// MaxFileBytes aborts the walk when any file is strictly larger. Zero
	// disables the limit.
	MaxFileBytes int64
	// NestedIgnores consults .gitignore files in directories below the root.
	NestedIgnores bool
	// Trace receives one item per decision, in walk order, when non-nil.
	Trace *[]TraceItem
	// Logger receives debug events. Nil discards them.
	Logger *zap.Logger
}

type walker struct {
	root    string
	opts    Options
	include *glob.Matcher
	log     *zap.Logger
	nested  []*ignore.Nested
	active  map[string]bool
	results []Path
}

// Discover walks root depth-first, visiting entries of each directory in
// ascending name order and pruning excluded directories before recursing.
// The result starts with the root (relative path ".") followed by all
// directories and then all files, each group sorted by relative path.
func Discover(root string, opts Options) ([]Path, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: root %s: %w", ErrValidation, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: root must be an existing directory: %s", ErrValidation, abs)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: root %s: %w", ErrValidation, abs, err)
	}
	lst, err := os.Lstat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: root %s: %w", ErrValidation, abs, err)
	}

	w := &walker{
		root:    resolved,
		opts:    opts,
		include: glob.NewMatcher(opts.Include),
		log:     opts.Logger,
		active:  map[string]bool{resolved: true},
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}

	w.results = append(w.results, Path{
		AbsolutePath: resolved,
		RelativePath: ".",
		IsDir:        true,
		IsSymlink:    lst.Mode()&fs.ModeSymlink != 0,
	})
	if err := w.walkDir(resolved, ""); err != nil {
		return nil, err
	}

	sortPaths(w.results)
	w.log.Debug("discovery finished",
		zap.String("root", resolved),
		zap.Int("entries", len(w.results)),
	)
	return w.results, nil
}

func (w *walker) walkDir(absDir, relDir string) error {
	if w.opts.NestedIgnores && relDir != "" {
		n, err := ignore.LoadNested(w.root, relDir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if n != nil {
			w.nested = append(w.nested, n)
			defer func() { w.nested = w.nested[:len(w.nested)-1] }()
		}
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("%w: failed to list %s: %w", ErrValidation, absDir, err)
	}
	// os.ReadDir already sorts by name; the walk relies on it.

	for _, entry := range entries {
		name := entry.Name()
		entryAbs := filepath.Join(absDir, name)
		rel := name
		if relDir != "" {
			rel = path.Join(relDir, name)
		}

		isSymlink := entry.Type()&fs.ModeSymlink != 0
		isDir := entry.IsDir()
		target := entryAbs
		if isSymlink {
			info, err := os.Stat(entryAbs)
			if err != nil {
				w.log.Debug("skipping broken symlink", zap.String("path", rel), zap.Error(err))
				continue
			}
			isDir = info.IsDir()
			if isDir && !w.opts.Symlinks.followDirs() {
				continue
			}
			if !isDir && !w.opts.Symlinks.followFiles() {
				continue
			}
			if target, err = filepath.EvalSymlinks(entryAbs); err != nil {
				w.log.Debug("skipping unresolvable symlink", zap.String("path", rel), zap.Error(err))
				continue
			}
		}

		if excluded, m := w.opts.Excluder.Explain(rel, isDir); excluded {
			w.trace(TraceItem{
				Path:           rel,
				IsDir:          isDir,
				Decision:       DecisionExcluded,
				Reason:         ReasonIgnore,
				MatchedPattern: m.Display(),
				MatchedSource:  m.Source,
			})
			continue
		}
		if n := w.nestedMatch(rel, isDir); n != nil {
			w.trace(TraceItem{
				Path:          rel,
				IsDir:         isDir,
				Decision:      DecisionExcluded,
				Reason:        ReasonNestedIgnore,
				MatchedSource: n.Source(),
			})
			continue
		}

		if isDir {
			if w.active[target] {
				w.log.Debug("skipping directory cycle", zap.String("path", rel), zap.String("target", target))
				continue
			}
			w.results = append(w.results, Path{
				AbsolutePath: target,
				RelativePath: rel,
				IsDir:        true,
				IsSymlink:    isSymlink,
			})
			w.active[target] = true
			err := w.walkDir(target, rel)
			delete(w.active, target)
			if err != nil {
				return err
			}
			continue
		}

		if !w.include.Empty() && !w.include.MatchesAny(rel, false) {
			w.trace(TraceItem{
				Path:     rel,
				Decision: DecisionExcluded,
				Reason:   ReasonInclude,
			})
			continue
		}

		info, err := os.Stat(entryAbs)
		if err != nil {
			return fmt.Errorf("%w: failed to stat %s: %w", ErrValidation, rel, err)
		}
		size := info.Size()
		if w.opts.MaxFileBytes > 0 && size > w.opts.MaxFileBytes {
			return fmt.Errorf("%w: file exceeds max size (%d bytes): %s (%d bytes)",
				ErrValidation, w.opts.MaxFileBytes, rel, size)
		}

		w.results = append(w.results, Path{
			AbsolutePath: target,
			RelativePath: rel,
			IsSymlink:    isSymlink,
			Size:         size,
			IsBinary:     IsBinaryFile(entryAbs),
		})
		w.trace(TraceItem{Path: rel, Decision: DecisionIncluded})
	}
	return nil
}

func (w *walker) nestedMatch(rel string, isDir bool) *ignore.Nested {
	for i := len(w.nested) - 1; i >= 0; i-- {
		if w.nested[i].Match(rel, isDir) {
			return w.nested[i]
		}
	}
	return nil
}

func (w *walker) trace(item TraceItem) {
	if w.opts.Trace != nil {
		*w.opts.Trace = append(*w.opts.Trace, item)
	}
}

// sortPaths orders the root first, then directories, then files, each group
// by relative path.
func sortPaths(paths []Path) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := paths[i], paths[j]
		if ra, rb := a.RelativePath == ".", b.RelativePath == "."; ra != rb {
			return ra
		}
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.RelativePath < b.RelativePath
	})
}
