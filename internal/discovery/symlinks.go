package discovery

import (
	"fmt"
	"strings"
)

// SymlinkPolicy controls which symbolic links the walker follows.
// Entries that are not symlinks are always considered.
type SymlinkPolicy int

const (
	// SymlinksNone skips every symlink.
	SymlinksNone SymlinkPolicy = iota
	// SymlinksFiles includes symlinks to files.
	SymlinksFiles
	// SymlinksDirs traverses symlinks to directories.
	SymlinksDirs
	// SymlinksAll follows both kinds.
	SymlinksAll
)

var symlinkPolicyNames = map[SymlinkPolicy]string{
	SymlinksNone:  "none",
	SymlinksFiles: "files",
	SymlinksDirs:  "dirs",
	SymlinksAll:   "all",
}

func (p SymlinkPolicy) String() string {
	if s, ok := symlinkPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("SymlinkPolicy(%d)", int(p))
}

// ParseSymlinkPolicy accepts none, files, dirs or all.
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for p, name := range symlinkPolicyNames {
		if name == v {
			return p, nil
		}
	}
	return SymlinksNone, fmt.Errorf("%w: unknown symlink policy %q (want none, files, dirs or all)", ErrValidation, s)
}

func (p SymlinkPolicy) followFiles() bool { return p == SymlinksFiles || p == SymlinksAll }
func (p SymlinkPolicy) followDirs() bool  { return p == SymlinksDirs || p == SymlinksAll }
