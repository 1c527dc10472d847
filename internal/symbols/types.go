// Package symbols extracts the structure of Go source files (imports,
// declarations, signatures) and renders it back as a compact stub.
package symbols

import (
	"fmt"
	"strings"
)

// ResolutionLevel selects how much detail is extracted. Each level is a
// superset of the one before it.
type ResolutionLevel int

const (
	// Hierarchy keeps the module name and doc comment only.
	Hierarchy ResolutionLevel = iota
	// Modules adds imports and declaration names.
	Modules
	// Signatures adds signatures, parameters, fields and methods.
	Signatures
)

func (l ResolutionLevel) String() string {
	switch l {
	case Hierarchy:
		return "hierarchy"
	case Modules:
		return "modules"
	case Signatures:
		return "signatures"
	}
	return fmt.Sprintf("ResolutionLevel(%d)", int(l))
}

// ParseResolution accepts hierarchy, modules or signatures.
func ParseResolution(s string) (ResolutionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hierarchy":
		return Hierarchy, nil
	case "modules":
		return Modules, nil
	case "signatures":
		return Signatures, nil
	}
	return Hierarchy, fmt.Errorf("unknown resolution level %q", s)
}

// ModuleInfo is the extracted structure of one source file.
type ModuleInfo struct {
	Name      string          `json:"name"`
	Package   string          `json:"package"`
	Path      string          `json:"path"`
	Doc       string          `json:"doc,omitempty"`
	Imports   []string        `json:"imports,omitempty"`
	Constants []AttributeInfo `json:"constants,omitempty"`
	Functions []FunctionInfo  `json:"functions,omitempty"`
	Classes   []ClassInfo     `json:"classes,omitempty"`
}

// ParameterInfo is one function parameter.
type ParameterInfo struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
	Variadic   bool   `json:"variadic,omitempty"`
}

// FunctionInfo describes a function or method. Go has neither async
// functions nor decorators, so Async is always false and Decorators empty.
type FunctionInfo struct {
	Name       string          `json:"name"`
	Line       int             `json:"line"`
	Doc        string          `json:"doc,omitempty"`
	Receiver   string          `json:"receiver,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	Returns    string          `json:"returns,omitempty"`
	Async      bool            `json:"async"`
	Decorators []string        `json:"decorators,omitempty"`
	Parameters []ParameterInfo `json:"parameters,omitempty"`
}

// ClassInfo describes a named type. Bases are embedded types and Kind is
// "struct", "interface" or the underlying type expression.
type ClassInfo struct {
	Name        string          `json:"name"`
	Line        int             `json:"line"`
	Doc         string          `json:"doc,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	TypeParams  string          `json:"type_params,omitempty"`
	Bases       []string        `json:"bases,omitempty"`
	Decorators  []string        `json:"decorators,omitempty"`
	IsDataclass bool            `json:"is_dataclass"`
	Attributes  []AttributeInfo `json:"attributes,omitempty"`
	Methods     []FunctionInfo  `json:"methods,omitempty"`
}

// AttributeInfo is a package-level const or var, or a struct field.
type AttributeInfo struct {
	Name       string `json:"name"`
	Line       int    `json:"line"`
	Const      bool   `json:"const,omitempty"`
	Annotation string `json:"annotation,omitempty"`
	Default    string `json:"default,omitempty"`
}
