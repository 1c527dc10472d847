// Package language names the language of a file from its name, using a
// built-in table, an optional linguist-style languages.yml and chroma's
// lexer registry as a fallback.
package language

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"gopkg.in/yaml.v3"
)

// FileName is the optional language definition file.
const FileName = "languages.yml"

// Info holds the detection fields of one languages.yml entry.
type Info struct {
	Type       string   `yaml:"type"`
	Extensions []string `yaml:"extensions"`
	Filenames  []string `yaml:"filenames"`
}

// Map maps language names (e.g. "Go") to their details.
type Map map[string]Info

var builtinExtensions = map[string]string{
	".go":       "Go",
	".py":       "Python",
	".pyi":      "Python",
	".js":       "JavaScript",
	".mjs":      "JavaScript",
	".cjs":      "JavaScript",
	".jsx":      "JavaScript",
	".ts":       "TypeScript",
	".tsx":      "TSX",
	".rs":       "Rust",
	".java":     "Java",
	".kt":       "Kotlin",
	".c":        "C",
	".h":        "C",
	".cc":       "C++",
	".cpp":      "C++",
	".hpp":      "C++",
	".cs":       "C#",
	".rb":       "Ruby",
	".php":      "PHP",
	".swift":    "Swift",
	".sh":       "Shell",
	".bash":     "Shell",
	".sql":      "SQL",
	".proto":    "Protocol Buffer",
	".json":     "JSON",
	".yaml":     "YAML",
	".yml":      "YAML",
	".toml":     "TOML",
	".md":       "Markdown",
	".markdown": "Markdown",
	".html":     "HTML",
	".htm":      "HTML",
	".css":      "CSS",
	".xml":      "XML",
	".txt":      "Text",
}

var builtinFilenames = map[string]string{
	"Makefile":   "Makefile",
	"Dockerfile": "Dockerfile",
	"go.mod":     "Go Module",
	"go.sum":     "Go Checksums",
	"LICENSE":    "Text",
}

// Detector maps file names to language names.
type Detector struct {
	extensions map[string]string
	filenames  map[string]string
}

// New returns a detector with the built-in table only.
func New() *Detector {
	d := &Detector{
		extensions: make(map[string]string, len(builtinExtensions)),
		filenames:  make(map[string]string, len(builtinFilenames)),
	}
	for k, v := range builtinExtensions {
		d.extensions[k] = v
	}
	for k, v := range builtinFilenames {
		d.filenames[k] = v
	}
	return d
}

// Merge layers langs over the detector's table. When several languages claim
// the same extension or filename, the alphabetically first name wins.
func (d *Detector) Merge(langs Map) {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Strings(names)

	claimed := map[string]bool{}
	for _, name := range names {
		info := langs[name]
		for _, ext := range info.Extensions {
			ext = strings.ToLower(ext)
			if !claimed["e"+ext] {
				d.extensions[ext] = name
				claimed["e"+ext] = true
			}
		}
		for _, fname := range info.Filenames {
			if !claimed["f"+fname] {
				d.filenames[fname] = name
				claimed["f"+fname] = true
			}
		}
	}
}

// LoadFile parses a languages.yml file and merges it into a new detector.
func LoadFile(file string) (*Detector, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error reading language file %s: %w", file, err)
	}
	var langs Map
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return nil, fmt.Errorf("error parsing language file %s: %w", file, err)
	}
	d := New()
	d.Merge(langs)
	return d, nil
}

// Find returns the first languages.yml among dirs, or "" when none exists.
func Find(dirs ...string) string {
	for _, dir := range dirs {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// Detect names the language of relPath. Exact filenames take precedence over
// extensions; chroma's lexer registry is consulted last. The second result
// is false when nothing matched.
func (d *Detector) Detect(relPath string) (string, bool) {
	if d == nil {
		d = New()
	}
	base := path.Base(filepath.ToSlash(relPath))
	if lang, ok := d.filenames[base]; ok {
		return lang, true
	}
	if ext := strings.ToLower(path.Ext(base)); ext != "" {
		if lang, ok := d.extensions[ext]; ok {
			return lang, true
		}
	}
	if lexer := lexers.Match(base); lexer != nil {
		return lexer.Config().Name, true
	}
	return "", false
}
