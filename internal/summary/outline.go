package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// maxListElements is how many elements of each list an outline expands.
const maxListElements = 10

// JSON outlines a JSON document.
func JSON(text string, cfg Config) (*Summary, error) {
	var obj any
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	if err := dec.Decode(&obj); err != nil {
		return nil, &ParseError{Format: "JSON", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Format: "JSON", Err: fmt.Errorf("unexpected data after top-level value")}
	}
	return &Summary{Type: TypeJSON, Paths: outline(obj, cfg)}, nil
}

// YAML outlines the first document of a YAML stream.
func YAML(text string, cfg Config) (*Summary, error) {
	var obj any
	if err := yaml.Unmarshal([]byte(text), &obj); err != nil {
		return nil, &ParseError{Format: "YAML", Err: err}
	}
	return &Summary{Type: TypeYAML, Paths: outline(obj, cfg)}, nil
}

// TOML outlines a TOML document.
func TOML(text string, cfg Config) (*Summary, error) {
	obj := map[string]any{}
	if err := toml.Unmarshal([]byte(text), &obj); err != nil {
		return nil, &ParseError{Format: "TOML", Err: err}
	}
	return &Summary{Type: TypeTOML, Paths: outline(obj, cfg)}, nil
}

type outlineNode struct {
	prefix string
	value  any
	depth  int
}

type keyed struct {
	key   string
	value any
}

// outline lists dotted key paths and indexed list paths breadth-first. Keys
// are visited in order of their string form and only the first ten elements
// of each list are expanded.
func outline(obj any, cfg Config) []string {
	paths := []string{}
	queue := []outlineNode{{value: obj}}
	keys, items := 0, 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= cfg.MaxDepth {
			continue
		}

		if entries, ok := mapEntries(cur.value); ok {
			for _, e := range entries {
				if keys >= cfg.MaxKeys || items >= cfg.MaxItems {
					return paths
				}
				keys++
				items++
				p := e.key
				if cur.prefix != "" {
					p = cur.prefix + "." + e.key
				}
				paths = append(paths, p)
				queue = append(queue, outlineNode{prefix: p, value: e.value, depth: cur.depth + 1})
			}
			continue
		}

		if list, ok := cur.value.([]any); ok {
			for i, v := range list {
				if i >= maxListElements {
					break
				}
				if items >= cfg.MaxItems {
					return paths
				}
				items++
				p := fmt.Sprintf("%s[%d]", cur.prefix, i)
				paths = append(paths, p)
				queue = append(queue, outlineNode{prefix: p, value: v, depth: cur.depth + 1})
			}
		}
	}
	return paths
}

// mapEntries returns the entries of a decoded mapping sorted by key string.
func mapEntries(v any) ([]keyed, bool) {
	var out []keyed
	switch m := v.(type) {
	case map[string]any:
		out = make([]keyed, 0, len(m))
		for k, val := range m {
			out = append(out, keyed{key: k, value: val})
		}
	case map[any]any:
		out = make([]keyed, 0, len(m))
		for k, val := range m {
			out = append(out, keyed{key: fmt.Sprint(k), value: val})
		}
	default:
		return nil, false
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, true
}
