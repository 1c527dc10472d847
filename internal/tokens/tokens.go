// Package tokens counts tokens under named encodings. Encoders are built
// lazily and cached for the life of the process.
package tokens

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "cl100k_base"

const (
	modelPrefix       = "model:"
	huggingFacePrefix = "hf:"
)

// ErrUnknownEncoding indicates an encoding name that cannot be loaded.
var ErrUnknownEncoding = errors.New("unknown token encoding")

// Encoder counts the tokens of a text.
type Encoder interface {
	Count(text string) (int, error)
}

type tiktokenEncoder struct {
	ttk *tiktoken.Tiktoken
}

func (e *tiktokenEncoder) Count(text string) (int, error) {
	return len(e.ttk.EncodeOrdinary(text)), nil
}

type huggingFaceEncoder struct {
	htk *hf.Tokenizer
}

func (e *huggingFaceEncoder) Count(text string) (int, error) {
	en, err := e.htk.EncodeSingle(text)
	if err != nil {
		return 0, fmt.Errorf("huggingface encode: %w", err)
	}
	return len(en.Tokens), nil
}

var (
	mu       sync.Mutex
	encoders = map[string]Encoder{}
)

// Register installs enc under name, replacing any cached encoder.
func Register(name string, enc Encoder) {
	mu.Lock()
	defer mu.Unlock()
	encoders[name] = enc
}

// Lookup returns the cached encoder for name, loading it on first use.
//
// Names are tiktoken encodings ("cl100k_base", "o200k_base"), "model:<name>"
// for the encoding of an OpenAI model, or "hf:<tokenizer.json or hub model>".
func Lookup(name string) (Encoder, error) {
	if name == "" {
		name = DefaultEncoding
	}
	mu.Lock()
	defer mu.Unlock()
	if enc, ok := encoders[name]; ok {
		return enc, nil
	}
	enc, err := load(name)
	if err != nil {
		return nil, err
	}
	encoders[name] = enc
	return enc, nil
}

func load(name string) (Encoder, error) {
	switch {
	case strings.HasPrefix(name, modelPrefix):
		model := strings.TrimPrefix(name, modelPrefix)
		ttk, err := tiktoken.EncodingForModel(model)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEncoding, name, err)
		}
		return &tiktokenEncoder{ttk: ttk}, nil
	case strings.HasPrefix(name, huggingFacePrefix):
		return loadHuggingFace(name, strings.TrimPrefix(name, huggingFacePrefix))
	default:
		ttk, err := tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEncoding, name, err)
		}
		return &tiktokenEncoder{ttk: ttk}, nil
	}
}

// loadHuggingFace reads a local tokenizer.json, or resolves a hub model
// through the tokenizer download cache.
func loadHuggingFace(name, ref string) (Encoder, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: %s: missing tokenizer file or model", ErrUnknownEncoding, name)
	}
	file := ref
	if _, err := os.Stat(ref); err != nil {
		cached, err := hf.CachedPath(ref, "tokenizer.json")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEncoding, name, err)
		}
		file = cached
	}
	htk, err := pretrained.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownEncoding, name, err)
	}
	return &huggingFaceEncoder{htk: htk}, nil
}

// Count returns the number of tokens in text under encoding.
func Count(text, encoding string) (int, error) {
	enc, err := Lookup(encoding)
	if err != nil {
		return 0, err
	}
	return enc.Count(text)
}

// Counts is a per-path token tally.
type Counts struct {
	Encoding string         `json:"encoding"`
	PerPath  map[string]int `json:"per_path"`
	Total    int            `json:"total"`
}

// CountByPath counts every payload, visiting paths in sorted order.
func CountByPath(payloads map[string]string, encoding string) (Counts, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := Lookup(encoding)
	if err != nil {
		return Counts{}, err
	}

	paths := make([]string, 0, len(payloads))
	for p := range payloads {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	counts := Counts{Encoding: encoding, PerPath: make(map[string]int, len(paths))}
	for _, p := range paths {
		n, err := enc.Count(payloads[p])
		if err != nil {
			return Counts{}, fmt.Errorf("count tokens for %s: %w", p, err)
		}
		counts.PerPath[p] = n
		counts.Total += n
	}
	return counts, nil
}
