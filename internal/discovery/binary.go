package discovery

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"
)

// SniffBytes is how much of a file is inspected to classify it as binary.
const SniffBytes = 8192

// IsBinaryFile reports whether the first SniffBytes of path contain a NUL
// byte or are not valid UTF-8. Any I/O error classifies the file as binary.
func IsBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, SniffBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return true
	}
	return IsBinary(buf[:n])
}

// IsBinary classifies a sniffed prefix. A multi-byte sequence cut off by the
// sniff boundary is invalid UTF-8 like any other.
func IsBinary(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	return !utf8.Valid(data)
}
