package lsp

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadHeaders(t *testing.T) {
	t.Parallel()

	h, err := ReadHeaders(reader("Content-Length: 100\r\nContent-Type: application/json\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"content-length": "100", "content-type": "application/json"}, h)

	h, err = ReadHeaders(reader(""))
	require.NoError(t, err)
	assert.Nil(t, h)

	h, err = ReadHeaders(reader("Content-Length: 10\r\n"))
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = ReadHeaders(reader("garbage\r\n\r\n"))
	require.ErrorIs(t, err, ErrFraming)
}

func TestMessageRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	id := 7
	require.NoError(t, WriteMessage(&buf, Message{JSONRPC: "2.0", ID: &id, Method: "initialize"}))
	require.NoError(t, WriteMessage(&buf, Position{Line: 3, Character: 9}))
	assert.True(t, strings.HasPrefix(buf.String(), "Content-Length: "))

	r := bufio.NewReader(&buf)
	var msg Message
	require.NoError(t, ReadMessage(r, &msg))
	assert.Equal(t, "initialize", msg.Method)
	require.NotNil(t, msg.ID)
	assert.Equal(t, 7, *msg.ID)

	var pos Position
	require.NoError(t, ReadMessage(r, &pos))
	assert.Equal(t, Position{Line: 3, Character: 9}, pos)

	assert.ErrorIs(t, ReadMessage(r, &pos), io.EOF)
}

func TestReadMessageBadLength(t *testing.T) {
	t.Parallel()

	var v any
	err := ReadMessage(reader("Content-Type: x\r\n\r\n{}"), &v)
	require.ErrorIs(t, err, ErrFraming)
}

func TestURIConversion(t *testing.T) {
	t.Parallel()

	if filepath.Separator != '/' {
		t.Skip("POSIX paths only")
	}

	uri := PathToURI("/tmp/path with spaces/test#file.py")
	assert.Equal(t, "file:///tmp/path%20with%20spaces/test%23file.py", uri)

	p, ok := URIToPath(uri)
	require.True(t, ok)
	assert.Equal(t, "/tmp/path with spaces/test#file.py", p)

	p, ok = URIToPath("file://localhost/tmp/x.py")
	require.True(t, ok)
	assert.Equal(t, "/tmp/x.py", p)

	p, ok = URIToPath("file:///tmp/a%20b.py")
	require.True(t, ok)
	assert.Equal(t, "/tmp/a b.py", p)

	for _, bad := range []string{"https://example.com/x", "untitled:foo", "git://repo/file", "not-a-uri", "file://remote/x"} {
		_, ok := URIToPath(bad)
		assert.Falsef(t, ok, "%s must be rejected", bad)
	}
}
