package graph_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookworm/pkg/graph"
)

// threeBooks: book 10 cites 11, 11 cites 12; 10 and 11 share an author;
// all three share publisher 5. Book 12 has empty edge lines.
const threeBooks = `3
10
5
1
1 2
1
1
11
5
1
0 2
0
2
12
5
2
0 1


`

func TestLoad(t *testing.T) {
	s, err := graph.Load(strings.NewReader(threeBooks))
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	b0 := s.Book(0)
	assert.Equal(t, uint64(10), b0.ID)
	assert.Equal(t, uint64(5), b0.PublisherID)
	assert.Equal(t, uint64(1), b0.AuthorID)
	assert.Equal(t, []graph.NodeIndex{1, 2}, b0.PublisherEdges)
	assert.Equal(t, []graph.NodeIndex{1}, b0.AuthorEdges)
	assert.Equal(t, []graph.NodeIndex{1}, b0.CitationEdges)

	b2 := s.Book(2)
	assert.Equal(t, uint64(2), b2.AuthorID)
	assert.Empty(t, b2.AuthorEdges)
	assert.Empty(t, b2.CitationEdges)
}

func TestLoadToleratesTrailingWhitespace(t *testing.T) {
	in := "1 \r\n42\t\n3\n4\n\n\n\n"
	s, err := graph.Load(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.Book(0).ID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad count", "three\n"},
		{"truncated book", "1\n10\n5\n"},
		{"bad id", "1\nx\n5\n1\n\n\n\n"},
		{"bad edge", "1\n10\n5\n1\n0 q\n\n\n"},
		{"negative edge", "1\n10\n5\n1\n-1\n\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.Load(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, graph.ErrMalformed)
		})
	}
}

func TestLoadDanglingEdge(t *testing.T) {
	_, err := graph.Load(strings.NewReader("1\n10\n5\n1\n\n\n3\n"))
	assert.ErrorIs(t, err, graph.ErrInvalidEdge)
}

func TestLoadReportsLineNumber(t *testing.T) {
	_, err := graph.Load(strings.NewReader("1\n10\n5\nnope\n\n\n\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestWriteTextRoundTrip(t *testing.T) {
	s, err := graph.Load(strings.NewReader(threeBooks))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, graph.WriteText(&buf, s))

	again, err := graph.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, s.Len(), again.Len())
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, *s.Book(graph.NodeIndex(i)), *again.Book(graph.NodeIndex(i)))
	}
}

func TestOpenDetectsFormat(t *testing.T) {
	s, err := graph.Load(strings.NewReader(threeBooks))
	require.NoError(t, err)

	dir := t.TempDir()
	txt := filepath.Join(dir, "graph.txt")
	bin := filepath.Join(dir, "graph.bin")
	require.NoError(t, os.WriteFile(txt, []byte(threeBooks), 0o644))
	require.NoError(t, graph.WriteBinary(bin, s))

	for _, path := range []string{txt, bin} {
		got, err := graph.Open(path, graph.FormatAuto)
		require.NoError(t, err, path)
		assert.Equal(t, 3, got.Len(), path)
		assert.Equal(t, uint64(12), got.Book(2).ID, path)
	}

	_, err = graph.Open(txt, graph.FormatBinary)
	assert.Error(t, err)
	_, err = graph.Open(txt, "xml")
	assert.Error(t, err)
}
