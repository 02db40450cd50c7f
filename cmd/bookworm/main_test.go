package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookworm/pkg/api"
	"bookworm/pkg/config"
	"bookworm/pkg/graph"
)

// writeGraph stores two components: 10-11-12 linked by citations and a lone
// book 13.
func writeGraph(t *testing.T) string {
	t.Helper()
	s, err := graph.FromRecords([]graph.BookRecord{
		{ID: 10, AuthorID: 1, PublisherID: 7, CitationEdges: []uint32{1}},
		{ID: 11, AuthorID: 1, PublisherID: 7, CitationEdges: []uint32{2}},
		{ID: 12, AuthorID: 2, PublisherID: 8},
		{ID: 13, AuthorID: 3, PublisherID: 9},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, graph.WriteText(f, s))
	require.NoError(t, f.Close())
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryBook(t *testing.T) {
	path := writeGraph(t)

	out, err := execute(t, "--graph", path, "query", "book", "11")
	require.NoError(t, err)

	var resp api.ResultResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, uint64(11), resp.Books[0].ID)
	assert.Equal(t, uint32(1), resp.Books[0].Index)
}

func TestQueryPath(t *testing.T) {
	path := writeGraph(t)

	out, err := execute(t, "--graph", path, "query", "path", "10", "12", "--relations", "citation")
	require.NoError(t, err)

	var resp api.ResultResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	ids := make([]uint64, 0, resp.Count)
	for _, b := range resp.Books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []uint64{10, 11, 12}, ids)
}

func TestQueryRejectsBadArgs(t *testing.T) {
	path := writeGraph(t)

	_, err := execute(t, "--graph", path, "query", "book", "abc")
	assert.ErrorContains(t, err, "invalid book id")

	_, err = execute(t, "--graph", path, "query", "within", "10", "70000")
	assert.ErrorContains(t, err, "invalid k")
}

func TestConvertLargestComponent(t *testing.T) {
	in := writeGraph(t)
	out := filepath.Join(t.TempDir(), "graph.bin")

	_, err := execute(t, "convert", "--input", in, "--output", out, "--largest-component")
	require.NoError(t, err)

	s, err := graph.Open(out, graph.FormatAuto)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(10), s.Book(0).ID)
	assert.Equal(t, []graph.NodeIndex{1}, s.Book(0).CitationEdges)
}

func TestStats(t *testing.T) {
	path := writeGraph(t)

	out, err := execute(t, "--graph", path, "stats")
	require.NoError(t, err)

	var resp api.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 4, resp.NumBooks)
	assert.Equal(t, 2, resp.CitationEdges)
	assert.Equal(t, 2, resp.Components)
	assert.Equal(t, 3, resp.LargestComponent)
}

func TestParseRelations(t *testing.T) {
	rel, err := parseRelations(nil)
	require.NoError(t, err)
	assert.Equal(t, graph.RelAll, rel)

	rel, err = parseRelations([]string{"author", "publisher"})
	require.NoError(t, err)
	assert.Equal(t, graph.RelAuthor|graph.RelPublisher, rel)

	_, err = parseRelations([]string{"editor"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.True(t, l.Enabled(t.Context(), slog.LevelError))
}
