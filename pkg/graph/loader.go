package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a graph text file cannot be parsed.
var ErrMalformed = errors.New("graph: malformed graph file")

// maxLineBytes bounds a single line of the text format.
const maxLineBytes = 1 << 20

// lineReader hands out trimmed lines and tracks the 1-based line number.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next(what string) (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", fmt.Errorf("read line %d (%s): %w", lr.line+1, what, err)
		}
		return "", fmt.Errorf("%w: line %d: unexpected end of file, want %s", ErrMalformed, lr.line+1, what)
	}
	lr.line++
	return strings.TrimRight(lr.sc.Text(), " \t\r"), nil
}

func (lr *lineReader) uint64(what string) (uint64, error) {
	s, err := lr.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %s %q", ErrMalformed, lr.line, what, s)
	}
	return v, nil
}

func (lr *lineReader) indices(what string) ([]uint32, error) {
	s, err := lr.next(what)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s entry %q", ErrMalformed, lr.line, what, f)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// Load parses the text graph format:
//
//	line 1:           book count n
//	per book (x n):   id
//	                  publisher_id
//	                  author_id
//	                  publisher edges (space separated indices, may be empty)
//	                  author edges
//	                  citation edges
func Load(r io.Reader) (*Store, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lr := &lineReader{sc: sc}

	count, err := lr.uint64("book count")
	if err != nil {
		return nil, err
	}
	if count > maxNodes {
		return nil, fmt.Errorf("%w: book count %d exceeds limit %d", ErrMalformed, count, maxNodes)
	}

	b := NewBuilder(int(count))
	for i := uint64(0); i < count; i++ {
		var rec BookRecord
		if rec.ID, err = lr.uint64("book id"); err != nil {
			return nil, err
		}
		if rec.PublisherID, err = lr.uint64("publisher id"); err != nil {
			return nil, err
		}
		if rec.AuthorID, err = lr.uint64("author id"); err != nil {
			return nil, err
		}
		if rec.PublisherEdges, err = lr.indices("publisher edges"); err != nil {
			return nil, err
		}
		if rec.AuthorEdges, err = lr.indices("author edges"); err != nil {
			return nil, err
		}
		if rec.CitationEdges, err = lr.indices("citation edges"); err != nil {
			return nil, err
		}
		b.Add(rec)
	}

	return b.Build()
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Load(bufio.NewReaderSize(f, 256*1024))
}

// WriteText serializes a Store in the text format accepted by Load.
func WriteText(w io.Writer, s *Store) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", s.Len())
	for i := range s.books {
		b := &s.books[i]
		fmt.Fprintf(bw, "%d\n%d\n%d\n", b.ID, b.PublisherID, b.AuthorID)
		writeIndexLine(bw, b.PublisherEdges)
		writeIndexLine(bw, b.AuthorEdges)
		writeIndexLine(bw, b.CitationEdges)
	}
	return bw.Flush()
}

func writeIndexLine(bw *bufio.Writer, edges []NodeIndex) {
	for i, e := range edges {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatUint(uint64(e), 10))
	}
	bw.WriteByte('\n')
}
