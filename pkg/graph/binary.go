package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

// ErrBadSnapshot is returned when a binary snapshot fails a header, checksum
// or structure check.
var ErrBadSnapshot = errors.New("graph: invalid snapshot")

const (
	magicBytes = "BOOKWORM"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 200_000_000
)

// fileHeader opens every snapshot. Edge counts size the three Head arrays.
type fileHeader struct {
	Magic             [8]byte
	Version           uint32
	NumNodes          uint32
	NumAuthorEdges    uint32
	NumCitationEdges  uint32
	NumPublisherEdges uint32
}

// csr is one relation flattened into compressed sparse row form.
type csr struct {
	firstOut []uint32    // len: n+1
	head     []NodeIndex // len: firstOut[n]
}

func buildCSR(s *Store, rel Relation) csr {
	n := len(s.books)
	firstOut := make([]uint32, n+1)
	for i := range s.books {
		firstOut[i+1] = firstOut[i] + uint32(len(s.books[i].Edges(rel)))
	}
	head := make([]NodeIndex, 0, firstOut[n])
	for i := range s.books {
		head = append(head, s.books[i].Edges(rel)...)
	}
	return csr{firstOut: firstOut, head: head}
}

// WriteBinary writes s as a snapshot: header, the three id columns, then
// FirstOut and Head for each relation, then a CRC32 of everything before it.
// The file is written under a temporary name and renamed into place.
func WriteBinary(path string, s *Store) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tmp)
		}
	}()

	sum := crc32.NewIEEE()
	w := io.MultiWriter(f, sum)

	n := len(s.books)
	var rels [3]csr
	for i, rel := range relationOrder {
		rels[i] = buildCSR(s, rel)
	}

	hdr := fileHeader{
		Version:           version,
		NumNodes:          uint32(n),
		NumAuthorEdges:    uint32(len(rels[0].head)),
		NumCitationEdges:  uint32(len(rels[1].head)),
		NumPublisherEdges: uint32(len(rels[2].head)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := [3][]uint64{make([]uint64, n), make([]uint64, n), make([]uint64, n)}
	for i := range s.books {
		b := &s.books[i]
		cols[0][i], cols[1][i], cols[2][i] = b.ID, b.AuthorID, b.PublisherID
	}
	for i, col := range cols {
		if err := writeColumn(w, col); err != nil {
			return fmt.Errorf("write %s column: %w", columnNames[i], err)
		}
	}

	for i, c := range rels {
		if err := writeColumn(w, c.firstOut); err != nil {
			return fmt.Errorf("write %s offsets: %w", relationOrder[i], err)
		}
		if err := writeColumn(w, c.head); err != nil {
			return fmt.Errorf("write %s edges: %w", relationOrder[i], err)
		}
	}

	if err := binary.Write(f, binary.LittleEndian, sum.Sum32()); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	committed = true
	return nil
}

var columnNames = [3]string{"id", "author id", "publisher id"}

// ReadBinary loads a snapshot written by WriteBinary. Structural problems
// wrap ErrBadSnapshot; edges pointing past the node count also wrap
// ErrInvalidEdge.
func ReadBinary(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sum := crc32.NewIEEE()
	r := io.TeeReader(f, sum)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrBadSnapshot, err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: magic %q", ErrBadSnapshot, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, hdr.Version, version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("%w: %d books exceeds limit %d", ErrBadSnapshot, hdr.NumNodes, maxNodes)
	}
	edgeCounts := [3]uint32{hdr.NumAuthorEdges, hdr.NumCitationEdges, hdr.NumPublisherEdges}
	for i, ne := range edgeCounts {
		if ne > maxEdges {
			return nil, fmt.Errorf("%w: %d %s edges exceeds limit %d", ErrBadSnapshot, ne, relationOrder[i], maxEdges)
		}
	}

	n := int(hdr.NumNodes)
	var cols [3][]uint64
	for i := range cols {
		if cols[i], err = readColumn[uint64](r, n); err != nil {
			return nil, fmt.Errorf("%w: read %s column: %w", ErrBadSnapshot, columnNames[i], err)
		}
	}

	var rels [3]csr
	for i := range rels {
		rel := relationOrder[i]
		if rels[i].firstOut, err = readColumn[uint32](r, n+1); err != nil {
			return nil, fmt.Errorf("%w: read %s offsets: %w", ErrBadSnapshot, rel, err)
		}
		if rels[i].head, err = readColumn[NodeIndex](r, int(edgeCounts[i])); err != nil {
			return nil, fmt.Errorf("%w: read %s edges: %w", ErrBadSnapshot, rel, err)
		}
	}

	computed := sum.Sum32()
	var stored uint32
	if err := binary.Read(f, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("%w: read checksum: %w", ErrBadSnapshot, err)
	}
	if stored != computed {
		return nil, fmt.Errorf("%w: checksum %08x, computed %08x", ErrBadSnapshot, stored, computed)
	}

	for i, c := range rels {
		if err := validateCSR(c.firstOut, c.head, hdr.NumNodes); err != nil {
			return nil, fmt.Errorf("%w: %s relation: %w", ErrBadSnapshot, relationOrder[i], err)
		}
	}

	books := make([]Book, n)
	stats := BuildStats{
		NumBooks:       n,
		AuthorEdges:    len(rels[0].head),
		CitationEdges:  len(rels[1].head),
		PublisherEdges: len(rels[2].head),
	}
	seen := make(map[uint64]struct{}, n)
	for i := range books {
		b := &books[i]
		b.ID, b.AuthorID, b.PublisherID = cols[0][i], cols[1][i], cols[2][i]
		b.Index = NodeIndex(i)
		// Edge lists alias the shared Head arrays; the store never mutates them.
		b.AuthorEdges = rels[0].edges(i)
		b.CitationEdges = rels[1].edges(i)
		b.PublisherEdges = rels[2].edges(i)
		if _, dup := seen[b.ID]; dup {
			stats.DuplicateIDs++
		} else {
			seen[b.ID] = struct{}{}
		}
	}
	return &Store{books: books, stats: stats}, nil
}

func (c csr) edges(i int) []NodeIndex {
	start, end := c.firstOut[i], c.firstOut[i+1]
	if start == end {
		return nil
	}
	return c.head[start:end:end]
}

// validateCSR checks that firstOut starts at 0, never decreases and ends at
// len(head), and that every head entry is a valid node.
func validateCSR(firstOut []uint32, head []NodeIndex, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("%d offsets for %d books", len(firstOut), numNodes)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("first offset is %d", firstOut[0])
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("offsets decrease at book %d", i)
		}
	}
	if last := firstOut[numNodes]; uint32(len(head)) != last {
		return fmt.Errorf("%d edges, offsets end at %d", len(head), last)
	}
	for i, h := range head {
		if uint32(h) >= numNodes {
			return fmt.Errorf("%w: edge %d points to %d of %d books", ErrInvalidEdge, i, h, numNodes)
		}
	}
	return nil
}

// word is any fixed-width column element. Columns are copied to and from
// disk as raw memory, so snapshots are only portable between little-endian
// hosts.
type word interface {
	~uint32 | ~uint64
}

func asBytes[T word](s []T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(s[0])))
}

func writeColumn[T word](w io.Writer, s []T) error {
	if len(s) == 0 {
		return nil
	}
	_, err := w.Write(asBytes(s))
	return err
}

func readColumn[T word](r io.Reader, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]T, n)
	if _, err := io.ReadFull(r, asBytes(s)); err != nil {
		return nil, err
	}
	return s, nil
}
