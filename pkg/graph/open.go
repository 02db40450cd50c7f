package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Snapshot formats accepted by Open.
const (
	FormatAuto   = "auto"
	FormatText   = "text"
	FormatBinary = "binary"
)

// Open loads a store from path. FormatAuto picks the binary reader when the
// file starts with the snapshot magic and the text parser otherwise.
func Open(path, format string) (*Store, error) {
	switch format {
	case FormatText:
		return LoadFile(path)
	case FormatBinary:
		return ReadBinary(path)
	case FormatAuto, "":
		isBin, err := hasMagic(path)
		if err != nil {
			return nil, err
		}
		if isBin {
			return ReadBinary(path)
		}
		return LoadFile(path)
	}
	return nil, fmt.Errorf("unknown graph format %q", format)
}

func hasMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	buf := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(f, buf); err != nil {
		// Too short for a snapshot header; let the text parser report it.
		return false, nil
	}
	return bytes.Equal(buf, []byte(magicBytes)), nil
}
