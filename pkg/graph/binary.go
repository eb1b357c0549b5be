package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"planar_router/pkg/geo"
)

const (
	magicBytes     = "PLROUTER"
	version        = uint32(1)
	maxNodes       = 50_000_000
	maxConnections = 200_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic          [8]byte
	Version        uint32
	NumNodes       uint32
	NumConnections uint32
}

// WriteBinary serializes map input to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, in *Input) error {
	if len(in.Points) > maxNodes {
		return fmt.Errorf("%d nodes exceeds limit %d", len(in.Points), maxNodes)
	}
	if len(in.Connections) > maxConnections {
		return fmt.Errorf("%d connections exceeds limit %d", len(in.Connections), maxConnections)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:        version,
		NumNodes:       uint32(len(in.Points)),
		NumConnections: uint32(len(in.Connections)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	xs := make([]float64, len(in.Points))
	ys := make([]float64, len(in.Points))
	for i, p := range in.Points {
		xs[i], ys[i] = p[0], p[1]
	}
	if err := writeFloat64Slice(w, xs); err != nil {
		return fmt.Errorf("write X: %w", err)
	}
	if err := writeFloat64Slice(w, ys); err != nil {
		return fmt.Errorf("write Y: %w", err)
	}

	// Connections as flat (from, to) pairs.
	pairs := make([]uint32, 0, 2*len(in.Connections))
	for _, c := range in.Connections {
		pairs = append(pairs, c.From, c.To)
	}
	if err := writeUint32Slice(w, pairs); err != nil {
		return fmt.Errorf("write connections: %w", err)
	}

	// Write CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes map input written by WriteBinary.
func ReadBinary(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: invalid magic bytes %q", ErrMalformedInput, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedInput, hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("%w: NumNodes %d exceeds limit %d", ErrMalformedInput, hdr.NumNodes, maxNodes)
	}
	if hdr.NumConnections > maxConnections {
		return nil, fmt.Errorf("%w: NumConnections %d exceeds limit %d", ErrMalformedInput, hdr.NumConnections, maxConnections)
	}

	xs, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read X: %w", err)
	}
	ys, err := readFloat64Slice(r, int(hdr.NumNodes))
	if err != nil {
		return nil, fmt.Errorf("read Y: %w", err)
	}
	pairs, err := readUint32Slice(r, 2*int(hdr.NumConnections))
	if err != nil {
		return nil, fmt.Errorf("read connections: %w", err)
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrMalformedInput, storedCRC, expectedCRC)
	}

	in := &Input{
		Points:      make([]geo.Point, hdr.NumNodes),
		Connections: make([]Connection, hdr.NumConnections),
	}
	for i := range in.Points {
		in.Points[i] = geo.Point{xs[i], ys[i]}
	}
	if err := checkPoints(in.Points); err != nil {
		return nil, err
	}
	for i := range in.Connections {
		c := Connection{From: pairs[2*i], To: pairs[2*i+1]}
		if c.From >= hdr.NumNodes || c.To >= hdr.NumNodes {
			return nil, fmt.Errorf("%w: connection %d (%d, %d) references a node outside [0, %d)",
				ErrMalformedInput, i, c.From, c.To, hdr.NumNodes)
		}
		in.Connections[i] = c
	}

	return in, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
