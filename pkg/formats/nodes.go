package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Nodes format errors.
var (
	ErrTruncatedNodesData  = errors.New("truncated nodes data")
	ErrNodesLengthMismatch = errors.New("nodes data length does not match header count")
)

// Nodes file layout constants.
const (
	NodesHeaderSize = 20
	NodeRecordSize  = 24
)

// Signed 16-bit bounds for node coordinates.
const (
	nodeCoordMin = -32768
	nodeCoordMax = 32767
)

// ConversionParams holds the constant fields stamped into every node
// record of one conversion run. They are plain values supplied by the
// caller, never derived from input data.
type ConversionParams struct {
	AreaID   uint16
	Width    uint16
	NodeType uint8
	Flags    uint8
}

// NodeRecord is one 24-byte navigation node. Addr, Unused and Marker are
// always written as zero; the game fills them at load time.
type NodeRecord struct {
	Addr     uint32
	Unused   uint32
	X        int16
	Y        int16
	Z        int16
	Marker   uint16
	AreaID   uint16
	NodeID   uint16
	Width    uint16
	NodeType uint8
	Flags    uint8
}

// Nodes represents a parsed nodes file.
type Nodes struct {
	TotalNodes uint32
	Records    []NodeRecord
}

// EncodeNodes converts decoded positions into nodes file bytes: a 20-byte
// header (record count, four reserved zero words) followed by one 24-byte
// record per position, in input order.
//
// Each coordinate is scaled by multiplier and rounded ties-to-even, then
// clamped to the signed 16-bit range. Range checks happen on the rounded
// float64 value, so coordinates far beyond the int range still clamp to
// their nearest bound; a NaN coordinate encodes as 0. A position counts
// as clipped once if any of its three axes needed clamping or was NaN.
// The node id of the i-th record is i mod 65536 regardless of input
// content.
//
// Returns the file bytes, one trace line per record, and the number of
// clipped positions.
func EncodeNodes(positions []Position, multiplier float64, params ConversionParams) ([]byte, []string, int) {
	buf := new(bytes.Buffer)
	buf.Grow(NodesHeaderSize + NodeRecordSize*len(positions))

	header := [5]uint32{uint32(len(positions))}
	binary.Write(buf, binary.LittleEndian, header)

	trace := make([]string, 0, len(positions))
	clipped := 0

	for i, pos := range positions {
		xi, clippedX := scaleCoord(pos.X, multiplier)
		yi, clippedY := scaleCoord(pos.Y, multiplier)
		zi, clippedZ := scaleCoord(pos.Z, multiplier)

		if clippedX || clippedY || clippedZ {
			clipped++
		}

		rec := NodeRecord{
			X:        xi,
			Y:        yi,
			Z:        zi,
			AreaID:   params.AreaID,
			NodeID:   uint16(i % 65536),
			Width:    params.Width,
			NodeType: params.NodeType,
			Flags:    params.Flags,
		}
		binary.Write(buf, binary.LittleEndian, rec)

		trace = append(trace, fmt.Sprintf("%d: pos=(%.3f,%.3f,%.3f) -> nodePos=(%d,%d,%d) id=%d",
			i, pos.X, pos.Y, pos.Z, xi, yi, zi, rec.NodeID))
	}

	return buf.Bytes(), trace, clipped
}

// scaleCoord scales one coordinate, rounds it ties-to-even and clamps it
// to the signed 16-bit range. The comparison stays in float64 space: a
// float to int conversion of an out-of-range value is implementation
// defined in Go, so converting first would turn a huge positive
// coordinate into the wrong bound. NaN carries no position at all and
// encodes as 0. The second result reports whether the value was clamped.
func scaleCoord(v float32, multiplier float64) (int16, bool) {
	f := math.RoundToEven(float64(v) * multiplier)
	switch {
	case math.IsNaN(f):
		return 0, true
	case f < nodeCoordMin:
		return nodeCoordMin, true
	case f > nodeCoordMax:
		return nodeCoordMax, true
	}
	return int16(f), false
}

// ParseNodes parses a nodes file from raw bytes. The byte length must
// match the header count exactly.
func ParseNodes(data []byte) (*Nodes, error) {
	if len(data) < NodesHeaderSize {
		return nil, ErrTruncatedNodesData
	}

	total := binary.LittleEndian.Uint32(data[:4])

	want := NodesHeaderSize + NodeRecordSize*int(total)
	if len(data) != want {
		return nil, fmt.Errorf("%w: header says %d records (%d bytes), have %d bytes",
			ErrNodesLengthMismatch, total, want, len(data))
	}

	nodes := &Nodes{
		TotalNodes: total,
		Records:    make([]NodeRecord, total),
	}

	r := bytes.NewReader(data[NodesHeaderSize:])
	for i := range nodes.Records {
		if err := binary.Read(r, binary.LittleEndian, &nodes.Records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d", ErrTruncatedNodesData, i)
		}
	}

	return nodes, nil
}

// ParseNodesFile parses a nodes file from disk.
func ParseNodesFile(path string) (*Nodes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading nodes file: %w", err)
	}
	return ParseNodes(data)
}
