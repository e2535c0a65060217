package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestEncodeNodes_Basic(t *testing.T) {
	positions := []Position{
		{1.0, 2.0, 3.0},
		{4000.0, -5000.0, 0.5},
	}
	params := ConversionParams{AreaID: 7, Width: 3, NodeType: 2, Flags: 1}

	data, trace, clipped := EncodeNodes(positions, 8.0, params)

	if len(data) != NodesHeaderSize+2*NodeRecordSize {
		t.Fatalf("expected %d bytes, got %d", NodesHeaderSize+2*NodeRecordSize, len(data))
	}
	if clipped != 1 {
		t.Errorf("expected 1 clipped position, got %d", clipped)
	}
	if len(trace) != 2 {
		t.Errorf("expected 2 trace lines, got %d", len(trace))
	}

	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}
	if nodes.TotalNodes != 2 {
		t.Fatalf("expected header count 2, got %d", nodes.TotalNodes)
	}

	// First position scales in range.
	r0 := nodes.Records[0]
	if r0.X != 8 || r0.Y != 16 || r0.Z != 24 {
		t.Errorf("record 0: expected (8,16,24), got (%d,%d,%d)", r0.X, r0.Y, r0.Z)
	}

	// Second position: y scales to -40000 and clamps; x and z are fine.
	r1 := nodes.Records[1]
	if r1.X != 32000 || r1.Y != -32768 || r1.Z != 4 {
		t.Errorf("record 1: expected (32000,-32768,4), got (%d,%d,%d)", r1.X, r1.Y, r1.Z)
	}

	for i, rec := range nodes.Records {
		if rec.NodeID != uint16(i) {
			t.Errorf("record %d: expected node id %d, got %d", i, i, rec.NodeID)
		}
		if rec.AreaID != 7 || rec.Width != 3 || rec.NodeType != 2 || rec.Flags != 1 {
			t.Errorf("record %d: params not stamped: %+v", i, rec)
		}
		if rec.Addr != 0 || rec.Unused != 0 || rec.Marker != 0 {
			t.Errorf("record %d: placeholder fields not zero: %+v", i, rec)
		}
	}
}

func TestEncodeNodes_Empty(t *testing.T) {
	data, trace, clipped := EncodeNodes(nil, 8.0, ConversionParams{})

	if len(data) != NodesHeaderSize {
		t.Fatalf("expected header-only %d bytes, got %d", NodesHeaderSize, len(data))
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d: expected zero header, got %#x", i, b)
		}
	}
	if clipped != 0 {
		t.Errorf("expected no clipping, got %d", clipped)
	}
	if len(trace) != 0 {
		t.Errorf("expected no trace lines, got %d", len(trace))
	}
}

func TestEncodeNodes_ClipsOncePerPosition(t *testing.T) {
	// All three axes out of range still counts as one clipped position,
	// and each axis clamps to its nearest bound independently.
	positions := []Position{
		{100000, -100000, 100000},
		{10, 20, 30},
	}

	data, _, clipped := EncodeNodes(positions, 1.0, ConversionParams{})
	if clipped != 1 {
		t.Fatalf("expected clipped=1, got %d", clipped)
	}

	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}
	r0 := nodes.Records[0]
	if r0.X != 32767 || r0.Y != -32768 || r0.Z != 32767 {
		t.Errorf("expected clamped (32767,-32768,32767), got (%d,%d,%d)", r0.X, r0.Y, r0.Z)
	}
	r1 := nodes.Records[1]
	if r1.X != 10 || r1.Y != 20 || r1.Z != 30 {
		t.Errorf("in-range position altered: (%d,%d,%d)", r1.X, r1.Y, r1.Z)
	}
}

func TestEncodeNodes_ExtremeMagnitudesClampToNearestBound(t *testing.T) {
	// Scaled values way beyond the integer range must still clamp toward
	// the side they overflowed on, including infinities.
	positions := []Position{
		{3e38, -3e38, 0},
		{float32(math.Inf(1)), float32(math.Inf(-1)), 1},
	}

	data, _, clipped := EncodeNodes(positions, 8.0, ConversionParams{})
	if clipped != 2 {
		t.Fatalf("expected clipped=2, got %d", clipped)
	}

	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}

	r0 := nodes.Records[0]
	if r0.X != 32767 || r0.Y != -32768 || r0.Z != 0 {
		t.Errorf("record 0: expected (32767,-32768,0), got (%d,%d,%d)", r0.X, r0.Y, r0.Z)
	}
	r1 := nodes.Records[1]
	if r1.X != 32767 || r1.Y != -32768 || r1.Z != 8 {
		t.Errorf("record 1: expected (32767,-32768,8), got (%d,%d,%d)", r1.X, r1.Y, r1.Z)
	}
}

func TestEncodeNodes_NaNEncodesAsZero(t *testing.T) {
	positions := []Position{{float32(math.NaN()), 10, 20}}

	data, _, clipped := EncodeNodes(positions, 1.0, ConversionParams{})
	if clipped != 1 {
		t.Fatalf("expected NaN to count as clipped, got %d", clipped)
	}

	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}

	rec := nodes.Records[0]
	if rec.X != 0 || rec.Y != 10 || rec.Z != 20 {
		t.Errorf("expected (0,10,20), got (%d,%d,%d)", rec.X, rec.Y, rec.Z)
	}
}

func TestEncodeNodes_RoundsTiesToEven(t *testing.T) {
	// The converter rounds half-way values to the nearest even integer,
	// matching the behavior node files were historically produced with.
	positions := []Position{{0.5, 1.5, 2.5}}

	data, _, _ := EncodeNodes(positions, 1.0, ConversionParams{})
	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}

	rec := nodes.Records[0]
	if rec.X != 0 || rec.Y != 2 || rec.Z != 2 {
		t.Errorf("expected ties-to-even (0,2,2), got (%d,%d,%d)", rec.X, rec.Y, rec.Z)
	}
}

func TestEncodeNodes_NodeIDWraps(t *testing.T) {
	positions := make([]Position, 65537)

	data, _, _ := EncodeNodes(positions, 1.0, ConversionParams{})
	nodes, err := ParseNodes(data)
	if err != nil {
		t.Fatalf("ParseNodes failed: %v", err)
	}

	if nodes.Records[65535].NodeID != 65535 {
		t.Errorf("record 65535: expected node id 65535, got %d", nodes.Records[65535].NodeID)
	}
	if nodes.Records[65536].NodeID != 0 {
		t.Errorf("record 65536: expected node id to wrap to 0, got %d", nodes.Records[65536].NodeID)
	}
}

func TestEncodeNodes_TraceFormat(t *testing.T) {
	positions := []Position{{1.0, 2.0, 3.0}}

	_, trace, _ := EncodeNodes(positions, 8.0, ConversionParams{})
	if len(trace) != 1 {
		t.Fatalf("expected 1 trace line, got %d", len(trace))
	}

	expected := "0: pos=(1.000,2.000,3.000) -> nodePos=(8,16,24) id=0"
	if trace[0] != expected {
		t.Errorf("expected %q, got %q", expected, trace[0])
	}
}

func TestParseNodes_Truncated(t *testing.T) {
	if _, err := ParseNodes(make([]byte, 10)); !errors.Is(err, ErrTruncatedNodesData) {
		t.Errorf("expected ErrTruncatedNodesData, got %v", err)
	}
}

func TestParseNodes_LengthMismatch(t *testing.T) {
	// Header claims 3 records but only one record's bytes follow.
	data := make([]byte, NodesHeaderSize+NodeRecordSize)
	binary.LittleEndian.PutUint32(data[:4], 3)

	if _, err := ParseNodes(data); !errors.Is(err, ErrNodesLengthMismatch) {
		t.Errorf("expected ErrNodesLengthMismatch, got %v", err)
	}
}

func TestEncodeNodes_FileLengthInvariant(t *testing.T) {
	for _, count := range []int{0, 1, 2, 17, 100} {
		positions := make([]Position, count)
		for i := range positions {
			positions[i] = Position{float32(i), float32(-i), float32(i) / 2}
		}

		data, trace, _ := EncodeNodes(positions, 8.0, ConversionParams{})
		want := NodesHeaderSize + NodeRecordSize*count
		if len(data) != want {
			t.Errorf("%d positions: expected %d bytes, got %d", count, want, len(data))
		}
		if len(trace) != count {
			t.Errorf("%d positions: expected %d trace lines, got %d", count, count, len(trace))
		}
		if got := binary.LittleEndian.Uint32(data[:4]); got != uint32(count) {
			t.Errorf("%d positions: header count %d", count, got)
		}
	}
}

func ExamplePosition_String() {
	fmt.Println(Position{1, -2.5, 3.125})
	// Output: (1.000,-2.500,3.125)
}
