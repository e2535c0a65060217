// Package formats provides codecs for GTA chase and nodes .dat files.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Chase format errors.
var (
	ErrUnknownVariant    = errors.New("unknown chase variant")
	ErrTruncatedChaseRec = errors.New("truncated chase record data")
)

// Record sizes for the two known chase layouts.
const (
	ChaseRecordSize28 = 28
	ChaseRecordSize20 = 20
)

// Variant identifies which of the two chase record layouts a file uses.
type Variant int

// Known variants.
const (
	VariantUnknown Variant = 0
	Variant28      Variant = 28 // 3xi16, 10xi8, position as trailing 3xf32
	Variant20      Variant = 20 // position as leading 3xf32, 4xi16
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case Variant28:
		return "28-byte"
	case Variant20:
		return "20-byte"
	default:
		return "unknown"
	}
}

// RecordSize returns the byte size of one record, or 0 for unknown.
func (v Variant) RecordSize() int {
	switch v {
	case Variant28:
		return ChaseRecordSize28
	case Variant20:
		return ChaseRecordSize20
	default:
		return 0
	}
}

// Position is one waypoint position decoded from a chase record.
type Position struct {
	X, Y, Z float32
}

// String formats the position the way conversion logs print it.
func (p Position) String() string {
	return fmt.Sprintf("(%.3f,%.3f,%.3f)", p.X, p.Y, p.Z)
}

// DetectVariant classifies raw chase data by record-length divisibility.
// 28 is checked before 20; a length divisible by both layouts is
// ambiguous and classifies as unknown, as does empty data (divisible by
// everything), so truncated or empty files surface as errors instead of
// silent no-ops.
func DetectVariant(data []byte) Variant {
	if len(data) == 0 {
		return VariantUnknown
	}
	if len(data)%ChaseRecordSize28 == 0 {
		if len(data)%ChaseRecordSize20 == 0 {
			// Divisible by both layouts: no safe way to pick one.
			return VariantUnknown
		}
		return Variant28
	}
	if len(data)%ChaseRecordSize20 == 0 {
		return Variant20
	}
	return VariantUnknown
}

// chaseRecord28 is the GTA III 28-byte waypoint layout. Only the trailing
// float triple carries the position; the leading fields are link data this
// tool does not interpret.
type chaseRecord28 struct {
	Links [3]int16
	Extra [10]int8
	PosX  float32
	PosY  float32
	PosZ  float32
}

// chaseRecord20 is the 20-byte waypoint layout: position first, then four
// shorts of link data.
type chaseRecord20 struct {
	PosX  float32
	PosY  float32
	PosZ  float32
	Links [4]int16
}

// DecodePositions decodes every position from chase data already
// classified as the given variant. Byte order is little-endian for both
// layouts. The length is re-checked against the record size; a mismatch
// means the caller skipped detection or the data changed underneath it.
func DecodePositions(data []byte, variant Variant) ([]Position, error) {
	size := variant.RecordSize()
	if size == 0 {
		return nil, ErrUnknownVariant
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncatedChaseRec, len(data), size)
	}

	count := len(data) / size
	positions := make([]Position, count)
	r := bytes.NewReader(data)

	for i := 0; i < count; i++ {
		switch variant {
		case Variant28:
			var rec chaseRecord28
			if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("%w: record %d", ErrTruncatedChaseRec, i)
			}
			positions[i] = Position{X: rec.PosX, Y: rec.PosY, Z: rec.PosZ}
		case Variant20:
			var rec chaseRecord20
			if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("%w: record %d", ErrTruncatedChaseRec, i)
			}
			positions[i] = Position{X: rec.PosX, Y: rec.PosY, Z: rec.PosZ}
		}
	}

	return positions, nil
}

// ParseChase detects the variant of raw chase data and decodes its
// positions in one step.
func ParseChase(data []byte) ([]Position, Variant, error) {
	variant := DetectVariant(data)
	if variant == VariantUnknown {
		return nil, VariantUnknown, fmt.Errorf("%w: %d bytes", ErrUnknownVariant, len(data))
	}
	positions, err := DecodePositions(data, variant)
	if err != nil {
		return nil, variant, err
	}
	return positions, variant, nil
}

// ParseChaseFile parses a chase file from disk.
func ParseChaseFile(path string) ([]Position, Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, VariantUnknown, fmt.Errorf("reading chase file: %w", err)
	}
	return ParseChase(data)
}
