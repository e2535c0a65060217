package formats

import (
	"fmt"
	"os"
)

// FileKind classifies what a .dat buffer appears to contain.
type FileKind int

// Recognized file kinds.
const (
	KindUnknown FileKind = iota
	KindChase
	KindNodes
)

// String returns a human-readable kind name.
func (k FileKind) String() string {
	switch k {
	case KindChase:
		return "chase"
	case KindNodes:
		return "nodes"
	default:
		return "unknown"
	}
}

// Info summarizes the structure of an inspected .dat file.
type Info struct {
	Kind    FileKind
	Variant Variant // chase files only
	Entries int     // decoded positions or header node count
}

// String formats the info as one status line.
func (in Info) String() string {
	switch in.Kind {
	case KindChase:
		return fmt.Sprintf("chase %s, %d entries", in.Variant, in.Entries)
	case KindNodes:
		return fmt.Sprintf("nodes, %d entries", in.Entries)
	default:
		return "unknown format"
	}
}

// Inspect classifies a .dat buffer. Chase detection runs first; anything
// that is not a valid chase layout is tried as a nodes file, where the
// header count must reconcile with the byte length.
func Inspect(data []byte) Info {
	if variant := DetectVariant(data); variant != VariantUnknown {
		return Info{
			Kind:    KindChase,
			Variant: variant,
			Entries: len(data) / variant.RecordSize(),
		}
	}

	if nodes, err := ParseNodes(data); err == nil {
		return Info{Kind: KindNodes, Entries: int(nodes.TotalNodes)}
	}

	return Info{Kind: KindUnknown}
}

// InspectFile inspects a .dat file from disk.
func InspectFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("reading file: %w", err)
	}
	return Inspect(data), nil
}
