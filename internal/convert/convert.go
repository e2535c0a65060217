// Package convert performs single-file chase to nodes conversions,
// including the backup and log side effects.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/dattool/internal/logger"
	"github.com/Faultbox/dattool/pkg/formats"
)

// LogSuffix is appended to the destination stem to name the companion
// conversion log.
const LogSuffix = "_chase_to_nodes_log.txt"

// Options bundles the knobs of one conversion run. The same value is
// shared read-only across all files of a batch.
type Options struct {
	Params     formats.ConversionParams
	Multiplier float64
	Backup     bool
}

// Outcome reports the result of converting one file. Workers never return
// a Go error; every failure mode ends up here as Success=false with a
// message naming the file and the reason.
type Outcome struct {
	Source  string
	Dest    string
	Success bool
	Message string
	Entries int
	Clipped int
	LogPath string
}

func failure(src, dst, msg string) Outcome {
	return Outcome{Source: src, Dest: dst, Message: msg}
}

// File converts one chase file to a nodes file. Steps: read, detect
// variant, decode, encode, ensure the destination directory, back up an
// existing destination if requested, write the output, write the
// companion log. Any failed step yields a failed outcome; a partial
// output file may remain on disk but is always accompanied by one.
func File(src, dst string, opts Options) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failure(src, dst, fmt.Sprintf("Error converting %s: panic: %v", filepath.Base(src), r))
		}
	}()

	start := time.Now().UTC()

	data, err := os.ReadFile(src)
	if err != nil {
		return failure(src, dst, fmt.Sprintf("Error converting %s: %v", filepath.Base(src), err))
	}

	variant := formats.DetectVariant(data)
	if variant == formats.VariantUnknown {
		return failure(src, dst, fmt.Sprintf("Unknown variant for %s", filepath.Base(src)))
	}

	positions, err := formats.DecodePositions(data, variant)
	if err != nil {
		return failure(src, dst, fmt.Sprintf("Error converting %s: %v", filepath.Base(src), err))
	}

	encoded, trace, clipped := formats.EncodeNodes(positions, opts.Multiplier, opts.Params)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return failure(src, dst, fmt.Sprintf("Error converting %s: %v", filepath.Base(src), err))
	}

	if opts.Backup {
		if _, statErr := os.Stat(dst); statErr == nil {
			// Only prior conversion outputs are backed up, never sources.
			if err := backupFile(dst, dst+".bak"); err != nil {
				return failure(src, dst, fmt.Sprintf("Error converting %s: backup failed: %v", filepath.Base(src), err))
			}
		}
	}

	if err := os.WriteFile(dst, encoded, 0644); err != nil {
		return failure(src, dst, fmt.Sprintf("Error converting %s: %v", filepath.Base(src), err))
	}

	logPath, err := writeLog(dst, src, variant, start, len(positions), clipped, trace)
	if err != nil {
		return failure(src, dst, fmt.Sprintf("Error converting %s: writing log: %v", filepath.Base(src), err))
	}

	logger.Debug("converted chase file",
		zap.String("source", src),
		zap.String("dest", dst),
		zap.Stringer("variant", variant),
		zap.Int("entries", len(positions)),
		zap.Int("clipped", clipped))

	return Outcome{
		Source:  src,
		Dest:    dst,
		Success: true,
		Message: fmt.Sprintf("Converted %s (%d entries, clipped=%d)", filepath.Base(src), len(positions), clipped),
		Entries: len(positions),
		Clipped: clipped,
		LogPath: logPath,
	}
}

// writeLog writes the human-readable conversion log next to the
// destination and returns its path.
func writeLog(dst, src string, variant formats.Variant, start time.Time, entries, clipped int, trace []string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))
	logPath := filepath.Join(filepath.Dir(dst), stem+LogSuffix)

	var b strings.Builder
	fmt.Fprintf(&b, "Converted: %s\n", src)
	fmt.Fprintf(&b, "Variant: %s entries\n", variant)
	fmt.Fprintf(&b, "Time (UTC): %s\n", start.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Entries: %d\n", entries)
	fmt.Fprintf(&b, "Clipped: %d\n\n", clipped)
	b.WriteString(strings.Join(trace, "\n"))

	if err := os.WriteFile(logPath, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return logPath, nil
}
