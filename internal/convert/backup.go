package convert

import (
	"fmt"
	"io"
	"os"
)

// backupFile copies src to dst, preserving the file mode and timestamps.
// A failed copy leaves the original untouched; the caller treats it as a
// hard failure rather than overwriting an un-backed-up file.
func backupFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Match the original's modification time so a backup is
	// indistinguishable from the file it replaced.
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
