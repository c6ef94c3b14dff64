// =============================================================================
// Expensight - File Utilities
// =============================================================================
//
// Small filesystem helpers shared by the pipeline and the exporter:
//   - directory management
//   - atomic file replacement (write to a temp path, rename on success)
//   - unique temp sibling names
//
// The atomic-replace discipline is what guarantees a pre-existing report is
// never left half-written: the destination only ever changes via rename.
//
// =============================================================================

package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// TempSibling returns a unique hidden temp path in the same directory as
// path, keeping the original extension so tooling that sniffs by suffix
// still works. Same-directory placement keeps the final rename atomic.
func TempSibling(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(dir, fmt.Sprintf(".%s-%s.tmp%s", base, uuid.NewString()[:8], ext))
}

// ReplaceFile atomically replaces path with content produced by write.
// write receives a temp path in the destination directory; on success the
// temp file is renamed over path, on failure it is removed and the
// pre-existing destination (if any) is left untouched.
func ReplaceFile(path string, write func(tmp string) error) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := TempSibling(path)
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
