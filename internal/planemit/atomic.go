package planemit

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/monerosim/monerosim/internal/simerr"
)

// writeFileAtomic writes data to path via a scoped-acquire/write-temp/
// rename sequence so a crash mid-emit never leaves a partial file
// (spec.md §5 "All filesystem writes under the Shadow output directory
// are scoped-acquire/write-temp/rename"). The temp file name is suffixed
// with a fresh UUID rather than the PID to stay collision-free even
// across concurrent external builders touching the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return simerr.New(simerr.EmitIO, "creating output directory").WithCause(err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return simerr.New(simerr.EmitIO, "writing temp file").WithCause(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return simerr.New(simerr.EmitIO, "renaming temp file into place").WithCause(err)
	}
	return nil
}
