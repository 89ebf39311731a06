// Package testutil provides scratch disk images and in-memory byte buffers
// for simplefs tests, the way the teacher's top-level testing package
// provides LoadDiskImage for its own driver tests.
package testutil

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/cwarden/simplefs/disk"
)

// NewScratchDisk creates a temp file and opens it as a disk.Disk with the
// given number of blocks. The disk is closed automatically when the test
// ends.
func NewScratchDisk(t *testing.T, blocks uint32) (*disk.Disk, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scratch.img")
	d, err := disk.Open(path, blocks)
	require.NoError(t, err)

	d.SetOutput(io.Discard)
	t.Cleanup(func() {
		_ = d.Close()
	})

	return d, path
}

// ReadWriteSeekerFromBytes wraps data in an in-memory io.ReadWriteSeeker,
// the way the teacher's testing.LoadDiskImage wraps a decompressed image
// with bytesextra.NewReadWriteSeeker. It's for unit tests exercising the
// wire encoders directly, without going through a real disk.Disk.
func ReadWriteSeekerFromBytes(data []byte) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(data)
}
