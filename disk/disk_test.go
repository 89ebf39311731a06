package disk_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/cwarden/simplefs/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScratchDisk(t *testing.T, blocks uint32) *disk.Disk {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratch.img")
	d, err := disk.Open(path, blocks)
	require.NoError(t, err)
	t.Cleanup(func() {
		var discard bytes.Buffer
		d.SetOutput(&discard)
		d.Close()
	})
	return d
}

func TestOpen_TruncatesToRequestedSize(t *testing.T) {
	d := newScratchDisk(t, 10)
	assert.EqualValues(t, 10, d.Blocks())
}

func TestReadBlock_OutOfRangeFails(t *testing.T) {
	d := newScratchDisk(t, 4)
	buf := make([]byte, disk.BlockSize)

	_, err := d.ReadBlock(4, buf)
	assert.Error(t, err)
}

func TestReadBlock_NilBufferFails(t *testing.T) {
	d := newScratchDisk(t, 4)
	_, err := d.ReadBlock(0, nil)
	assert.Error(t, err)
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	d := newScratchDisk(t, 4)

	out := make([]byte, disk.BlockSize)
	copy(out, []byte("hello, block device"))

	n, err := d.WriteBlock(2, out)
	require.NoError(t, err)
	assert.Equal(t, disk.BlockSize, n)

	in := make([]byte, disk.BlockSize)
	n, err = d.ReadBlock(2, in)
	require.NoError(t, err)
	assert.Equal(t, disk.BlockSize, n)
	assert.Equal(t, out, in)
}

func TestCounters_IncrementOnlyOnSuccess(t *testing.T) {
	d := newScratchDisk(t, 4)
	buf := make([]byte, disk.BlockSize)

	_, err := d.ReadBlock(0, buf)
	require.NoError(t, err)
	_, err = d.WriteBlock(0, buf)
	require.NoError(t, err)

	// Out-of-range attempts must not move the counters.
	_, _ = d.ReadBlock(99, buf)
	_, _ = d.WriteBlock(99, buf)

	assert.EqualValues(t, 1, d.Reads())
	assert.EqualValues(t, 1, d.Writes())
}

func TestClose_ReportsReadsAndWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.img")
	d, err := disk.Open(path, 4)
	require.NoError(t, err)

	buf := make([]byte, disk.BlockSize)
	_, err = d.WriteBlock(0, buf)
	require.NoError(t, err)
	_, err = d.ReadBlock(0, buf)
	require.NoError(t, err)
	_, err = d.ReadBlock(1, buf)
	require.NoError(t, err)

	var report bytes.Buffer
	d.SetOutput(&report)
	require.NoError(t, d.Close())

	assert.Equal(t, "2 disk block reads\n1 disk block writes\n", report.String())
}
