package simplefs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwarden/simplefs"
	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/internal/testutil"
)

func TestFormat_RejectsTooSmallDisk(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 1)
	err := simplefs.Format(d)
	assert.Error(t, err)
}

func TestFormatMountUnmount_TenBlockImage(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 10)
	require.NoError(t, simplefs.Format(d))

	var report bytes.Buffer
	require.NoError(t, simplefs.Debug(&report, d))
	assert.Equal(t, "SuperBlock:\n"+
		"    magic number is valid\n"+
		"    10 blocks\n"+
		"    1 inode blocks\n"+
		"    128 inodes\n", report.String())

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))
	assert.True(t, fs.Mounted())
	fs.Unmount()
	assert.False(t, fs.Mounted())
}

func TestMount_FailsOnBadMagicNumber(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 10)
	require.NoError(t, simplefs.Format(d))

	block := make([]byte, 4096)
	_, err := d.ReadBlock(0, block)
	require.NoError(t, err)
	block[0] ^= 0xff
	_, err = d.WriteBlock(0, block)
	require.NoError(t, err)

	fs := simplefs.New()
	err = fs.Mount(d)
	assert.Error(t, err)
	assert.False(t, fs.Mounted())
}

func TestMount_FailsWhenAlreadyMounted(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 10)
	require.NoError(t, simplefs.Format(d))

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))
	assert.Error(t, fs.Mount(d))
}

func mustMount(t *testing.T, blocks uint32) (*simplefs.FileSystem, func()) {
	t.Helper()
	d, _ := testutil.NewScratchDisk(t, blocks)
	require.NoError(t, simplefs.Format(d))

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))
	return fs, fs.Unmount
}

func TestCreateRemove_SlotReuse(t *testing.T) {
	fs, unmount := mustMount(t, 10)
	defer unmount()

	first, err := fs.Create()
	require.NoError(t, err)
	assert.EqualValues(t, 0, first)

	second, err := fs.Create()
	require.NoError(t, err)
	assert.EqualValues(t, 1, second)

	size, err := fs.Stat(first)
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)

	require.NoError(t, fs.Remove(first))

	size, err = fs.Stat(first)
	require.NoError(t, err)
	assert.EqualValues(t, -1, size)

	reused, err := fs.Create()
	require.NoError(t, err)
	assert.EqualValues(t, 0, reused)
}

func TestRemove_UnknownInodeFails(t *testing.T) {
	fs, unmount := mustMount(t, 10)
	defer unmount()

	err := fs.Remove(5)
	assert.Error(t, err)
}

func TestStat_InvalidInodeIsMinusOne(t *testing.T) {
	fs, unmount := mustMount(t, 10)
	defer unmount()

	size, err := fs.Stat(42)
	require.NoError(t, err)
	assert.EqualValues(t, -1, size)
}

func TestWriteThenRead_SmallRoundTrip(t *testing.T) {
	fs, unmount := mustMount(t, 10)
	defer unmount()

	inode, err := fs.Create()
	require.NoError(t, err)

	n, err := fs.Write(inode, []byte("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	size, err := fs.Stat(inode)
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	buf := make([]byte, 5)
	n, err = fs.Read(inode, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestRemountReconstructsIdenticalBitmap(t *testing.T) {
	d, path := testutil.NewScratchDisk(t, 10)
	require.NoError(t, simplefs.Format(d))

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))

	inode, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Write(inode, []byte("persisted across remounts"), 0)
	require.NoError(t, err)

	usedBefore := fs.UsedBlockCount()
	fs.Unmount()
	require.NoError(t, d.Close())

	d2, err := disk.Open(path, 10)
	require.NoError(t, err)
	d2.SetOutput(bytes.NewBuffer(nil))
	t.Cleanup(func() { _ = d2.Close() })

	fs2 := simplefs.New()
	require.NoError(t, fs2.Mount(d2))
	assert.Equal(t, usedBefore, fs2.UsedBlockCount())
}
