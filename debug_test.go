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

func TestDebug_ReportsInodeUnderInBlockIndex(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 200)
	require.NoError(t, simplefs.Format(d))

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))

	// Create two inodes and give the second one (in-block index 1, which is
	// also its global inode number) an indirect block, so its record in the
	// debug output includes the indirect block lines.
	_, err := fs.Create()
	require.NoError(t, err)
	second, err := fs.Create()
	require.NoError(t, err)

	_, err = fs.Write(second, bytes.Repeat([]byte{0x01}, 6*disk.BlockSize), 0)
	require.NoError(t, err)
	fs.Unmount()

	var out bytes.Buffer
	require.NoError(t, simplefs.Debug(&out, d))

	assert.Contains(t, out.String(), "Inode 1:\n")
	assert.Contains(t, out.String(), "indirect block:")
	assert.Contains(t, out.String(), "indirect data blocks:")
}

func TestDebug_UsesInBlockIndexNotGlobalInodeNumber(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 200)
	require.NoError(t, simplefs.Format(d))

	fs := simplefs.New()
	require.NoError(t, fs.Mount(d))

	// 200 blocks gives 20 inode blocks (128 inodes each). Inode number 130
	// lives in the second inode table block at in-block slot 2.
	var target int64 = -1
	for i := 0; i <= 130; i++ {
		n, err := fs.Create()
		require.NoError(t, err)
		if i == 130 {
			target = n
		}
	}
	require.EqualValues(t, 130, target)
	fs.Unmount()

	var out bytes.Buffer
	require.NoError(t, simplefs.Debug(&out, d))

	assert.NotContains(t, out.String(), "Inode 130:")
	assert.Contains(t, out.String(), "Inode 2:")
}

func TestDebug_StopsAfterBlockCountWhenInodesIsZero(t *testing.T) {
	d, _ := testutil.NewScratchDisk(t, 10)

	sb := simplefs.SuperBlock{MagicNumber: simplefs.MagicNumber, Blocks: 10}
	_, err := d.WriteBlock(0, simplefs.EncodeSuperBlock(sb))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, simplefs.Debug(&out, d))

	assert.Equal(t, "SuperBlock:\n    magic number is valid\n    10 blocks\n", out.String())
}
