package simplefs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwarden/simplefs"
	"github.com/cwarden/simplefs/internal/testutil"
)

func TestSuperBlockEncodeDecode_RoundTrips(t *testing.T) {
	sb := simplefs.SuperBlock{
		MagicNumber: simplefs.MagicNumber,
		Blocks:      4096,
		InodeBlocks: 409,
		Inodes:      409 * simplefs.InodesPerBlock,
	}

	encoded := simplefs.EncodeSuperBlock(sb)
	assert.Len(t, encoded, 4096)

	// Exercise the encoded bytes through an in-memory seekable buffer, the
	// way tests built on bytesextra do, to confirm the whole block can be
	// read back from the start of the stream like a real disk image.
	stream := testutil.ReadWriteSeekerFromBytes(encoded)
	readBack := make([]byte, 4096)
	n, err := stream.Read(readBack)
	require.NoError(t, err)
	require.Equal(t, 4096, n)

	decoded, err := simplefs.DecodeSuperBlock(readBack)
	require.NoError(t, err)
	assert.Equal(t, sb, decoded)
}

func TestDecodeSuperBlock_RejectsShortBuffer(t *testing.T) {
	_, err := simplefs.DecodeSuperBlock(make([]byte, 10))
	assert.Error(t, err)
}
