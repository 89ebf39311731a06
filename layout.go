// Package simplefs implements the SimpleFS on-disk layout, allocator, and
// file-level read/write engine over a disk.Disk.
package simplefs

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/errors"
)

const (
	// PointersPerInode is the number of direct block pointers embedded in
	// every inode.
	PointersPerInode = 5

	// PointersPerBlock is the number of uint32 block pointers that fit in a
	// single indirect block.
	PointersPerBlock = disk.BlockSize / 4

	// inodeSize is the packed on-disk size of a single Inode record, in bytes:
	// valid(4) + size(4) + direct[5](20) + indirect(4).
	inodeSize = 32

	// InodesPerBlock is the number of Inode records that fit in a single
	// inode table block.
	InodesPerBlock = disk.BlockSize / inodeSize

	// MagicNumber identifies a block 0 as a valid SimpleFS superblock.
	MagicNumber = uint32(0xf0f03410)

	// MaxFileSize is the largest size, in bytes, a single inode can address:
	// its direct pointers plus one full indirect block.
	MaxFileSize = (PointersPerInode + PointersPerBlock) * disk.BlockSize
)

// SuperBlock is the metadata record stored in block 0 of every SimpleFS
// image.
type SuperBlock struct {
	MagicNumber uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// Inode describes one file's size and the blocks that hold its data.
type Inode struct {
	Valid    uint32
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

// IsValid reports whether this inode slot is currently in use.
func (n *Inode) IsValid() bool {
	return n.Valid != 0
}

// EncodeSuperBlock serializes sb into a freshly-zeroed, BlockSize-sized
// buffer suitable for writing to block 0. The bytewriter.Writer is used the
// way the teacher's boot-block formatter uses it: one binary.Write call per
// field, appended sequentially into the output slice.
func EncodeSuperBlock(sb SuperBlock) []byte {
	buf := make([]byte, disk.BlockSize)
	writer := bytewriter.New(buf)

	binary.Write(writer, binary.LittleEndian, sb.MagicNumber)
	binary.Write(writer, binary.LittleEndian, sb.Blocks)
	binary.Write(writer, binary.LittleEndian, sb.InodeBlocks)
	binary.Write(writer, binary.LittleEndian, sb.Inodes)

	return buf
}

// DecodeSuperBlock parses the first 16 bytes of a block read from block 0.
// The remainder of the block is reserved and ignored.
func DecodeSuperBlock(block []byte) (SuperBlock, error) {
	if len(block) < disk.BlockSize {
		return SuperBlock{}, errors.ErrBadArgs
	}

	var sb SuperBlock
	reader := bytes.NewReader(block)
	if err := binary.Read(reader, binary.LittleEndian, &sb.MagicNumber); err != nil {
		return SuperBlock{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &sb.Blocks); err != nil {
		return SuperBlock{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &sb.InodeBlocks); err != nil {
		return SuperBlock{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &sb.Inodes); err != nil {
		return SuperBlock{}, errors.ErrIOFailed.Wrap(err)
	}
	return sb, nil
}

// encodeInodeInto writes node's packed 32-byte representation into
// block[offset:offset+inodeSize].
func encodeInodeInto(block []byte, offset int, node Inode) error {
	if offset+inodeSize > len(block) {
		return errors.ErrBadArgs
	}
	writer := bytewriter.New(block[offset:])
	binary.Write(writer, binary.LittleEndian, node.Valid)
	binary.Write(writer, binary.LittleEndian, node.Size)
	binary.Write(writer, binary.LittleEndian, node.Direct)
	binary.Write(writer, binary.LittleEndian, node.Indirect)
	return nil
}

// decodeInodeAt parses the inodeSize-byte record at block[offset:] into an Inode.
func decodeInodeAt(block []byte, offset int) (Inode, error) {
	if offset+inodeSize > len(block) {
		return Inode{}, errors.ErrBadArgs
	}

	var node Inode
	reader := bytes.NewReader(block[offset : offset+inodeSize])
	if err := binary.Read(reader, binary.LittleEndian, &node.Valid); err != nil {
		return Inode{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &node.Size); err != nil {
		return Inode{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &node.Direct); err != nil {
		return Inode{}, errors.ErrIOFailed.Wrap(err)
	}
	if err := binary.Read(reader, binary.LittleEndian, &node.Indirect); err != nil {
		return Inode{}, errors.ErrIOFailed.Wrap(err)
	}
	return node, nil
}

// decodePointerBlock interprets a full data block as an indirect pointer
// block: u32[PointersPerBlock].
func decodePointerBlock(block []byte) ([PointersPerBlock]uint32, error) {
	var pointers [PointersPerBlock]uint32
	if len(block) < disk.BlockSize {
		return pointers, errors.ErrBadArgs
	}
	reader := bytes.NewReader(block)
	if err := binary.Read(reader, binary.LittleEndian, &pointers); err != nil {
		return pointers, errors.ErrIOFailed.Wrap(err)
	}
	return pointers, nil
}

// encodePointerBlock serializes an indirect pointer block back into a
// BlockSize-sized buffer.
func encodePointerBlock(pointers [PointersPerBlock]uint32) []byte {
	buf := make([]byte, disk.BlockSize)
	writer := bytewriter.New(buf)
	binary.Write(writer, binary.LittleEndian, pointers)
	return buf
}
