package simplefs

import (
	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/errors"
)

// inodeTableBlock returns the inode table block number that holds inodeNumber.
func inodeTableBlock(inodeNumber int64) uint32 {
	return uint32(inodeNumber/InodesPerBlock) + 1
}

// loadInode reads the inode table block holding inodeNumber and returns the
// record at the modulus-derived slot within it, matching spec.md's note
// that load_inode must use the modulus for both the validity check and the
// copy (the reference implementation's bug of indexing the raw inode number
// first is not reproduced here).
func (fs *FileSystem) loadInode(inodeNumber int64) (Inode, error) {
	if inodeNumber < 0 || inodeNumber >= int64(fs.meta.Inodes) {
		return Inode{}, errors.ErrBadArgs
	}

	block := make([]byte, disk.BlockSize)
	if _, err := fs.disk.ReadBlock(inodeTableBlock(inodeNumber), block); err != nil {
		return Inode{}, err
	}

	slot := int(inodeNumber % InodesPerBlock)
	node, err := decodeInodeAt(block, slot*inodeSize)
	if err != nil {
		return Inode{}, err
	}
	if !node.IsValid() {
		return Inode{}, errors.ErrNotFound
	}
	return node, nil
}

// saveInode reads the inode table block holding inodeNumber, overwrites the
// slot for inodeNumber with node, and writes the block back. This is always
// a single-block read-modify-write; there is no coalescing across adjacent
// saves, matching spec.md §4.5.
func (fs *FileSystem) saveInode(inodeNumber int64, node Inode) error {
	if inodeNumber < 0 || inodeNumber >= int64(fs.meta.Inodes) {
		return errors.ErrBadArgs
	}

	tableBlock := inodeTableBlock(inodeNumber)
	block := make([]byte, disk.BlockSize)
	if _, err := fs.disk.ReadBlock(tableBlock, block); err != nil {
		return err
	}

	slot := int(inodeNumber % InodesPerBlock)
	if err := encodeInodeInto(block, slot*inodeSize, node); err != nil {
		return err
	}

	_, err := fs.disk.WriteBlock(tableBlock, block)
	return err
}
