package simplefs

import (
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/errors"
)

// FileSystem is the mounted runtime state over a single disk.Disk: the
// cached superblock and the in-memory free-block bitmap reconstructed from
// on-disk inode contents at mount time. It is not safe for concurrent use;
// callers serialize access externally, per spec.md §5.
type FileSystem struct {
	disk *disk.Disk
	meta SuperBlock
	free freeBlockMap
}

// New returns an unmounted FileSystem handle.
func New() *FileSystem {
	return &FileSystem{}
}

// Mounted reports whether a disk is currently bound to this handle.
func (fs *FileSystem) Mounted() bool {
	return fs.disk != nil
}

// UsedBlockCount returns the number of blocks currently marked in use in
// the free-block bitmap. It exists mainly to let tests assert the bitmap
// conservation property: remounting a disk must reconstruct the same count.
func (fs *FileSystem) UsedBlockCount() int {
	return fs.free.countUsed()
}

// Format writes a fresh superblock and zeroes every remaining block on d.
// It fails if d has fewer than two blocks. Format takes no FileSystem handle
// and does not check whether d is currently mounted.
func Format(d *disk.Disk) error {
	if d == nil {
		return errors.ErrBadArgs
	}

	blocks := d.Blocks()
	if blocks < 2 {
		return errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("disk must have at least 2 blocks, got %d", blocks))
	}

	inodeBlocks := blocks / 10
	if inodeBlocks == 0 {
		inodeBlocks = 1
	}

	sb := SuperBlock{
		MagicNumber: MagicNumber,
		Blocks:      blocks,
		InodeBlocks: inodeBlocks,
		Inodes:      inodeBlocks * InodesPerBlock,
	}

	if _, err := d.WriteBlock(0, EncodeSuperBlock(sb)); err != nil {
		return err
	}

	zero := make([]byte, disk.BlockSize)
	for i := uint32(1); i < blocks; i++ {
		if _, err := d.WriteBlock(i, zero); err != nil {
			return err
		}
	}

	return nil
}

// Mount binds d to fs, validating the on-disk superblock and reconstructing
// the free-block bitmap from the inode table. Every invariant violation
// found is collected into the returned multierror.Error instead of failing
// fast on the first one, so a caller sees the complete picture of why a
// corrupt image was rejected.
func (fs *FileSystem) Mount(d *disk.Disk) error {
	if fs.Mounted() {
		return errors.ErrAlreadyMounted
	}
	if d == nil {
		return errors.ErrBadArgs
	}

	block := make([]byte, disk.BlockSize)
	if _, err := d.ReadBlock(0, block); err != nil {
		return err
	}

	sb, err := DecodeSuperBlock(block)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if sb.MagicNumber != MagicNumber {
		result = multierror.Append(result, errors.ErrCorruptSuperBlock.WithMessage(
			fmt.Sprintf("bad magic number %#x", sb.MagicNumber)))
	}
	if sb.Blocks != d.Blocks() {
		result = multierror.Append(result, errors.ErrCorruptSuperBlock.WithMessage(
			fmt.Sprintf("superblock blocks=%d but disk has %d", sb.Blocks, d.Blocks())))
	}
	if sb.Inodes != sb.InodeBlocks*InodesPerBlock {
		result = multierror.Append(result, errors.ErrCorruptSuperBlock.WithMessage(
			fmt.Sprintf("inodes=%d is not inode_blocks(%d)*%d", sb.Inodes, sb.InodeBlocks, InodesPerBlock)))
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	fs.disk = d
	fs.meta = sb
	fs.free = newFreeBlockMap(sb.Blocks)

	if err := fs.rebuildFreeBlockMap(); err != nil {
		fs.disk = nil
		return err
	}

	Logger.WithFields(logFieldsForMount(fs)).Debug("mounted simplefs image")
	return nil
}

func logFieldsForMount(fs *FileSystem) map[string]any {
	return map[string]any{
		"blocks":        fs.meta.Blocks,
		"inode_blocks":  fs.meta.InodeBlocks,
		"blocks_in_use": fs.free.countUsed(),
	}
}

// rebuildFreeBlockMap implements spec.md §4.3 step 3: block 0 and the inode
// table blocks are always reserved; every block reachable from a valid
// inode's direct pointers or indirect block is then marked in use.
func (fs *FileSystem) rebuildFreeBlockMap() error {
	fs.free.markUsed(0)
	for i := uint32(1); i <= fs.meta.InodeBlocks; i++ {
		fs.free.markUsed(i)
	}

	block := make([]byte, disk.BlockSize)
	for tableBlock := uint32(1); tableBlock <= fs.meta.InodeBlocks; tableBlock++ {
		if _, err := fs.disk.ReadBlock(tableBlock, block); err != nil {
			return err
		}

		for slot := 0; slot < InodesPerBlock; slot++ {
			node, err := decodeInodeAt(block, slot*inodeSize)
			if err != nil {
				return err
			}
			if !node.IsValid() {
				continue
			}

			for _, ptr := range node.Direct {
				if ptr == 0 {
					break
				}
				fs.free.markUsed(ptr)
			}

			if node.Indirect != 0 {
				if err := fs.markIndirectBlockUsed(node.Indirect); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (fs *FileSystem) markIndirectBlockUsed(indirect uint32) error {
	fs.free.markUsed(indirect)

	block := make([]byte, disk.BlockSize)
	if _, err := fs.disk.ReadBlock(indirect, block); err != nil {
		return err
	}
	pointers, err := decodePointerBlock(block)
	if err != nil {
		return err
	}

	for _, ptr := range pointers {
		if ptr == 0 {
			break
		}
		fs.free.markUsed(ptr)
	}
	return nil
}

// Unmount releases the free-block bitmap and detaches the disk. There is no
// on-disk change: every operation already leaves the disk in a consistent
// state.
func (fs *FileSystem) Unmount() {
	fs.disk = nil
	fs.meta = SuperBlock{}
	fs.free = freeBlockMap{}
}

// Create scans the inode table for the first free slot, marks it valid, and
// returns its inode number. It returns -1 if the table is full.
func (fs *FileSystem) Create() (int64, error) {
	if !fs.Mounted() {
		return -1, errors.ErrNotMounted
	}

	block := make([]byte, disk.BlockSize)
	for tableBlock := uint32(1); tableBlock <= fs.meta.InodeBlocks; tableBlock++ {
		if _, err := fs.disk.ReadBlock(tableBlock, block); err != nil {
			return -1, err
		}

		for slot := 0; slot < InodesPerBlock; slot++ {
			node, err := decodeInodeAt(block, slot*inodeSize)
			if err != nil {
				return -1, err
			}
			if node.IsValid() {
				continue
			}

			index := int64(tableBlock-1)*InodesPerBlock + int64(slot)
			fresh := Inode{Valid: 1, Indirect: 0}
			if err := fs.saveInode(index, fresh); err != nil {
				return -1, err
			}
			return index, nil
		}
	}

	return -1, errors.ErrNoSpace
}

// Remove frees every block referenced by the given inode and zeroes its
// record. It fails with ErrNotFound if the inode is not currently valid.
func (fs *FileSystem) Remove(inodeNumber int64) error {
	if !fs.Mounted() {
		return errors.ErrNotMounted
	}

	node, err := fs.loadInode(inodeNumber)
	if err != nil {
		return err
	}

	for _, ptr := range node.Direct {
		if ptr == 0 {
			break
		}
		fs.free.markFree(ptr)
	}

	if node.Indirect != 0 {
		block := make([]byte, disk.BlockSize)
		if _, err := fs.disk.ReadBlock(node.Indirect, block); err != nil {
			return err
		}
		pointers, err := decodePointerBlock(block)
		if err != nil {
			return err
		}

		freedAny := false
		for _, ptr := range pointers {
			if ptr == 0 {
				break
			}
			fs.free.markFree(ptr)
			freedAny = true
		}
		// Only free the indirect block itself if it held at least one data
		// pointer, matching the reference implementation's fs_remove.
		if freedAny {
			fs.free.markFree(node.Indirect)
		}
	}

	return fs.saveInode(inodeNumber, Inode{})
}

// Stat returns the logical size of the given inode, or -1 if it is not
// valid. A genuine disk I/O failure while reading the inode table is
// propagated rather than collapsed into the bare sentinel.
func (fs *FileSystem) Stat(inodeNumber int64) (int64, error) {
	if !fs.Mounted() {
		return -1, errors.ErrNotMounted
	}

	node, err := fs.loadInode(inodeNumber)
	if err != nil {
		if stderrors.Is(err, errors.ErrBadArgs) || stderrors.Is(err, errors.ErrNotFound) {
			return -1, nil
		}
		return -1, err
	}
	return int64(node.Size), nil
}
