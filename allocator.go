package simplefs

import (
	bitmap "github.com/boljen/go-bitmap"
)

// freeBlockMap is the in-memory free-block bitmap, rebuilt at mount from the
// on-disk inode table. true means in use (or reserved); false means
// allocatable. It wraps github.com/boljen/go-bitmap the way the teacher's
// drivers/common.Allocator wraps it for its own block allocation bitmap.
type freeBlockMap struct {
	bits  bitmap.Bitmap
	total uint32
}

func newFreeBlockMap(total uint32) freeBlockMap {
	return freeBlockMap{
		bits:  bitmap.New(int(total)),
		total: total,
	}
}

func (m *freeBlockMap) isUsed(block uint32) bool {
	return m.bits.Get(int(block))
}

func (m *freeBlockMap) markUsed(block uint32) {
	m.bits.Set(int(block), true)
}

func (m *freeBlockMap) markFree(block uint32) {
	m.bits.Set(int(block), false)
}

// countUsed returns the number of blocks currently marked in use, for the
// bitmap-conservation property and for diagnostic logging.
func (m *freeBlockMap) countUsed() int {
	count := 0
	for i := uint32(0); i < m.total; i++ {
		if m.isUsed(i) {
			count++
		}
	}
	return count
}

// allocate performs a linear scan from index 1 (block 0 is the superblock
// and is never allocatable) for the first free block, marks it used, and
// returns it. It returns 0 to signal exhaustion, matching
// fs_allocate_free_block's sentinel in spec.md.
func (m *freeBlockMap) allocate() uint32 {
	for i := uint32(1); i < m.total; i++ {
		if !m.isUsed(i) {
			m.markUsed(i)
			return i
		}
	}
	return 0
}
