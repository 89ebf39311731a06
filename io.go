package simplefs

import (
	stderrors "errors"

	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/errors"
)

// Read copies up to len(buf) bytes from the given inode starting at offset
// into buf, and returns the number of bytes actually copied.
//
// If offset is at or past the inode's size, Read returns (0, nil) — not an
// error — deliberately asymmetric with Write's handling of offset == size.
// If offset+len(buf) crosses the inode's size, the read is clamped to
// size-offset. An invalid inode number reports (-1, nil); a genuine disk
// I/O failure while loading the inode is returned as an error instead.
func (fs *FileSystem) Read(inodeNumber int64, buf []byte, offset int64) (int, error) {
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

	size := int64(node.Size)
	if offset >= size {
		return 0, nil
	}

	length := int64(len(buf))
	if offset+length > size {
		length = size - offset
	}

	var sum int64
	blockBuf := make([]byte, disk.BlockSize)

	i := int(offset / disk.BlockSize)
	for ; i < PointersPerInode && sum < length; i++ {
		if node.Direct[i] == 0 {
			break
		}
		if _, err := fs.disk.ReadBlock(node.Direct[i], blockBuf); err != nil {
			return int(sum), err
		}

		n, newOffset := copyFromBlock(buf, sum, blockBuf, offset, length-sum)
		sum += n
		offset = newOffset
	}

	if sum < length && node.Indirect != 0 {
		i -= PointersPerInode
		pointerBlock := make([]byte, disk.BlockSize)
		if _, err := fs.disk.ReadBlock(node.Indirect, pointerBlock); err != nil {
			return int(sum), err
		}
		pointers, err := decodePointerBlock(pointerBlock)
		if err != nil {
			return int(sum), err
		}

		for ; i < PointersPerBlock && sum < length; i++ {
			if pointers[i] == 0 {
				break
			}
			if _, err := fs.disk.ReadBlock(pointers[i], blockBuf); err != nil {
				return int(sum), err
			}

			n, newOffset := copyFromBlock(buf, sum, blockBuf, offset, length-sum)
			sum += n
			offset = newOffset
		}
	}

	return int(sum), nil
}

// copyFromBlock copies min(remaining, BlockSize - offset%BlockSize) bytes
// from blockBuf into dst[sum:], starting at the within-block position
// derived from offset. It returns the number of bytes copied and the
// advanced offset.
func copyFromBlock(dst []byte, sum int64, blockBuf []byte, offset, remaining int64) (int64, int64) {
	withinBlock := offset % disk.BlockSize
	spaceInBlock := int64(disk.BlockSize) - withinBlock
	n := remaining
	if spaceInBlock < n {
		n = spaceInBlock
	}

	copy(dst[sum:sum+n], blockBuf[withinBlock:withinBlock+n])
	return n, offset + n
}

// Write copies len(buf) bytes into the given inode starting at offset,
// extending the inode with freshly allocated blocks as needed, and returns
// the number of bytes actually written.
//
// Write accepts offset == size (a pure append) but rejects offset > size,
// which would create a hole past the current end, by returning (0, nil).
// If the allocator runs out of blocks partway through, the bytes already
// copied remain persisted and are reflected in both the return value and
// the inode's updated size. An invalid inode number reports (-1, nil); a
// genuine disk I/O failure while loading the inode is returned as an error
// instead.
func (fs *FileSystem) Write(inodeNumber int64, buf []byte, offset int64) (int, error) {
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

	if offset > int64(node.Size) {
		return 0, nil
	}

	length := int64(len(buf))
	var written int64
	exhausted := false

	point := int(offset / disk.BlockSize)
	for ; point < PointersPerInode && length > 0; point++ {
		block := make([]byte, disk.BlockSize)
		if node.Direct[point] == 0 {
			allocated := fs.free.allocate()
			if allocated == 0 {
				Logger.WithField("inode", inodeNumber).Warn("allocator exhausted, write truncated")
				exhausted = true
				break
			}
			node.Direct[point] = allocated
		} else if _, err := fs.disk.ReadBlock(node.Direct[point], block); err != nil {
			return int(written), err
		}

		n := copyIntoBlock(block, offset, buf[written:], length)
		if _, err := fs.disk.WriteBlock(node.Direct[point], block); err != nil {
			return int(written), err
		}

		length -= n
		offset += n
		written += n
	}

	if !exhausted && length > 0 {
		point -= PointersPerInode

		var pointerBlockBuf []byte
		if node.Indirect == 0 {
			allocated := fs.free.allocate()
			if allocated == 0 {
				Logger.WithField("inode", inodeNumber).Warn("allocator exhausted, write truncated")
				exhausted = true
			} else {
				node.Indirect = allocated
				pointerBlockBuf = make([]byte, disk.BlockSize)
			}
		} else {
			pointerBlockBuf = make([]byte, disk.BlockSize)
			if _, err := fs.disk.ReadBlock(node.Indirect, pointerBlockBuf); err != nil {
				return int(written), err
			}
		}

		if !exhausted {
			pointers, err := decodePointerBlock(pointerBlockBuf)
			if err != nil {
				return int(written), err
			}

			for length > 0 {
				if point == PointersPerBlock {
					break
				}

				dataBlock := make([]byte, disk.BlockSize)
				if pointers[point] == 0 {
					allocated := fs.free.allocate()
					if allocated == 0 {
						Logger.WithField("inode", inodeNumber).Warn("allocator exhausted, write truncated")
						break
					}
					pointers[point] = allocated
				} else if _, err := fs.disk.ReadBlock(pointers[point], dataBlock); err != nil {
					return int(written), err
				}

				n := copyIntoBlock(dataBlock, offset, buf[written:], length)
				if _, err := fs.disk.WriteBlock(pointers[point], dataBlock); err != nil {
					return int(written), err
				}

				length -= n
				offset += n
				written += n
				point++
			}

			if _, err := fs.disk.WriteBlock(node.Indirect, encodePointerBlock(pointers)); err != nil {
				return int(written), err
			}
		}
	}

	if offset > int64(node.Size) {
		node.Size = uint32(offset)
	}
	if err := fs.saveInode(inodeNumber, node); err != nil {
		return int(written), err
	}

	return int(written), nil
}

// copyIntoBlock copies min(remaining, BlockSize - offset%BlockSize) bytes
// from src into block, starting at the within-block position derived from
// offset, and returns the number of bytes copied.
func copyIntoBlock(block []byte, offset int64, src []byte, remaining int64) int64 {
	withinBlock := offset % disk.BlockSize
	spaceInBlock := int64(disk.BlockSize) - withinBlock
	n := remaining
	if spaceInBlock < n {
		n = spaceInBlock
	}
	if int64(len(src)) < n {
		n = int64(len(src))
	}

	copy(block[withinBlock:withinBlock+n], src[:n])
	return n
}
