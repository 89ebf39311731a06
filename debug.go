package simplefs

import (
	"fmt"
	"io"

	"github.com/cwarden/simplefs/disk"
)

// Debug reads block 0 of d and prints a superblock report, then walks the
// inode table printing a record for each valid inode. It does not require
// the disk to be mounted.
//
// Three quirks are preserved from the reference implementation intentionally
// (see spec.md §9 and the original fs_debug in original_source/):
//
//   - "magic number is valid" is printed unconditionally; fs_debug never
//     actually checks the magic number.
//   - If the superblock's inode count is 0, the report stops after the
//     block count — it never prints inode_blocks, inodes, or any inode
//     record. This looks like an unformatted image short-circuit, not a
//     deliberate feature, but it is externally observable and is kept for
//     byte-for-byte parity.
//   - Each valid inode is reported under its in-block index (0..InodesPerBlock-1),
//     not its global inode number. This is likely a bug in the reference but
//     is preserved for the same reason.
func Debug(w io.Writer, d *disk.Disk) error {
	block := make([]byte, disk.BlockSize)
	if _, err := d.ReadBlock(0, block); err != nil {
		return err
	}

	sb, err := DecodeSuperBlock(block)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "SuperBlock:\n")
	fmt.Fprintf(w, "    magic number is valid\n")
	fmt.Fprintf(w, "    %d blocks\n", sb.Blocks)
	if sb.Inodes == 0 {
		return nil
	}
	fmt.Fprintf(w, "    %d inode blocks\n", sb.InodeBlocks)
	fmt.Fprintf(w, "    %d inodes\n", sb.Inodes)

	for tableBlock := uint32(1); tableBlock <= sb.InodeBlocks; tableBlock++ {
		if _, err := d.ReadBlock(tableBlock, block); err != nil {
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

			fmt.Fprintf(w, "Inode %d:\n", slot)
			fmt.Fprintf(w, "    size: %d bytes\n", node.Size)
			fmt.Fprintf(w, "    direct blocks:")
			for _, ptr := range node.Direct {
				if ptr == 0 {
					break
				}
				fmt.Fprintf(w, " %d", ptr)
			}
			fmt.Fprintf(w, "\n")

			if node.Indirect != 0 {
				fmt.Fprintf(w, "    indirect block: %d\n", node.Indirect)

				pointerBlock := make([]byte, disk.BlockSize)
				if _, err := d.ReadBlock(node.Indirect, pointerBlock); err != nil {
					return err
				}
				pointers, err := decodePointerBlock(pointerBlock)
				if err != nil {
					return err
				}

				fmt.Fprintf(w, "    indirect data blocks:")
				for _, ptr := range pointers {
					if ptr == 0 {
						break
					}
					fmt.Fprintf(w, " %d", ptr)
				}
				fmt.Fprintf(w, "\n")
			}
		}
	}

	return nil
}
