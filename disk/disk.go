// Package disk implements the block device emulator SimpleFS is built on: a
// thin positional read/write over a host file, truncated to a fixed number
// of fixed-size blocks, with read/write counters reported on close.
package disk

import (
	"fmt"
	"io"
	"os"

	"github.com/cwarden/simplefs/errors"
)

// BlockSize is the fixed size, in bytes, of every block on a SimpleFS disk
// image. All reads and writes are exactly this many bytes.
const BlockSize = 4096

// Disk is a positional block device backed by a host file. Disk does not
// record which FileSystem has it mounted; FileSystem.Mount refuses a handle
// that already has a disk, but nothing stops two handles from mounting the
// same Disk.
type Disk struct {
	file   *os.File
	blocks uint32
	reads  uint64
	writes uint64
	// output is where Close reports its read/write counts. Defaults to
	// os.Stdout; tests redirect it with SetOutput.
	output io.Writer
}

// Open creates or truncates the file at path to hold exactly `blocks`
// BlockSize-sized blocks and returns a Disk bound to it.
func Open(path string, blocks uint32) (*Disk, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.ErrIOFailed.Wrap(err)
	}

	size := int64(blocks) * BlockSize
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, errors.ErrIOFailed.Wrap(err)
	}

	return &Disk{file: file, blocks: blocks, output: os.Stdout}, nil
}

// SetOutput redirects where Close reports its read/write counts. Tests use
// this to capture the report instead of letting it go to stdout.
func (d *Disk) SetOutput(w io.Writer) {
	d.output = w
}

// Blocks returns the total number of blocks on the disk image.
func (d *Disk) Blocks() uint32 {
	return d.blocks
}

// Reads returns the number of successful block reads performed so far.
func (d *Disk) Reads() uint64 {
	return d.reads
}

// Writes returns the number of successful block writes performed so far.
func (d *Disk) Writes() uint64 {
	return d.writes
}

// checkBounds validates a block number and buffer the way the reference
// implementation's disk_sanity_check does, before any I/O is attempted.
func (d *Disk) checkBounds(block uint32, buf []byte) error {
	if d == nil || buf == nil {
		return errors.ErrBadArgs
	}
	if block >= d.blocks {
		return errors.ErrBadArgs.WithMessage(
			fmt.Sprintf("block %d out of range [0, %d)", block, d.blocks))
	}
	if len(buf) < BlockSize {
		return errors.ErrBadArgs.WithMessage(
			fmt.Sprintf("buffer too small: need %d bytes, got %d", BlockSize, len(buf)))
	}
	return nil
}

func (d *Disk) seekToBlock(block uint32) error {
	offset := int64(block) * BlockSize
	if _, err := d.file.Seek(offset, io.SeekStart); err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ReadBlock reads exactly BlockSize bytes from the given block into buf[:BlockSize]
// and returns the number of bytes read. End-of-file mid-read (a short read on
// a disk image whose backing file was truncated out from under it) is
// reported as ErrIOFailed; callers are expected to have formatted the image
// first.
func (d *Disk) ReadBlock(block uint32, buf []byte) (int, error) {
	if err := d.checkBounds(block, buf); err != nil {
		return 0, err
	}
	if err := d.seekToBlock(block); err != nil {
		return 0, err
	}

	n, err := io.ReadFull(d.file, buf[:BlockSize])
	if err != nil {
		return 0, errors.ErrIOFailed.Wrap(err)
	}

	d.reads++
	return n, nil
}

// WriteBlock writes buf[:BlockSize] to the given block and returns the
// number of bytes written.
func (d *Disk) WriteBlock(block uint32, buf []byte) (int, error) {
	if err := d.checkBounds(block, buf); err != nil {
		return 0, err
	}
	if err := d.seekToBlock(block); err != nil {
		return 0, err
	}

	n, err := d.file.Write(buf[:BlockSize])
	if err != nil {
		return 0, errors.ErrIOFailed.Wrap(err)
	}

	d.writes++
	return n, nil
}

// Close closes the host file descriptor and writes the accumulated read and
// write counts to its output (stdout by default) in the stable format tests
// depend on. The disk is unusable after Close returns, regardless of
// whether it returns an error.
func (d *Disk) Close() error {
	if d == nil || d.file == nil {
		return nil
	}

	closeErr := d.file.Close()

	out := d.output
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "%d disk block reads\n", d.reads)
	fmt.Fprintf(out, "%d disk block writes\n", d.writes)

	if closeErr != nil {
		return errors.ErrIOFailed.Wrap(closeErr)
	}
	return nil
}
