// Package errors defines the small, fixed vocabulary of sentinel errors
// shared by the disk and simplefs packages.
package errors

import "fmt"

// SimpleFSError is a sentinel error value, the way syscall errno codes are
// sentinels: callers compare against the package-level constants with
// errors.Is rather than matching error strings.
type SimpleFSError string

const (
	// ErrBadArgs means a caller-supplied argument was missing or out of
	// range: a nil buffer, a block number at or beyond the disk's size, an
	// inode number at or beyond the inode table's size.
	ErrBadArgs = SimpleFSError("bad arguments")

	// ErrIOFailed means a read or write to the underlying disk image failed.
	// The reference implementation treats this as unreachable and asserts;
	// this rewrite surfaces it to the caller instead.
	ErrIOFailed = SimpleFSError("disk i/o failed")

	// ErrNotFound means an inode number pointed at a slot whose valid flag
	// was not set.
	ErrNotFound = SimpleFSError("inode not found")

	// ErrInvalidArgument means a value was syntactically fine but semantically
	// unacceptable, such as formatting a disk with fewer than two blocks.
	ErrInvalidArgument = SimpleFSError("invalid argument")

	// ErrNoSpace means there is no free slot left to give out: Create returns
	// it when every inode in the table is in use.
	ErrNoSpace = SimpleFSError("no space left on disk image")

	// ErrAlreadyMounted means a FileSystem handle already has a disk bound
	// to it.
	ErrAlreadyMounted = SimpleFSError("already mounted")

	// ErrNotMounted means an operation that requires a mounted FileSystem was
	// called on one that has no disk bound to it.
	ErrNotMounted = SimpleFSError("not mounted")

	// ErrCorruptSuperBlock means the on-disk superblock failed one or more of
	// its invariant checks during mount.
	ErrCorruptSuperBlock = SimpleFSError("corrupt superblock")
)

// Error implements the error interface.
func (e SimpleFSError) Error() string {
	return string(e)
}

// WithMessage returns a new error that reports as "<e>: <message>" but still
// satisfies errors.Is against e.
func (e SimpleFSError) WithMessage(message string) error {
	return &wrappedError{
		message: fmt.Sprintf("%s: %s", e.Error(), message),
		parent:  e,
	}
}

// Wrap returns a new error that reports as "<e>: <err>" and satisfies
// errors.Is against both e and err.
func (e SimpleFSError) Wrap(err error) error {
	return &wrappedError{
		message: fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		parent:  e,
		cause:   err,
	}
}

// wrappedError carries a sentinel plus free-form context, and optionally an
// underlying cause distinct from the sentinel itself.
type wrappedError struct {
	message string
	parent  error
	cause   error
}

func (e *wrappedError) Error() string {
	return e.message
}

// Unwrap lets errors.Is/errors.As see through to both the sentinel and, if
// present, the wrapped cause.
func (e *wrappedError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.parent, e.cause}
	}
	return []error{e.parent}
}
