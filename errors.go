// Package bwfs provides the shared types for the Black & White image
// Filesystem: error codes, inode kinds and layout constants, and the mount-time
// configuration struct consumed by the CLI front ends and the engine.
package bwfs

import (
	"fmt"
	"syscall"
)

// ErrorKind classifies a DriverError independent of the host platform's
// concrete errno values, so engine-internal logic can switch on it.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindNotADirectory
	KindIsADirectory
	KindAlreadyExists
	KindDirNotEmpty
	KindNoSpace
	KindFileTooLarge
	KindInvalidArgument
	KindIOError
)

// DriverError is a wrapper around a system errno code with a customizable
// message, mirroring the teacher's DriverError but additionally carrying
// an ErrorKind so callers don't need to compare against platform-specific
// syscall.Errno values.
type DriverError struct {
	Kind      ErrorKind
	ErrnoCode syscall.Errno
	message   string
}

func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

func (e *DriverError) Errno() syscall.Errno {
	return e.ErrnoCode
}

func newError(kind ErrorKind, errno syscall.Errno, format string, args ...any) *DriverError {
	return &DriverError{
		Kind:      kind,
		ErrnoCode: errno,
		message:   fmt.Sprintf(format, args...),
	}
}

func ErrNotFound(format string, args ...any) *DriverError {
	return newError(KindNotFound, syscall.ENOENT, format, args...)
}

func ErrNotADirectory(format string, args ...any) *DriverError {
	return newError(KindNotADirectory, syscall.ENOTDIR, format, args...)
}

func ErrIsADirectory(format string, args ...any) *DriverError {
	return newError(KindIsADirectory, syscall.EISDIR, format, args...)
}

func ErrAlreadyExists(format string, args ...any) *DriverError {
	return newError(KindAlreadyExists, syscall.EEXIST, format, args...)
}

func ErrDirNotEmpty(format string, args ...any) *DriverError {
	return newError(KindDirNotEmpty, syscall.ENOTEMPTY, format, args...)
}

func ErrNoSpace(format string, args ...any) *DriverError {
	return newError(KindNoSpace, syscall.ENOSPC, format, args...)
}

func ErrFileTooLarge(format string, args ...any) *DriverError {
	return newError(KindFileTooLarge, syscall.EFBIG, format, args...)
}

func ErrInvalidArgument(format string, args ...any) *DriverError {
	return newError(KindInvalidArgument, syscall.EINVAL, format, args...)
}

func ErrIOError(format string, args ...any) *DriverError {
	return newError(KindIOError, syscall.EIO, format, args...)
}
