package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic  = fmt.Errorf("worker panic")
	ErrHandlerPanic = fmt.Errorf("connection handler panic")

	// Request framing
	ErrShortHeader      = fmt.Errorf("request shorter than the fixed header")
	ErrMalformedRequest = fmt.Errorf("malformed request")
	ErrBodyTooLarge     = fmt.Errorf("request body exceeds the message size limit")

	// Registration and login
	ErrEmptyUsername      = fmt.Errorf("empty username")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrInvalidSignature   = fmt.Errorf("invalid signature")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Resources
	ErrInvalidPath      = fmt.Errorf("invalid resource path")
	ErrPathOutsideRoot  = fmt.Errorf("resource path escapes the serving root")
	ErrResourceNotFound = fmt.Errorf("resource not found")
	ErrNotAFile         = fmt.Errorf("resource is not a file")

	// Client side block verification
	ErrBlockChecksum     = fmt.Errorf("block checksum mismatch")
	ErrTotalChecksum     = fmt.Errorf("total checksum mismatch")
	ErrBlockOutOfOrder   = fmt.Errorf("block received out of order")
	ErrInconsistentBlock = fmt.Errorf("block header inconsistent with previous blocks")
	ErrPayloadTooLarge   = fmt.Errorf("block payload exceeds the message size limit")
	ErrIncompleteReply   = fmt.Errorf("response ended before the last block")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
