package server

import (
	"fileserver-lab/errors"
	"fileserver-lab/protocol"
)

var statusBySentinel = []struct {
	sentinel error
	status   protocol.Status
}{
	{errors.ErrMalformedRequest, protocol.StatusMalformed},
	{errors.ErrUserAlreadyExists, protocol.StatusUserExists},
	{errors.ErrUserNotFound, protocol.StatusUserMissing},
	{errors.ErrInvalidCredentials, protocol.StatusInvalidLogin},
	{errors.ErrEmptyUsername, protocol.StatusBadRequest},
	{errors.ErrInvalidUsername, protocol.StatusBadRequest},
	{errors.ErrInvalidSignature, protocol.StatusBadRequest},
	{errors.ErrInvalidPath, protocol.StatusBadRequest},
	{errors.ErrPathOutsideRoot, protocol.StatusBadRequest},
	{errors.ErrResourceNotFound, protocol.StatusBadRequest},
	{errors.ErrNotAFile, protocol.StatusBadRequest},
}

// statusFor maps a dispatch error onto the status sent to the client.
// Anything not listed is reported as StatusOther.
func statusFor(err error) protocol.Status {
	if err == nil {
		return protocol.StatusOK
	}
	for _, entry := range statusBySentinel {
		if errors.Is(err, entry.sentinel) {
			return entry.status
		}
	}
	return protocol.StatusOther
}
