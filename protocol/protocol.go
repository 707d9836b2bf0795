// Package protocol implements the wire format shared by the file server and its clients.
//
// A request is a fixed 52 byte header (username, signature, body length) followed by an
// optional body. A response is one or more blocks, each made of a fixed 80 byte header
// followed by at most MaxBlockPayload bytes of payload. All integers are big-endian.
package protocol

import (
	"crypto/sha256"
	"fmt"
)

// Request header field widths.
const (
	LenUsername   = 16
	LenSignature  = 32
	LenBodyLength = 4

	RequestHeaderLen = LenUsername + LenSignature + LenBodyLength
)

// Response block header field widths.
const (
	LenPayloadLength = 4
	LenStatus        = 4
	LenBlockIndex    = 4
	LenBlockCount    = 4
	LenBlockHash     = sha256.Size
	LenTotalHash     = sha256.Size

	ResponseHeaderLen = LenPayloadLength + LenStatus + LenBlockIndex + LenBlockCount +
		LenBlockHash + LenTotalHash
)

// MsgMax is the largest single message either side sends or reads in one go.
const MsgMax = 8196

const (
	MaxBlockPayload = MsgMax - ResponseHeaderLen
	MaxRequestBody  = MsgMax - RequestHeaderLen
)

// Request header offsets.
const (
	offSignature  = LenUsername
	offBodyLength = offSignature + LenSignature
)

// Response header offsets.
const (
	offStatus     = LenPayloadLength
	offBlockIndex = offStatus + LenStatus
	offBlockCount = offBlockIndex + LenBlockIndex
	offBlockHash  = offBlockCount + LenBlockCount
	offTotalHash  = offBlockHash + LenBlockHash
)

type Status uint32

const (
	StatusOK           Status = 1
	StatusUserExists   Status = 2
	StatusUserMissing  Status = 3
	StatusInvalidLogin Status = 4
	StatusBadRequest   Status = 5
	StatusOther        Status = 6
	StatusMalformed    Status = 7
)

var statusNames = map[Status]string{
	StatusOK:           "OK",
	StatusUserExists:   "USER_EXISTS",
	StatusUserMissing:  "USER_MISSING",
	StatusInvalidLogin: "INVALID_LOGIN",
	StatusBadRequest:   "BAD_REQUEST",
	StatusOther:        "OTHER",
	StatusMalformed:    "MALFORMED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", uint32(s))
}

// Hash is a SHA-256 digest as carried in block headers.
type Hash [sha256.Size]byte

// Sum hashes data.
func Sum(data []byte) Hash {
	return sha256.Sum256(data)
}

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}
