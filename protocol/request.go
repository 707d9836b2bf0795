package protocol

import (
	"bytes"
	"encoding/binary"
	"fileserver-lab/errors"
	"fmt"
	"io"
)

// Request is a decoded client request.
// A zero BodyLength is a registration, anything else a fetch whose body is the resource path.
type Request struct {
	Username   string
	Signature  []byte
	BodyLength uint32
	Body       []byte
}

// IsRegistration reports whether the request asks to register Username.
func (r Request) IsRegistration() bool {
	return r.BodyLength == 0
}

// Malformed reports whether the body actually received differs from the declared length.
func (r Request) Malformed() bool {
	return uint64(len(r.Body)) != uint64(r.BodyLength)
}

// DecodeRequest parses raw into a Request.
// It only fails when raw does not hold a complete header. Every byte after the header is kept
// as the body, so a body shorter or longer than declared still decodes; callers check
// Malformed before dispatching.
func DecodeRequest(raw []byte) (Request, error) {
	if len(raw) < RequestHeaderLen {
		return Request{}, fmt.Errorf("%w: got %d of %d bytes", errors.ErrShortHeader, len(raw), RequestHeaderLen)
	}

	bodyLength := binary.BigEndian.Uint32(raw[offBodyLength:RequestHeaderLen])
	body := raw[RequestHeaderLen:]

	return Request{
		Username:   string(bytes.TrimRight(raw[:LenUsername], "\x00")),
		Signature:  bytes.Clone(raw[offSignature:offBodyLength]),
		BodyLength: bodyLength,
		Body:       bytes.Clone(body),
	}, nil
}

// EncodeRequest builds the wire form of a request.
// The username is NUL-padded or truncated to LenUsername bytes and the signature to LenSignature bytes.
func EncodeRequest(username string, signature, body []byte) ([]byte, error) {
	if len(body) > MaxRequestBody {
		return nil, fmt.Errorf("%w: %d bytes (limit is %d)", errors.ErrBodyTooLarge, len(body), MaxRequestBody)
	}

	raw := make([]byte, RequestHeaderLen+len(body))
	copy(raw[:LenUsername], username)
	copy(raw[offSignature:offBodyLength], signature)
	binary.BigEndian.PutUint32(raw[offBodyLength:RequestHeaderLen], uint32(len(body)))
	copy(raw[RequestHeaderLen:], body)
	return raw, nil
}

// ReadRequest reads one request from r: the fixed header, then the declared body.
// The bytes read so far are always returned, together with the error that stopped the read,
// so that a truncated body can still be decoded and answered as malformed.
// A declared body larger than MaxRequestBody is not read at all.
func ReadRequest(r io.Reader) ([]byte, error) {
	header := make([]byte, RequestHeaderLen)
	n, err := io.ReadFull(r, header)
	if err != nil {
		return header[:n], err
	}

	bodyLength := binary.BigEndian.Uint32(header[offBodyLength:])
	if uint64(bodyLength) > MaxRequestBody {
		return header, nil
	}

	raw := make([]byte, RequestHeaderLen+int(bodyLength))
	copy(raw, header)
	n, err = io.ReadFull(r, raw[RequestHeaderLen:])
	return raw[:RequestHeaderLen+n], err
}

// ReadTrailing appends to raw whatever the peer sent after a complete request, so that
// excess body bytes are seen by Malformed. At least one byte is attempted even when raw
// already fills MsgMax. Reading stops at end of stream, which is not an error, or at the
// first other error, which the caller decides on (typically a read deadline).
func ReadTrailing(r io.Reader, raw []byte) ([]byte, error) {
	excess := make([]byte, max(MsgMax-len(raw), 1))
	n, err := io.ReadFull(r, excess)
	raw = append(raw, excess[:n]...)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return raw, nil
	}
	return raw, err
}
