package protocol

import (
	"bytes"
	"encoding/binary"
	"fileserver-lab/errors"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// BlockHeader is the fixed part of a response block.
type BlockHeader struct {
	PayloadLength uint32
	Status        Status
	BlockIndex    uint32
	BlockCount    uint32
	BlockHash     Hash
	TotalHash     Hash
}

// ResponseBlock is one physical block of a logical response.
type ResponseBlock struct {
	BlockHeader
	Payload []byte
}

// Verify checks the block hash against the payload.
func (b ResponseBlock) Verify() bool {
	return Sum(b.Payload) == b.BlockHash
}

// Chunk splits a logical payload into block payloads of at most MaxBlockPayload bytes.
// An empty payload yields a single empty block so that every response has at least one block.
func Chunk(payload []byte) [][]byte {
	chunks := lo.Chunk(payload, MaxBlockPayload)
	if len(chunks) == 0 {
		return [][]byte{{}}
	}
	return chunks
}

// EncodeResponseBlock builds the wire form of one block.
func EncodeResponseBlock(status Status, index, count uint32, payload []byte, total Hash) []byte {
	raw := make([]byte, ResponseHeaderLen+len(payload))
	binary.BigEndian.PutUint32(raw[:offStatus], uint32(len(payload)))
	binary.BigEndian.PutUint32(raw[offStatus:offBlockIndex], uint32(status))
	binary.BigEndian.PutUint32(raw[offBlockIndex:offBlockCount], index)
	binary.BigEndian.PutUint32(raw[offBlockCount:offBlockHash], count)
	blockHash := Sum(payload)
	copy(raw[offBlockHash:offTotalHash], blockHash[:])
	copy(raw[offTotalHash:ResponseHeaderLen], total[:])
	copy(raw[ResponseHeaderLen:], payload)
	return raw
}

// EncodeResponse builds every block of a logical response, concatenated in order.
func EncodeResponse(status Status, payload []byte) []byte {
	total := Sum(payload)
	chunks := Chunk(payload)
	var buf bytes.Buffer
	for i, chunk := range chunks {
		buf.Write(EncodeResponseBlock(status, uint32(i), uint32(len(chunks)), chunk, total))
	}
	return buf.Bytes()
}

// DecodeResponseHeader parses the fixed block header at the start of raw.
func DecodeResponseHeader(raw []byte) (BlockHeader, error) {
	if len(raw) < ResponseHeaderLen {
		return BlockHeader{}, fmt.Errorf("%w: got %d of %d bytes", errors.ErrIncompleteReply, len(raw), ResponseHeaderLen)
	}
	header := BlockHeader{
		PayloadLength: binary.BigEndian.Uint32(raw[:offStatus]),
		Status:        Status(binary.BigEndian.Uint32(raw[offStatus:offBlockIndex])),
		BlockIndex:    binary.BigEndian.Uint32(raw[offBlockIndex:offBlockCount]),
		BlockCount:    binary.BigEndian.Uint32(raw[offBlockCount:offBlockHash]),
	}
	copy(header.BlockHash[:], raw[offBlockHash:offTotalHash])
	copy(header.TotalHash[:], raw[offTotalHash:ResponseHeaderLen])
	return header, nil
}

// ReadBlock reads one block from r. The block hash is not checked here.
func ReadBlock(r io.Reader) (ResponseBlock, error) {
	raw := make([]byte, ResponseHeaderLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return ResponseBlock{}, err
	}
	header, err := DecodeResponseHeader(raw)
	if err != nil {
		return ResponseBlock{}, err
	}
	if header.PayloadLength > MaxBlockPayload {
		return ResponseBlock{}, fmt.Errorf("%w: %d bytes", errors.ErrPayloadTooLarge, header.PayloadLength)
	}

	payload := make([]byte, header.PayloadLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return ResponseBlock{}, err
	}
	return ResponseBlock{BlockHeader: header, Payload: payload}, nil
}
