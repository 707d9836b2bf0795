package protocol

import (
	"bytes"
	"fileserver-lab/errors"
	"fmt"
	"io"
)

// Response is a reassembled logical response.
type Response struct {
	Status  Status
	Payload []byte
	Blocks  []BlockHeader
}

// Assembler rebuilds a logical response from its blocks.
// Blocks must arrive in index order, all sharing the same status, block count and total hash.
type Assembler struct {
	blocks  []BlockHeader
	payload bytes.Buffer
}

// Add verifies b and appends it to the response being assembled.
func (a *Assembler) Add(b ResponseBlock) error {
	if a.Done() {
		return fmt.Errorf("%w: block %d after the last block", errors.ErrBlockOutOfOrder, b.BlockIndex)
	}
	if !b.Verify() {
		return fmt.Errorf("%w: block %d", errors.ErrBlockChecksum, b.BlockIndex)
	}
	if want := uint32(len(a.blocks)); b.BlockIndex != want {
		return fmt.Errorf("%w: got block %d, want %d", errors.ErrBlockOutOfOrder, b.BlockIndex, want)
	}
	if b.BlockCount == 0 {
		return fmt.Errorf("%w: block count is zero", errors.ErrInconsistentBlock)
	}
	if len(a.blocks) > 0 {
		first := a.blocks[0]
		if b.Status != first.Status || b.BlockCount != first.BlockCount || b.TotalHash != first.TotalHash {
			return fmt.Errorf("%w: block %d", errors.ErrInconsistentBlock, b.BlockIndex)
		}
	}

	a.blocks = append(a.blocks, b.BlockHeader)
	a.payload.Write(b.Payload)
	return nil
}

// Done reports whether the last block has been added.
func (a *Assembler) Done() bool {
	return len(a.blocks) > 0 && uint32(len(a.blocks)) == a.blocks[0].BlockCount
}

// Response returns the reassembled response once every block is in, after checking the total hash.
func (a *Assembler) Response() (Response, error) {
	if !a.Done() {
		return Response{}, fmt.Errorf("%w: %d blocks received", errors.ErrIncompleteReply, len(a.blocks))
	}
	first := a.blocks[0]
	payload := a.payload.Bytes()
	if Sum(payload) != first.TotalHash {
		return Response{}, errors.ErrTotalChecksum
	}
	return Response{Status: first.Status, Payload: payload, Blocks: a.blocks}, nil
}

// ReadResponse reads and verifies every block of one logical response from r.
func ReadResponse(r io.Reader) (Response, error) {
	var assembler Assembler
	for !assembler.Done() {
		block, err := ReadBlock(r)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Response{}, fmt.Errorf("%w: %v", errors.ErrIncompleteReply, err)
		}
		if err != nil {
			return Response{}, err
		}
		if err := assembler.Add(block); err != nil {
			return Response{}, err
		}
	}
	return assembler.Response()
}
