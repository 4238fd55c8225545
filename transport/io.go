//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package transport

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
)

// MaxDataSize specifies the maximum size of a framed data value.
const MaxDataSize = 16 * 1024 * 1024

var (
	bo = binary.BigEndian

	_ ot.IO = &IO{}
)

// IO implements the ot.IO interface on top of a Channel. Binary data
// is framed with a 32-bit big-endian length prefix.
type IO struct {
	ch  Channel
	hdr [4]byte
}

// NewIO returns an ot.IO for the channel. If the channel implements
// ot.IO, the channel is returned as-is.
func NewIO(ch Channel) ot.IO {
	if oti, ok := ch.(ot.IO); ok {
		return oti
	}
	return &IO{
		ch: ch,
	}
}

// SendData sends binary data.
func (io *IO) SendData(val []byte) error {
	if err := io.SendUint32(len(val)); err != nil {
		return err
	}
	return io.ch.Send(val)
}

// SendUint32 sends an uint32 value.
func (io *IO) SendUint32(val int) error {
	bo.PutUint32(io.hdr[:], uint32(val))
	return io.ch.Send(io.hdr[:])
}

// Flush flushed any pending data in the connection.
func (io *IO) Flush() error {
	return io.ch.Flush()
}

// ReceiveData receives binary data.
func (io *IO) ReceiveData() ([]byte, error) {
	l, err := io.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if l > MaxDataSize {
		return nil, errors.Mark(
			errors.Newf("data too long: %d > %d", l, MaxDataSize),
			ot.ErrMalformed)
	}
	result := make([]byte, l)
	if err := io.ch.Receive(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveUint32 receives an uint32 value.
func (io *IO) ReceiveUint32() (int, error) {
	if err := io.ch.Receive(io.hdr[:]); err != nil {
		return 0, err
	}
	return int(bo.Uint32(io.hdr[:])), nil
}
