//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package transport

import (
	"io"
)

var (
	_ Channel = &Buffer{}
)

// Buffer implements a channel backed by a growable in-memory
// buffer. Sent data is appended to the buffer and Receive consumes
// it from a read cursor. The buffer can be cleared and reused
// without recreating the engine that writes to it. Buffer must not
// be used from multiple goroutines.
type Buffer struct {
	data  []byte
	rpos  int
	count uint64
}

// NewBuffer creates a new empty buffer channel.
func NewBuffer() *Buffer {
	return new(Buffer)
}

// NewBufferFrom creates a new buffer channel that returns data from
// Receive. It is used for replaying a generator's output to an
// evaluator.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{
		data: append([]byte(nil), data...),
	}
}

// Send implements Channel.Send.
func (b *Buffer) Send(data []byte) error {
	b.data = append(b.data, data...)
	b.count += uint64(len(data))
	return nil
}

// Receive implements Channel.Receive. It returns io.EOF if the
// buffer is empty and io.ErrUnexpectedEOF if the buffer ends in the
// middle of buf.
func (b *Buffer) Receive(buf []byte) error {
	avail := len(b.data) - b.rpos
	if avail == 0 && len(buf) > 0 {
		return io.EOF
	}
	if avail < len(buf) {
		b.rpos = len(b.data)
		b.count += uint64(avail)
		return io.ErrUnexpectedEOF
	}
	copy(buf, b.data[b.rpos:])
	b.rpos += len(buf)
	b.count += uint64(len(buf))
	return nil
}

// Flush implements Channel.Flush.
func (b *Buffer) Flush() error {
	return nil
}

// BytesTransferred implements Channel.BytesTransferred. The counter
// is not reset by Clear.
func (b *Buffer) BytesTransferred() uint64 {
	return b.count
}

// Bytes returns the buffered data. The returned slice is valid until
// the next Send or Clear.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Size returns the number of buffered bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Unread returns the number of buffered bytes not yet received.
func (b *Buffer) Unread() int {
	return len(b.data) - b.rpos
}

// Clear clears the buffer contents and the read cursor. The
// allocated storage is kept for the next use.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.rpos = 0
}
