//
// Copyright (c) 2019-2023 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements the network connection between the
// generator and the evaluator.
package p2p

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/transport"
)

var (
	_ ot.IO             = &Conn{}
	_ transport.Channel = &Conn{}
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
)

// Conn implements a protocol connection. The connection buffers
// outbound data and hands full buffers to a writer goroutine so
// garbling can continue while the previous buffer is being written.
type Conn struct {
	conn      io.ReadWriter
	WriteBuf  []byte
	WritePos  int
	ReadBuf   []byte
	ReadStart int
	ReadEnd   int
	Stats     IOStats

	xfer       atomic.Uint64
	fromWriter chan []byte
	toWriter   chan []byte
	closed     bool

	m         sync.Mutex
	writerErr error
}

// IOStats implements I/O statistics.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Sub returns the difference of this IOStats and the argument stats.
func (stats IOStats) Sub(o IOStats) IOStats {
	result := NewIOStats()
	result.Sent.Store(stats.Sent.Load() - o.Sent.Load())
	result.Recvd.Store(stats.Recvd.Load() - o.Recvd.Load())
	result.Flushed.Store(stats.Flushed.Load() - o.Flushed.Load())
	return result
}

// Snapshot returns a copy of the current statistics.
func (stats IOStats) Snapshot() IOStats {
	return stats.Sub(NewIOStats())
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent.Load() + stats.Recvd.Load()
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:       conn,
		ReadBuf:    make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte, numBuffers),
		Stats:      NewIOStats(),
	}

	go c.writer()

	c.WriteBuf = <-c.fromWriter

	return c
}

func (c *Conn) writer() {
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}

	for buf := range c.toWriter {
		if c.err() == nil {
			_, err := c.conn.Write(buf)
			if err != nil {
				c.m.Lock()
				c.writerErr = err
				c.m.Unlock()
			}
		}
		c.fromWriter <- buf[0:cap(buf)]
	}
	close(c.fromWriter)
}

// err returns the first error the writer got from the connection.
func (c *Conn) err() error {
	c.m.Lock()
	defer c.m.Unlock()
	return c.writerErr
}

// BytesTransferred returns the number of bytes sent and received
// through the connection's send and receive functions. Unlike Stats,
// the counter is updated when data is queued or consumed and not when
// it is flushed or read ahead from the underlying connection.
func (c *Conn) BytesTransferred() uint64 {
	return c.xfer.Load()
}

// NeedSpace ensures the write buffer has space for count bytes. The
// function flushes the output if needed.
func (c *Conn) NeedSpace(count int) error {
	if c.WritePos+count > len(c.WriteBuf) {
		return c.Flush()
	}
	return nil
}

// Flush flushed any pending data in the connection. The data is
// written asynchronously so a write error is reported by a later
// Flush or by Close.
func (c *Conn) Flush() error {
	if c.closed {
		return io.ErrClosedPipe
	}
	if c.WritePos > 0 {
		c.Stats.Sent.Add(uint64(c.WritePos))
		c.toWriter <- c.WriteBuf[0:c.WritePos]

		c.WriteBuf = <-c.fromWriter
		c.WritePos = 0
		c.Stats.Flushed.Add(1)
	}
	return c.err()
}

// Fill fills the input buffer from the connection. Any unused data in
// the buffer is moved to the beginning of the buffer. The argument n
// must not exceed the read buffer size.
func (c *Conn) Fill(n int) error {
	if c.ReadStart < c.ReadEnd {
		copy(c.ReadBuf[0:], c.ReadBuf[c.ReadStart:c.ReadEnd])
		c.ReadEnd -= c.ReadStart
		c.ReadStart = 0
	} else {
		c.ReadStart = 0
		c.ReadEnd = 0
	}
	for c.ReadStart+n > c.ReadEnd {
		got, err := c.conn.Read(c.ReadBuf[c.ReadEnd:])
		c.Stats.Recvd.Add(uint64(got))
		c.ReadEnd += got
		if err != nil {
			if err == io.EOF && c.ReadEnd > c.ReadStart {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Close flushes any pending data, stops the writer, and closes the
// connection. The connection is closed even if the flush fails. Close
// returns the first error.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	err := c.Flush()
	c.closed = true

	// Wait that flush completes.
	close(c.toWriter)
	for range c.fromWriter {
	}
	if err == nil {
		err = c.err()
	}
	closer, ok := c.conn.(io.Closer)
	if ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Send sends raw data. It implements transport.Channel.Send.
func (c *Conn) Send(data []byte) error {
	c.xfer.Add(uint64(len(data)))
	for len(data) > 0 {
		if c.WritePos >= len(c.WriteBuf) {
			if err := c.Flush(); err != nil {
				return err
			}
		}
		n := copy(c.WriteBuf[c.WritePos:], data)
		c.WritePos += n
		data = data[n:]
	}
	return nil
}

// Receive receives raw data filling buf. It implements
// transport.Channel.Receive.
func (c *Conn) Receive(buf []byte) error {
	for len(buf) > 0 {
		if c.ReadStart >= c.ReadEnd {
			if err := c.Fill(1); err != nil {
				return err
			}
		}
		n := copy(buf, c.ReadBuf[c.ReadStart:c.ReadEnd])
		c.ReadStart += n
		c.xfer.Add(uint64(n))
		buf = buf[n:]
	}
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	if err := c.NeedSpace(4); err != nil {
		return err
	}
	c.WriteBuf[c.WritePos+0] = byte((uint32(val) >> 24) & 0xff)
	c.WriteBuf[c.WritePos+1] = byte((uint32(val) >> 16) & 0xff)
	c.WriteBuf[c.WritePos+2] = byte((uint32(val) >> 8) & 0xff)
	c.WriteBuf[c.WritePos+3] = byte(uint32(val) & 0xff)
	c.WritePos += 4
	c.xfer.Add(4)
	return nil
}

// SendData sends binary data.
func (c *Conn) SendData(val []byte) error {
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	return c.Send(val)
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if c.ReadStart+4 > c.ReadEnd {
		if err := c.Fill(4); err != nil {
			return 0, err
		}
	}
	val := uint32(c.ReadBuf[c.ReadStart+0])
	val <<= 8
	val |= uint32(c.ReadBuf[c.ReadStart+1])
	val <<= 8
	val |= uint32(c.ReadBuf[c.ReadStart+2])
	val <<= 8
	val |= uint32(c.ReadBuf[c.ReadStart+3])
	c.ReadStart += 4
	c.xfer.Add(4)

	return int(val), nil
}

// ReceiveData receives binary data.
func (c *Conn) ReceiveData() ([]byte, error) {
	len, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if len > transport.MaxDataSize {
		return nil, errors.Mark(
			errors.Newf("data too long: %d > %d", len,
				transport.MaxDataSize),
			ot.ErrMalformed)
	}
	result := make([]byte, len)
	if err := c.Receive(result); err != nil {
		return nil, err
	}
	return result, nil
}
