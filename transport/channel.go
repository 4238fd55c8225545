//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

// Package transport implements the byte channels that move garbled
// tables and wire labels between the generator and the evaluator.
package transport

// Channel defines a byte stream between two parties. The garbling
// engine depends only on this interface so the same engine runs
// against a discarding sink, an in-memory buffer, or a live network
// connection.
type Channel interface {
	// Send sends data to the peer. The call may block.
	Send(data []byte) error

	// Receive fills buf from the peer. The call blocks until buf is
	// full or the channel fails.
	Receive(buf []byte) error

	// Flush flushes any pending data in the channel.
	Flush() error

	// BytesTransferred returns the number of bytes sent and received
	// through the channel. The counter is monotonic and reading it
	// has no side effects.
	BytesTransferred() uint64
}
