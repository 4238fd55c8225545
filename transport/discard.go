//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package transport

var (
	_ Channel = &Discard{}
)

// Discard implements a channel that drops all sent data. Receive
// returns zero bytes. Discard never fails and it is used for
// measuring the cost of garbling alone.
type Discard struct {
	count uint64
}

// NewDiscard creates a new discarding channel.
func NewDiscard() *Discard {
	return new(Discard)
}

// Send implements Channel.Send.
func (d *Discard) Send(data []byte) error {
	d.count += uint64(len(data))
	return nil
}

// Receive implements Channel.Receive.
func (d *Discard) Receive(buf []byte) error {
	clear(buf)
	d.count += uint64(len(buf))
	return nil
}

// Flush implements Channel.Flush.
func (d *Discard) Flush() error {
	return nil
}

// BytesTransferred implements Channel.BytesTransferred.
func (d *Discard) BytesTransferred() uint64 {
	return d.count
}
