//
// ot.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

// Package ot implements the wire labels, label generation, hashing,
// and the oblivious transfer used for the evaluator's input labels.
package ot

import (
	"github.com/cockroachdb/errors"
)

// ErrMalformed reports a peer message that is not a valid protocol
// message.
var ErrMalformed = errors.New("malformed message")

func malformedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformed)
}

// OT defines the 1-out-of-2 oblivious transfer of wire labels. The
// sender transfers one label of each wire and the receiver selects
// the label with its flag bit without the sender learning the
// flag. The flags and wires are matched by position.
type OT interface {
	// InitSender binds the sender to io and announces the protocol
	// parameters.
	InitSender(io IO) error

	// InitReceiver binds the receiver to io and verifies the
	// sender's protocol parameters.
	InitReceiver(io IO) error

	// Send transfers the wires.
	Send(wires []Wire) error

	// Receive receives the labels selected by flags into result.
	Receive(flags []bool, result []Label) error
}
