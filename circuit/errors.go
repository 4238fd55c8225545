//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
)

// Error kinds. Errors returned by this package and the session
// package are marked with one of the kinds so callers can classify
// them with errors.Is.
var (
	// ErrFormat reports a malformed circuit file.
	ErrFormat = errors.New("format error")

	// ErrIndex reports a wire index outside the circuit's wire range.
	ErrIndex = errors.New("index error")

	// ErrTransport reports a channel failure during an exchange.
	ErrTransport = errors.New("transport error")

	// ErrProtocolMismatch reports that the peers are running
	// different circuits or are out of sync.
	ErrProtocolMismatch = errors.New("protocol mismatch")
)

func formatErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrFormat)
}

func indexErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrIndex)
}

// TransportError wraps the channel error err as ErrTransport. A
// partial read is reported as ErrProtocolMismatch since the peer
// stopped in the middle of a record it was expected to send. A
// malformed OT message is also reported as ErrProtocolMismatch.
func TransportError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	kind := ErrTransport
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ot.ErrMalformed) {
		kind = ErrProtocolMismatch
	}
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}

// ProtocolMismatchf creates a new ErrProtocolMismatch error.
func ProtocolMismatchf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrProtocolMismatch)
}
