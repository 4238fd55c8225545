//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/markkurossi/halfgates/ot"
)

// Engine implements the gate operations of one protocol role. The
// Interpreter drives the same gate list over the generator and the
// evaluator engines.
type Engine interface {
	// AND computes the AND gate. The generator writes one garbled
	// table to its channel and the evaluator reads it.
	AND(a, b ot.Label) (ot.Label, error)

	// XOR computes the XOR gate.
	XOR(a, b ot.Label) ot.Label

	// NOT computes the NOT gate.
	NOT(a ot.Label) ot.Label

	// Rewind rewinds the hash key schedule to its initial state.
	// Both peers must rewind at the same gate position. Hash keys are
	// reused after Rewind so it must only be used for replaying
	// computes with the same input labels.
	Rewind()

	// NumAND returns the number of AND gates processed by the
	// engine. The counter is never reset.
	NumAND() uint64

	// Release zeroes the engine's secret state. The engine must not
	// be used after it is released.
	Release()
}

// TableSize specifies the size of a garbled AND table in bytes.
const TableSize = 2 * ot.LabelSize

// Table implements a half-gates garbled table: the generator
// half-gate row and the evaluator half-gate row.
type Table [2]ot.Label

// Bytes returns the table data as bytes.
func (t *Table) Bytes(buf *[TableSize]byte) []byte {
	var d ot.LabelData
	copy(buf[0:], t[0].Bytes(&d))
	copy(buf[ot.LabelSize:], t[1].Bytes(&d))
	return buf[:]
}

// SetBytes sets the table from the data.
func (t *Table) SetBytes(data []byte) {
	t[0].SetBytes(data[0:])
	t[1].SetBytes(data[ot.LabelSize:])
}
