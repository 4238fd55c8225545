//
// label.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"

	"github.com/markkurossi/text/superscript"
)

// Wire implements a wire with 0 and 1 labels.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("L%s=%s L%s=%s",
		superscript.Itoa(0), w.L0, superscript.Itoa(1), w.L1)
}

// Label implements a 128 bit wire label. D0 holds the most
// significant and D1 the least significant 64 bits.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains lable data as byte array.
type LabelData [16]byte

// LabelSize is the size of the label data in bytes.
const LabelSize = len(LabelData{})

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal test if the labels are equal. Equal branches on the label
// value and it must not be used on secret labels during gate
// evaluation.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewTweak creates a new label from the tweak value.
func NewTweak(tweak uint64) Label {
	return Label{
		D1: tweak,
	}
}

// NewDelta creates a new free-XOR offset. The point-and-permute bit
// of the offset is always set so that the 0 and 1 labels of every
// wire have opposite permute bits.
func NewDelta(prg *PRG) Label {
	delta := prg.Label()
	delta.SetS(true)
	return delta
}

// S tests the label's point-and-permute bit, the least significant
// bit of the label.
func (l Label) S() bool {
	return l.D1&1 != 0
}

// Bit returns the label's point-and-permute bit as an integer.
func (l Label) Bit() uint {
	return uint(l.D1 & 1)
}

// SetS sets the label's point-and-permute bit.
func (l *Label) SetS(set bool) {
	if set {
		l.D1 |= 1
	} else {
		l.D1 &^= 1
	}
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Select returns l if bit is 1 and the zero label if bit is 0. The
// selection is computed with masks and it does not branch on bit.
func Select(bit uint, l Label) Label {
	mask := -uint64(bit & 1)
	return Label{
		D0: l.D0 & mask,
		D1: l.D1 & mask,
	}
}

// GetData gets the labels as label data.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the labels from label data.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64((*data)[0:8])
	l.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the label data as bytes.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label data from bytes.
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}
