//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/transport"
)

// hashBatchSize is the number of MITCCRH keys derived at a time. Each
// AND gate uses two keys.
const hashBatchSize = 8

var (
	_ Engine = &Generator{}
	_ Engine = &Evaluator{}
)

// Generator implements the garbling side of the half-gates scheme.
type Generator struct {
	ch     transport.Channel
	prg    *ot.PRG
	delta  ot.Label
	hash   *ot.MITCCRH
	numAND uint64
	blks   [4]ot.Label
	buf    [TableSize]byte
}

// NewGenerator creates a new generator engine. The function draws the
// free-XOR offset and the hash seed from prg and sends the seed to the
// evaluator.
func NewGenerator(ch transport.Channel, prg *ot.PRG) (*Generator, error) {
	delta := ot.NewDelta(prg)
	seed := prg.Label()

	var d ot.LabelData
	if err := ch.Send(seed.Bytes(&d)); err != nil {
		return nil, TransportError(err, "send hash seed")
	}
	if err := ch.Flush(); err != nil {
		return nil, TransportError(err, "send hash seed")
	}

	return &Generator{
		ch:    ch,
		prg:   prg,
		delta: delta,
		hash:  ot.NewMITCCRH(seed, hashBatchSize),
	}, nil
}

// Delta returns the free-XOR offset.
func (g *Generator) Delta() ot.Label {
	return g.delta
}

// Wire returns the wire with the 0-label l0.
func (g *Generator) Wire(l0 ot.Label) ot.Wire {
	l1 := l0
	l1.Xor(g.delta)
	return ot.Wire{
		L0: l0,
		L1: l1,
	}
}

// InputLabels draws n random 0-labels.
func (g *Generator) InputLabels(n int) []ot.Label {
	result := make([]ot.Label, n)
	g.prg.Labels(result)
	return result
}

// Encode returns the label of the bit for the wire with the 0-label
// l0.
func (g *Generator) Encode(l0 ot.Label, bit bool) ot.Label {
	var b uint
	if bit {
		b = 1
	}
	l0.Xor(ot.Select(b, g.delta))
	return l0
}

// AND garbles the AND gate with the input 0-labels a0 and b0. The
// function writes the garbled table to the channel and returns the
// output 0-label.
func (g *Generator) AND(a0, b0 ot.Label) (ot.Label, error) {
	pa := a0.Bit()
	pb := b0.Bit()

	g.blks[0] = a0
	g.blks[1] = a0
	g.blks[1].Xor(g.delta)
	g.blks[2] = b0
	g.blks[3] = b0
	g.blks[3].Xor(g.delta)

	g.hash.Hash(g.blks[:], 2, 2)

	ha0 := g.blks[0]
	ha1 := g.blks[1]
	hb0 := g.blks[2]
	hb1 := g.blks[3]

	var table Table

	// Generator half-gate.
	table[0] = ha0
	table[0].Xor(ha1)
	table[0].Xor(ot.Select(pb, g.delta))

	w0 := ha0
	w0.Xor(ot.Select(pa, table[0]))

	// Evaluator half-gate.
	tmp := hb0
	tmp.Xor(hb1)
	table[1] = tmp
	table[1].Xor(a0)

	w0.Xor(hb0)
	w0.Xor(ot.Select(pb, tmp))

	g.numAND++

	if err := g.ch.Send(table.Bytes(&g.buf)); err != nil {
		return ot.Label{}, TransportError(err, "send garbled table")
	}
	return w0, nil
}

// XOR computes the free-XOR gate.
func (g *Generator) XOR(a, b ot.Label) ot.Label {
	a.Xor(b)
	return a
}

// NOT returns the 0-label of the inverted wire.
func (g *Generator) NOT(a ot.Label) ot.Label {
	a.Xor(g.delta)
	return a
}

// Rewind rewinds the hash key schedule.
func (g *Generator) Rewind() {
	g.hash.Reset()
}

// NumAND returns the number of garbled AND gates.
func (g *Generator) NumAND() uint64 {
	return g.numAND
}

// Release zeroes the free-XOR offset.
func (g *Generator) Release() {
	g.delta = ot.Label{}
	g.blks = [4]ot.Label{}
}

// Evaluator implements the evaluation side of the half-gates scheme.
type Evaluator struct {
	ch     transport.Channel
	hash   *ot.MITCCRH
	numAND uint64
	blks   [2]ot.Label
	buf    [TableSize]byte
}

// NewEvaluator creates a new evaluator engine. The function receives
// the hash seed from the generator.
func NewEvaluator(ch transport.Channel) (*Evaluator, error) {
	var d ot.LabelData
	if err := ch.Receive(d[:]); err != nil {
		return nil, TransportError(err, "receive hash seed")
	}
	var seed ot.Label
	seed.SetData(&d)

	return &Evaluator{
		ch:   ch,
		hash: ot.NewMITCCRH(seed, hashBatchSize),
	}, nil
}

// AND evaluates the AND gate with the active labels a and b. The
// function reads the garbled table from the channel and returns the
// active output label.
func (e *Evaluator) AND(a, b ot.Label) (ot.Label, error) {
	if err := e.ch.Receive(e.buf[:]); err != nil {
		return ot.Label{}, TransportError(err, "receive garbled table")
	}
	var table Table
	table.SetBytes(e.buf[:])

	sa := a.Bit()
	sb := b.Bit()

	e.blks[0] = a
	e.blks[1] = b
	e.hash.Hash(e.blks[:], 2, 1)

	w := e.blks[0]
	w.Xor(e.blks[1])
	w.Xor(ot.Select(sa, table[0]))

	tmp := table[1]
	tmp.Xor(a)
	w.Xor(ot.Select(sb, tmp))

	e.numAND++

	return w, nil
}

// XOR computes the free-XOR gate.
func (e *Evaluator) XOR(a, b ot.Label) ot.Label {
	a.Xor(b)
	return a
}

// NOT returns the active label unchanged. The generator inverts the
// wire by swapping its 0 and 1 labels.
func (e *Evaluator) NOT(a ot.Label) ot.Label {
	return a
}

// Rewind rewinds the hash key schedule.
func (e *Evaluator) Rewind() {
	e.hash.Reset()
}

// NumAND returns the number of evaluated AND gates.
func (e *Evaluator) NumAND() uint64 {
	return e.numAND
}

// Release zeroes the evaluator's scratch labels.
func (e *Evaluator) Release() {
	e.blks = [2]ot.Label{}
	e.buf = [TableSize]byte{}
}
