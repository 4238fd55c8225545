//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit implements boolean circuits, the Bristol Fashion
// circuit loader, and the half-gates garbling engine that evaluates
// circuits between a generator and an evaluator.
package circuit

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math/big"
	"os"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	XNOR
	AND
	INV
)

// NOT is an alias for INV.
const NOT = INV

// Stats holds statistics about circuit operations.
type Stats [INV + 1]int

func (op Operation) String() string {
	switch op {
	case XOR:
		return "XOR"
	case XNOR:
		return "XNOR"
	case AND:
		return "AND"
	case INV:
		return "INV"
	default:
		return fmt.Sprintf("{Operation %d}", op)
	}
}

// Arity returns the number of input wires of the operation.
func (op Operation) Arity() int {
	if op == INV {
		return 1
	}
	return 2
}

// IOArg describes one circuit input or output bundle.
type IOArg struct {
	Name string
	Size int
}

func (io IOArg) String() string {
	if len(io.Name) > 0 {
		return fmt.Sprintf("%s:%d", io.Name, io.Size)
	}
	return fmt.Sprintf("%d", io.Size)
}

// IO specifies circuit input and output bundles.
type IO []IOArg

// Size computes the size of the circuit input and output arguments in
// bits.
func (io IO) Size() int {
	var sum int
	for _, a := range io {
		sum += a.Size
	}
	return sum
}

func (io IO) String() string {
	var str = ""
	for i, a := range io {
		if i > 0 {
			str += ", "
		}
		str += a.String()
	}
	return str
}

// Bits flattens the per-bundle values into the positional wire
// order. Bit i of a bundle value is assigned to the bundle's i:th
// wire.
func (io IO) Bits(values []*big.Int) ([]bool, error) {
	if len(values) != len(io) {
		return nil, indexErrorf("invalid number of values: got %d, expected %d",
			len(values), len(io))
	}
	result := make([]bool, 0, io.Size())
	for idx, arg := range io {
		v := values[idx]
		if v.Sign() < 0 || v.BitLen() > arg.Size {
			return nil, indexErrorf("value %v does not fit in %d bits",
				v, arg.Size)
		}
		for i := 0; i < arg.Size; i++ {
			result = append(result, v.Bit(i) == 1)
		}
	}
	return result, nil
}

// Values splits the positional bits into per-bundle values.
func (io IO) Values(bits []bool) ([]*big.Int, error) {
	if len(bits) != io.Size() {
		return nil, indexErrorf("invalid number of bits: got %d, expected %d",
			len(bits), io.Size())
	}
	var result []*big.Int
	var bit int
	for _, arg := range io {
		r := new(big.Int)
		for i := 0; i < arg.Size; i++ {
			if bits[bit] {
				r.SetBit(r, i, 1)
			}
			bit++
		}
		result = append(result, r)
	}
	return result, nil
}

// Circuit specifies a boolean circuit.
type Circuit struct {
	NumGates int
	NumWires int
	Inputs   IO
	Outputs  IO
	Gates    []Gate
	Stats    Stats
}

func (c *Circuit) String() string {
	var stats string

	for k := XOR; k <= INV; k++ {
		v := c.Stats[k]
		if len(stats) > 0 {
			stats += " "
		}
		stats += fmt.Sprintf("%s=%d", k, v)
	}
	return fmt.Sprintf("#gates=%d (%s) #w=%d", c.NumGates, stats, c.NumWires)
}

// NumAND returns the number of AND gates in the circuit.
func (c *Circuit) NumAND() int {
	return c.Stats[AND]
}

// OutputWire returns the wire index of the i:th output bit.
func (c *Circuit) OutputWire(i int) Wire {
	return Wire(c.NumWires - c.Outputs.Size() + i)
}

// Dump prints a debug dump of the circuit.
func (c *Circuit) Dump() {
	c.DumpTo(os.Stdout)
}

// DumpTo prints a debug dump of the circuit to out.
func (c *Circuit) DumpTo(out io.Writer) {
	fmt.Fprintf(out, "circuit %s\n", c)
	for id, gate := range c.Gates {
		fmt.Fprintf(out, "%04d\t%s\n", id, gate)
	}
}

// Fingerprint computes a digest of the circuit structure with the
// hash h. Two circuits have the same fingerprint if they have the same
// wires, bundles, and gates.
func (c *Circuit) Fingerprint(h hash.Hash) []byte {
	var buf [4]byte

	put := func(v int) {
		binary.BigEndian.PutUint32(buf[:], uint32(v))
		h.Write(buf[:])
	}

	h.Reset()
	put(c.NumGates)
	put(c.NumWires)
	put(len(c.Inputs))
	for _, arg := range c.Inputs {
		put(arg.Size)
	}
	put(len(c.Outputs))
	for _, arg := range c.Outputs {
		put(arg.Size)
	}
	for _, g := range c.Gates {
		put(int(g.Op))
		put(int(g.Input0))
		put(int(g.Input1))
		put(int(g.Output))
	}
	return h.Sum(nil)
}

// Gate specifies a boolean gate.
type Gate struct {
	Input0 Wire
	Input1 Wire
	Output Wire
	Op     Operation
}

func (g Gate) String() string {
	return fmt.Sprintf("%v %v %v", g.Inputs(), g.Op, g.Output)
}

// Inputs returns gate input wires.
func (g Gate) Inputs() []Wire {
	switch g.Op {
	case XOR, XNOR, AND:
		return []Wire{g.Input0, g.Input1}
	case INV:
		return []Wire{g.Input0}
	default:
		panic(fmt.Sprintf("unsupported gate type %s", g.Op))
	}
}

// Wire specifies a wire ID.
type Wire uint32

func (w Wire) String() string {
	return fmt.Sprintf("w%d", w)
}
