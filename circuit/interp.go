//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
)

// Interpreter evaluates a circuit gate by gate over an engine. The
// interpreter is role agnostic: the engine decides whether gates are
// garbled or evaluated.
type Interpreter struct {
	circ   *Circuit
	store  *Store
	engine Engine
}

// NewInterpreter creates a new interpreter for the circuit. The store
// must have room for all circuit wires.
func NewInterpreter(c *Circuit, store *Store, engine Engine) (
	*Interpreter, error) {

	if store.Len() < c.NumWires {
		return nil, indexErrorf("store has %d wires, circuit needs %d",
			store.Len(), c.NumWires)
	}
	return &Interpreter{
		circ:   c,
		store:  store,
		engine: engine,
	}, nil
}

// Circuit returns the interpreter's circuit.
func (ip *Interpreter) Circuit() *Circuit {
	return ip.circ
}

// Compute copies the input labels into the circuit input wires, runs
// all gates in order, and copies the output wire labels to out. The
// compute can be repeated with the same interpreter; each call
// overwrites the same wires. The engine's hash key schedule advances
// over computes so repeated computes produce different tables unless
// the engine is rewound.
func (ip *Interpreter) Compute(out, in []ot.Label) error {
	c := ip.circ
	if len(in) != c.Inputs.Size() {
		return indexErrorf("invalid number of input labels: got %d, expected %d",
			len(in), c.Inputs.Size())
	}
	if len(out) != c.Outputs.Size() {
		return indexErrorf("invalid number of output labels: got %d, expected %d",
			len(out), c.Outputs.Size())
	}

	for i, l := range in {
		if err := ip.store.Set(Wire(i), l); err != nil {
			return err
		}
	}

	for idx := range c.Gates {
		if err := ip.gate(&c.Gates[idx]); err != nil {
			return errors.Wrapf(err, "gate %d", idx)
		}
	}

	for i := range out {
		l, err := ip.store.Get(c.OutputWire(i))
		if err != nil {
			return err
		}
		out[i] = l
	}
	return nil
}

func (ip *Interpreter) gate(g *Gate) error {
	a, err := ip.store.Get(g.Input0)
	if err != nil {
		return err
	}
	var b, r ot.Label
	if g.Op != INV {
		b, err = ip.store.Get(g.Input1)
		if err != nil {
			return err
		}
	}

	switch g.Op {
	case XOR:
		r = ip.engine.XOR(a, b)

	case XNOR:
		r = ip.engine.NOT(ip.engine.XOR(a, b))

	case AND:
		r, err = ip.engine.AND(a, b)
		if err != nil {
			return err
		}

	case INV:
		r = ip.engine.NOT(a)

	default:
		return formatErrorf("invalid gate type %s", g.Op)
	}

	return ip.store.Set(g.Output, r)
}
