//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/transport"
)

type pair struct {
	ch    *transport.Buffer
	gen   *Generator
	eval  *Evaluator
	genIP *Interpreter
	evIP  *Interpreter
}

func newPair(t *testing.T, c *Circuit) *pair {
	ch := transport.NewBuffer()
	gen, eval := newEngines(t, ch, 7)

	genIP, err := NewInterpreter(c, NewStore(c.NumWires), gen)
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	evIP, err := NewInterpreter(c, NewStore(c.NumWires), eval)
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	return &pair{
		ch:    ch,
		gen:   gen,
		eval:  eval,
		genIP: genIP,
		evIP:  evIP,
	}
}

// run garbles and evaluates the circuit with the input bits and
// decodes the evaluator's output labels.
func (p *pair) run(t *testing.T, in0 []ot.Label, bits []bool) []bool {
	c := p.genIP.Circuit()

	out0 := make([]ot.Label, c.Outputs.Size())
	if err := p.genIP.Compute(out0, in0); err != nil {
		t.Fatalf("Generator.Compute: %v", err)
	}

	in := make([]ot.Label, len(in0))
	for i, l0 := range in0 {
		in[i] = p.gen.Encode(l0, bits[i])
	}
	out := make([]ot.Label, c.Outputs.Size())
	if err := p.evIP.Compute(out, in); err != nil {
		t.Fatalf("Evaluator.Compute: %v", err)
	}

	result := make([]bool, len(out))
	for i := range out {
		bit, err := BitFromLabel(p.gen.Wire(out0[i]), out[i])
		if err != nil {
			t.Fatalf("output %d: %v", i, err)
		}
		result[i] = bit
	}
	return result
}

func TestCompute(t *testing.T) {
	for _, data := range []string{circ3, circ5} {
		c := parse(t, data)
		p := newPair(t, c)
		n := c.Inputs.Size()

		for v := 0; v < 1<<n; v++ {
			bits := make([]bool, n)
			for i := range bits {
				bits[i] = v&(1<<i) != 0
			}
			expected, err := c.Eval(bits)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			result := p.run(t, p.gen.InputLabels(n), bits)
			for i := range result {
				if result[i] != expected[i] {
					t.Errorf("%v: output %d: got %v, expected %v",
						bits, i, result[i], expected[i])
				}
			}
		}
	}
}

func TestComputeAND(t *testing.T) {
	c := parse(t, circ5)
	p := newPair(t, c)
	in0 := p.gen.InputLabels(c.Inputs.Size())
	bits := make([]bool, c.Inputs.Size())

	for i := 1; i <= 3; i++ {
		p.run(t, in0, bits)
		expected := uint64(i * c.NumAND())
		if p.gen.NumAND() != expected || p.eval.NumAND() != expected {
			t.Errorf("compute %d: NumAND generator=%d evaluator=%d, "+
				"expected %d", i, p.gen.NumAND(), p.eval.NumAND(), expected)
		}
	}
}

func TestComputeRepeatable(t *testing.T) {
	c := parse(t, circ5)
	ch := transport.NewBuffer()
	gen, err := NewGenerator(ch, newPRG(t, 9))
	if err != nil {
		t.Fatal(err)
	}
	ip, err := NewInterpreter(c, NewStore(c.NumWires), gen)
	if err != nil {
		t.Fatal(err)
	}
	in := gen.InputLabels(c.Inputs.Size())
	out := make([]ot.Label, c.Outputs.Size())

	// The hash key schedule advances over computes.
	if err := ip.Compute(out, in); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	prev := bytes.Clone(ch.Bytes())
	ch.Clear()
	if err := ip.Compute(out, in); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if bytes.Equal(prev, ch.Bytes()) {
		t.Errorf("computes without Rewind produced identical tables")
	}

	var first []byte
	for i := 0; i < 5; i++ {
		ch.Clear()
		gen.Rewind()
		if err := ip.Compute(out, in); err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if ch.Size() != c.NumAND()*TableSize {
			t.Errorf("compute %d: %d bytes, expected %d",
				i, ch.Size(), c.NumAND()*TableSize)
		}
		if first == nil {
			first = bytes.Clone(ch.Bytes())
		} else if !bytes.Equal(first, ch.Bytes()) {
			t.Errorf("compute %d: output differs from the first compute", i)
		}
	}
}

func TestComputeErrors(t *testing.T) {
	c := parse(t, circ3)
	p := newPair(t, c)

	out := make([]ot.Label, 1)
	if err := p.genIP.Compute(out, make([]ot.Label, 1)); !errors.Is(err,
		ErrIndex) {
		t.Errorf("Compute with short input: %v", err)
	}
	if err := p.genIP.Compute(nil, make([]ot.Label, 2)); !errors.Is(err,
		ErrIndex) {
		t.Errorf("Compute with short output: %v", err)
	}
	if _, err := NewInterpreter(c, NewStore(2), p.gen); !errors.Is(err,
		ErrIndex) {
		t.Errorf("NewInterpreter with small store: %v", err)
	}

	// Evaluator without garbled tables.
	err := p.evIP.Compute(out, make([]ot.Label, 2))
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Compute without tables: %v", err)
	}
}
