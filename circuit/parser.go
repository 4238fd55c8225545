//
// parser.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var tokens = map[string]Operation{
	"XOR":  XOR,
	"XNOR": XNOR,
	"AND":  AND,
	"INV":  INV,
	"NOT":  NOT,
}

// ParseFile parses the Bristol Fashion circuit file.
func ParseFile(file string) (*Circuit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", file)
	}
	return c, nil
}

type lineReader struct {
	r    *bufio.Reader
	line int
}

// next returns the fields of the next non-empty line.
func (lr *lineReader) next() ([]string, error) {
	for {
		line, err := lr.r.ReadString('\n')
		if err != nil && (err != io.EOF || len(line) == 0) {
			return nil, err
		}
		lr.line++
		parts := strings.Fields(line)
		if len(parts) > 0 {
			return parts, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (lr *lineReader) ints(parts []string) ([]int, error) {
	result := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, formatErrorf("line %d: invalid number '%s'", lr.line, p)
		}
		result[i] = v
	}
	return result, nil
}

// bundles parses an input or output bundle line.
func (lr *lineReader) bundles(name string) (IO, error) {
	parts, err := lr.next()
	if err != nil {
		return nil, lr.eof(err, name)
	}
	vals, err := lr.ints(parts)
	if err != nil {
		return nil, err
	}
	if vals[0] != len(vals)-1 {
		return nil, formatErrorf("line %d: %s: got %d sizes, expected %d",
			lr.line, name, len(vals)-1, vals[0])
	}
	var result IO
	for _, size := range vals[1:] {
		if size == 0 {
			return nil, formatErrorf("line %d: %s: empty bundle",
				lr.line, name)
		}
		result = append(result, IOArg{
			Size: size,
		})
	}
	return result, nil
}

func (lr *lineReader) eof(err error, what string) error {
	if err == io.EOF {
		return formatErrorf("line %d: truncated file: missing %s",
			lr.line, what)
	}
	return err
}

// Parse parses a Bristol Fashion circuit. The circuit inputs are the
// first wires of the circuit and the outputs are the last
// Outputs.Size() wires.
func Parse(in io.Reader) (*Circuit, error) {
	lr := &lineReader{
		r: bufio.NewReader(in),
	}

	// NumGates NumWires
	parts, err := lr.next()
	if err != nil {
		return nil, lr.eof(err, "header")
	}
	if len(parts) != 2 {
		return nil, formatErrorf("line %d: invalid header: %v", lr.line, parts)
	}
	header, err := lr.ints(parts)
	if err != nil {
		return nil, err
	}
	numGates := header[0]
	numWires := header[1]
	if numWires == 0 {
		return nil, formatErrorf("line %d: circuit has no wires", lr.line)
	}
	if uint64(numWires) > math.MaxUint32 {
		return nil, formatErrorf("line %d: too many wires: %d", lr.line,
			numWires)
	}

	inputs, err := lr.bundles("inputs")
	if err != nil {
		return nil, err
	}
	outputs, err := lr.bundles("outputs")
	if err != nil {
		return nil, err
	}
	numInputs := inputs.Size()
	if numInputs+outputs.Size() > numWires {
		return nil, formatErrorf("%d inputs and %d outputs exceed %d wires",
			numInputs, outputs.Size(), numWires)
	}

	written := make([]bool, numWires)
	for i := 0; i < numInputs; i++ {
		written[i] = true
	}

	c := &Circuit{
		NumGates: numGates,
		NumWires: numWires,
		Inputs:   inputs,
		Outputs:  outputs,
		Gates:    make([]Gate, 0, min(numGates, 1<<20)),
	}

	wire := func(s string) (Wire, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, formatErrorf("line %d: invalid wire '%s'", lr.line, s)
		}
		if v >= uint64(numWires) {
			return 0, indexErrorf("line %d: wire %d out of range [0...%d)",
				lr.line, v, numWires)
		}
		return Wire(v), nil
	}

	for gate := 0; gate < numGates; gate++ {
		parts, err := lr.next()
		if err != nil {
			if err == io.EOF {
				return nil, formatErrorf("truncated file: got %d gates, expected %d",
					gate, numGates)
			}
			return nil, err
		}
		if len(parts) < 3 {
			return nil, formatErrorf("line %d: invalid gate: %v", lr.line, parts)
		}
		arity, err := lr.ints(parts[:2])
		if err != nil {
			return nil, err
		}
		nin := arity[0]
		nout := arity[1]
		if 2+nin+nout+1 != len(parts) {
			return nil, formatErrorf("line %d: invalid gate: %v", lr.line, parts)
		}
		token := parts[len(parts)-1]
		op, ok := tokens[token]
		if !ok {
			return nil, formatErrorf("line %d: unknown gate '%s'",
				lr.line, token)
		}
		if nin != op.Arity() || nout != 1 {
			return nil, formatErrorf("line %d: %s: invalid arity %d/%d",
				lr.line, op, nin, nout)
		}

		var ws [3]Wire
		for i := 0; i < nin+1; i++ {
			ws[i], err = wire(parts[2+i])
			if err != nil {
				return nil, err
			}
		}
		for i := 0; i < nin; i++ {
			if !written[ws[i]] {
				return nil, formatErrorf("line %d: wire %d read before written",
					lr.line, ws[i])
			}
		}
		g := Gate{
			Input0: ws[0],
			Op:     op,
		}
		if nin == 2 {
			g.Input1 = ws[1]
		}
		g.Output = ws[nin]
		if int(g.Output) < numInputs {
			return nil, formatErrorf("line %d: gate writes input wire %d",
				lr.line, g.Output)
		}
		written[g.Output] = true

		c.Gates = append(c.Gates, g)
		c.Stats[op]++
	}

	// Trailing lines must be empty.
	parts, err = lr.next()
	if err == nil {
		return nil, formatErrorf("line %d: extra gate: %v", lr.line, parts)
	} else if err != io.EOF {
		return nil, err
	}

	for i := 0; i < outputs.Size(); i++ {
		w := c.OutputWire(i)
		if !written[w] {
			return nil, formatErrorf("output wire %d is not defined", w)
		}
	}

	return c, nil
}
