//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"math/big"
)

// Eval evaluates the circuit in plain with the input bits. The bits
// are in the positional wire order of the circuit inputs.
func (c *Circuit) Eval(bits []bool) ([]bool, error) {
	if len(bits) != c.Inputs.Size() {
		return nil, indexErrorf("invalid number of input bits: got %d, expected %d",
			len(bits), c.Inputs.Size())
	}

	wires := make([]bool, c.NumWires)
	copy(wires, bits)

	for _, gate := range c.Gates {
		var result bool

		switch gate.Op {
		case XOR:
			result = wires[gate.Input0] != wires[gate.Input1]

		case XNOR:
			result = wires[gate.Input0] == wires[gate.Input1]

		case AND:
			result = wires[gate.Input0] && wires[gate.Input1]

		case INV:
			result = !wires[gate.Input0]

		default:
			return nil, formatErrorf("invalid gate %s", gate.Op)
		}

		wires[gate.Output] = result
	}

	result := make([]bool, c.Outputs.Size())
	for i := range result {
		result[i] = wires[c.OutputWire(i)]
	}
	return result, nil
}

// Compute evaluates the circuit in plain with per-bundle input values
// and returns per-bundle output values.
func (c *Circuit) Compute(inputs []*big.Int) ([]*big.Int, error) {
	bits, err := c.Inputs.Bits(inputs)
	if err != nil {
		return nil, err
	}
	result, err := c.Eval(bits)
	if err != nil {
		return nil, err
	}
	return c.Outputs.Values(result)
}
