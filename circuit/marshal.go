//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

// MarshalBristol marshals the circuit in the Bristol format.
func (c *Circuit) MarshalBristol(w io.Writer) error {
	out := bufio.NewWriter(w)

	fmt.Fprintf(out, "%d %d\n", c.NumGates, c.NumWires)
	fmt.Fprintf(out, "%d", len(c.Inputs))
	for _, input := range c.Inputs {
		fmt.Fprintf(out, " %d", input.Size)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d", len(c.Outputs))
	for _, ret := range c.Outputs {
		fmt.Fprintf(out, " %d", ret.Size)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)

	for _, g := range c.Gates {
		fmt.Fprintf(out, "%d 1", len(g.Inputs()))
		for _, w := range g.Inputs() {
			fmt.Fprintf(out, " %d", w)
		}
		fmt.Fprintf(out, " %d", g.Output)
		fmt.Fprintf(out, " %s\n", g.Op)
	}

	return out.Flush()
}

// Dot creates graphviz dot output of the circuit.
func (c *Circuit) Dot(out io.Writer) {
	fmt.Fprintf(out, "digraph circuit\n{\n")
	fmt.Fprintf(out, "  overlap=scale;\n")
	fmt.Fprintf(out, "  node\t[fontname=\"Helvetica\"];\n")
	fmt.Fprintf(out, "  {\n    node [shape=plaintext];\n")
	for w := 0; w < c.NumWires; w++ {
		fmt.Fprintf(out, "    w%d\t[label=\"%d\"];\n", w, w)
	}
	fmt.Fprintf(out, "  }\n")

	fmt.Fprintf(out, "  {\n    node [shape=box];\n")
	for idx, gate := range c.Gates {
		fmt.Fprintf(out, "    g%d\t[label=\"%s\"];\n", idx, gate.Op)
	}
	fmt.Fprintf(out, "  }\n")

	fmt.Fprintf(out, "  {  rank=same")
	for w := 0; w < c.Inputs.Size(); w++ {
		fmt.Fprintf(out, "; w%d", w)
	}
	fmt.Fprintf(out, ";}\n")

	fmt.Fprintf(out, "  {  rank=same")
	for w := 0; w < c.Outputs.Size(); w++ {
		fmt.Fprintf(out, "; w%d", c.OutputWire(w))
	}
	fmt.Fprintf(out, ";}\n")

	for idx, gate := range c.Gates {
		for _, i := range gate.Inputs() {
			fmt.Fprintf(out, "  w%d -> g%d;\n", i, idx)
		}
		fmt.Fprintf(out, "  g%d -> w%d;\n", idx, gate.Output)
	}
	fmt.Fprintf(out, "}\n")
}

// PrintStats prints the circuit statistics as a table. The garbled
// column shows the number of table bytes one compute transfers.
func (c *Circuit) PrintStats(out io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Item").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Inputs")
	row.Column(fmt.Sprintf("%v (%d bits)", c.Inputs, c.Inputs.Size()))

	row = tab.Row()
	row.Column("Outputs")
	row.Column(fmt.Sprintf("%v (%d bits)", c.Outputs, c.Outputs.Size()))

	row = tab.Row()
	row.Column("Wires")
	row.Column(fmt.Sprintf("%d", c.NumWires))

	for op := XOR; op <= INV; op++ {
		row = tab.Row()
		row.Column(op.String())
		row.Column(fmt.Sprintf("%d", c.Stats[op]))
	}

	row = tab.Row()
	row.Column("Gates").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", c.NumGates)).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("Garbled").SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(c.NumAND() * TableSize).String()).
		SetFormat(tabulate.FmtItalic)

	tab.Print(out)
}
