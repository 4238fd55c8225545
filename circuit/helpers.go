//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/markkurossi/halfgates/ot"
)

// BitFromLabel resolves a concrete label back into a boolean
// value. The function compares labels by value and it must only be
// used on revealed outputs.
func BitFromLabel(wire ot.Wire, label ot.Label) (bool, error) {
	switch {
	case label.Equal(wire.L0):
		return false, nil
	case label.Equal(wire.L1):
		return true, nil
	default:
		return false, ProtocolMismatchf("unknown label %s for wire %v",
			label, wire)
	}
}
