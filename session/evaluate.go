//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"github.com/cockroachdb/errors"
	"github.com/lukechampine/fastxor"
	"github.com/markkurossi/halfgates/circuit"
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/transport"
	"go.uber.org/zap"
)

// GeneratorInputs returns the number of input bits owned by the
// generator. The generator owns the first cfg.GeneratorBundles input
// bundles and the evaluator the rest.
func (s *Session) GeneratorInputs() int {
	n := s.cfg.GetGeneratorBundles()
	if n > len(s.circ.Inputs) {
		n = len(s.circ.Inputs)
	}
	return s.circ.Inputs[:n].Size()
}

// Evaluate runs the full two-party protocol with the party's input
// bits and returns the circuit output bits to both parties. The
// evaluator receives its input labels with oblivious transfer so the
// channel must connect two concurrently running peers.
func (s *Session) Evaluate(bits []bool) ([]bool, error) {
	if s.closed {
		return nil, errors.Mark(errors.New("session closed"),
			circuit.ErrTransport)
	}
	numGen := s.GeneratorInputs()
	numInputs := s.circ.Inputs.Size()

	var expected int
	if s.role == Generator {
		expected = numGen
	} else {
		expected = numInputs - numGen
	}
	if len(bits) != expected {
		return nil, errors.Mark(
			errors.Newf("%v: got %d input bits, expected %d",
				s.role, len(bits), expected),
			circuit.ErrIndex)
	}
	s.log.Debug("evaluate",
		zap.Int("generator-bits", numGen),
		zap.Int("evaluator-bits", numInputs-numGen))

	var result []bool
	var err error
	if s.role == Generator {
		result, err = s.evaluateGenerator(bits, numGen)
	} else {
		result, err = s.evaluateEvaluator(bits, numGen)
	}
	if err != nil {
		s.log.Error("evaluate failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// newOT creates the oblivious transfer for the evaluator's inputs.
func (s *Session) newOT() ot.OT {
	return ot.NewCO(s.cfg.GetRandom())
}

func (s *Session) evaluateGenerator(bits []bool, numGen int) (
	[]bool, error) {

	in := s.gen.InputLabels(s.circ.Inputs.Size())

	// Our input labels.
	var d ot.LabelData
	for i := 0; i < numGen; i++ {
		l := s.gen.Encode(in[i], bits[i])
		if err := s.ch.Send(l.Bytes(&d)); err != nil {
			return nil, circuit.TransportError(err, "send input label")
		}
	}

	// Peer input labels.
	wires := make([]ot.Wire, len(in)-numGen)
	for i := range wires {
		wires[i] = s.gen.Wire(in[numGen+i])
	}
	xfer := s.newOT()
	if err := xfer.InitSender(transport.NewIO(s.ch)); err != nil {
		return nil, circuit.TransportError(err, "OT init")
	}
	if err := xfer.Send(wires); err != nil {
		return nil, circuit.TransportError(err, "OT send")
	}

	if err := s.Compute(s.out, in); err != nil {
		return nil, err
	}

	// Reveal output permute bits.
	if err := s.ch.Send(packBits(s.out)); err != nil {
		return nil, circuit.TransportError(err, "send output mask")
	}
	if err := s.ch.Flush(); err != nil {
		return nil, circuit.TransportError(err, "flush")
	}

	// Receive result.
	data := make([]byte, (len(s.out)+7)/8)
	if err := s.ch.Receive(data); err != nil {
		return nil, circuit.TransportError(err, "receive result")
	}
	return unpackBits(data, len(s.out)), nil
}

func (s *Session) evaluateEvaluator(bits []bool, numGen int) (
	[]bool, error) {

	in := make([]ot.Label, s.circ.Inputs.Size())

	// Peer input labels.
	var d ot.LabelData
	for i := 0; i < numGen; i++ {
		if err := s.ch.Receive(d[:]); err != nil {
			return nil, circuit.TransportError(err, "receive input label")
		}
		in[i].SetData(&d)
	}

	// Our input labels.
	xfer := s.newOT()
	if err := xfer.InitReceiver(transport.NewIO(s.ch)); err != nil {
		return nil, circuit.TransportError(err, "OT init")
	}
	if err := xfer.Receive(bits, in[numGen:]); err != nil {
		return nil, circuit.TransportError(err, "OT receive")
	}

	if err := s.Compute(s.out, in); err != nil {
		return nil, err
	}

	mask := make([]byte, (len(s.out)+7)/8)
	if err := s.ch.Receive(mask); err != nil {
		return nil, circuit.TransportError(err, "receive output mask")
	}
	data := packBits(s.out)
	fastxor.Bytes(data, data, mask)

	if err := s.ch.Send(data); err != nil {
		return nil, circuit.TransportError(err, "send result")
	}
	if err := s.ch.Flush(); err != nil {
		return nil, circuit.TransportError(err, "flush")
	}
	return unpackBits(data, len(s.out)), nil
}

// packBits packs the labels' permute bits into bytes, label i to bit
// i%8 of byte i/8.
func packBits(labels []ot.Label) []byte {
	result := make([]byte, (len(labels)+7)/8)
	for i, l := range labels {
		result[i/8] |= byte(l.Bit()) << (i % 8)
	}
	return result
}

func unpackBits(data []byte, n int) []bool {
	result := make([]bool, n)
	for i := range result {
		result[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return result
}
