//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package session

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/circuit"
	"github.com/markkurossi/halfgates/env"
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/p2p"
	"github.com/markkurossi/halfgates/transport"
	"gotest.tools/assert"
)

const (
	keyBits   = 256
	blockBits = 128
	numAND    = blockBits
)

// blockCircuit creates a block-cipher shaped circuit with a 256-bit
// key, a 128-bit plaintext, and a 128-bit output. Output bit i is
// NOT((k[i] AND pt[i]) XOR k[128+i]).
func blockCircuit(t testing.TB) *circuit.Circuit {
	var b strings.Builder

	in := keyBits + blockBits
	fmt.Fprintf(&b, "%d %d\n", 3*blockBits, in+3*blockBits)
	fmt.Fprintf(&b, "2 %d %d\n", keyBits, blockBits)
	fmt.Fprintf(&b, "1 %d\n\n", blockBits)
	for i := 0; i < blockBits; i++ {
		fmt.Fprintf(&b, "2 1 %d %d %d AND\n", i, keyBits+i, in+i)
	}
	for i := 0; i < blockBits; i++ {
		fmt.Fprintf(&b, "2 1 %d %d %d XOR\n",
			in+i, blockBits+i, in+blockBits+i)
	}
	for i := 0; i < blockBits; i++ {
		fmt.Fprintf(&b, "1 1 %d %d INV\n", in+blockBits+i, in+2*blockBits+i)
	}
	c, err := circuit.Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func seeded(t testing.TB, seed byte) *env.Config {
	key := make([]byte, ot.PRGSeedSize)
	key[0] = seed
	prg, err := ot.NewPRGFromSeed(key)
	if err != nil {
		t.Fatalf("NewPRGFromSeed: %v", err)
	}
	return &env.Config{
		Rand: prg,
	}
}

func inputBits(n int, seed int) []bool {
	result := make([]bool, n)
	for i := range result {
		result[i] = (i*7+seed)%3 == 0
	}
	return result
}

// encode returns the evaluator's active input labels for the
// generator session's fixed inputs.
func encode(g *Session, bits []bool) []ot.Label {
	result := make([]ot.Label, len(g.in))
	for i, l0 := range g.in {
		result[i] = g.gen.Encode(l0, bits[i])
	}
	return result
}

func decode(t *testing.T, g *Session, out0, out []ot.Label) []bool {
	result := make([]bool, len(out))
	for i := range out {
		bit, err := circuit.BitFromLabel(g.gen.Wire(out0[i]), out[i])
		assert.NilError(t, err)
		result[i] = bit
	}
	return result
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"generator", "garbler", "G", "alice", "1"} {
		r, err := ParseRole(s)
		assert.NilError(t, err)
		assert.Equal(t, r, Generator)
	}
	for _, s := range []string{"evaluator", "e", "Bob", "2"} {
		r, err := ParseRole(s)
		assert.NilError(t, err)
		assert.Equal(t, r, Evaluator)
	}
	_, err := ParseRole("carol")
	assert.ErrorContains(t, err, "unknown role")
}

func TestRunBatchDiscard(t *testing.T) {
	c := blockCircuit(t)
	s, err := New(nil, Generator, c, transport.NewDiscard())
	assert.NilError(t, err)

	batch, err := s.RunBatch(100, false)
	assert.NilError(t, err)
	assert.Equal(t, batch.Computes, 100)
	assert.Equal(t, batch.ANDPerCompute, uint64(numAND))
	assert.Equal(t, batch.ANDGates, uint64(100*numAND))
	assert.Equal(t, batch.Bytes, uint64(100*numAND*circuit.TableSize))
	assert.Equal(t, s.NumAND(), uint64(100*numAND))

	// The counter accumulates over batches.
	_, err = s.RunBatch(1, true)
	assert.NilError(t, err)
	assert.Equal(t, s.NumAND(), uint64(101*numAND))
	assert.Assert(t, s.Rate() > 0)

	assert.NilError(t, s.Teardown())
}

func TestRunBatchBuffer(t *testing.T) {
	c := blockCircuit(t)
	buf := transport.NewBuffer()
	s, err := New(nil, Generator, c, buf)
	assert.NilError(t, err)

	var first []byte
	for i := 0; i < 20; i++ {
		buf.Clear()
		s.Rewind()
		batch, err := s.RunBatch(5, false)
		assert.NilError(t, err)
		assert.Equal(t, buf.Size(), 5*numAND*circuit.TableSize)
		assert.Equal(t, batch.Bytes, uint64(buf.Size()))

		digest := Digest(s.cfg, buf.Bytes())
		if first == nil {
			first = digest
		} else {
			assert.DeepEqual(t, digest, first)
		}
	}
	assert.Equal(t, s.NumAND(), uint64(100*numAND))

	// Without Rewind the hash keys are not reused.
	buf.Clear()
	_, err = s.RunBatch(5, false)
	assert.NilError(t, err)
	assert.Assert(t, !bytes.Equal(Digest(s.cfg, buf.Bytes()), first))
}

// run computes the circuit once over the channel pair and returns the
// decoded output bits and the generator's compute byte count.
func run(t *testing.T, c *circuit.Circuit, genCh, evCh transport.Channel,
	bits []bool) ([]bool, uint64) {

	gen, err := New(seeded(t, 1), Generator, c, genCh)
	assert.NilError(t, err)

	out0 := make([]ot.Label, c.Outputs.Size())
	done := make(chan error)
	go func() {
		start := genCh.BytesTransferred()
		err := gen.Compute(out0, gen.in)
		if err == nil {
			err = genCh.Flush()
		}
		if err == nil && genCh.BytesTransferred()-start !=
			uint64(numAND*circuit.TableSize) {
			err = fmt.Errorf("compute transferred %d bytes",
				genCh.BytesTransferred()-start)
		}
		done <- err
	}()

	if evCh == nil {
		assert.NilError(t, <-done)
		return nil, 0
	}

	// A buffer is not shared between goroutines: the evaluator
	// replays it after the generator is done.
	_, replay := evCh.(*transport.Buffer)
	if replay {
		assert.NilError(t, <-done)
	}

	ev, err := New(nil, Evaluator, c, evCh)
	assert.NilError(t, err)
	out := make([]ot.Label, c.Outputs.Size())
	assert.NilError(t, ev.Compute(out, encode(gen, bits)))
	if !replay {
		assert.NilError(t, <-done)
	}

	return decode(t, gen, out0, out), genCh.BytesTransferred()
}

func TestChannelInterchangeability(t *testing.T) {
	c := blockCircuit(t)
	bits := inputBits(c.Inputs.Size(), 1)
	expected, err := c.Eval(bits)
	assert.NilError(t, err)

	// Discard: the generator never fails.
	run(t, c, transport.NewDiscard(), nil, bits)

	// Buffer replayed to the evaluator.
	buf := transport.NewBuffer()
	resultBuf, xferBuf := run(t, c, buf, buf, bits)
	assert.DeepEqual(t, resultBuf, expected)

	// Connected pipe.
	g, e := p2p.Pipe()
	resultNet, _ := run(t, c, g, e, bits)
	assert.DeepEqual(t, resultNet, expected)

	// The buffer counts both the generator's writes and the
	// evaluator's reads.
	assert.Equal(t, g.BytesTransferred(), xferBuf/2)
	assert.Equal(t, e.BytesTransferred(), g.BytesTransferred())
}

func TestEvaluate(t *testing.T) {
	c := blockCircuit(t)
	bits := inputBits(c.Inputs.Size(), 2)
	expected, err := c.Eval(bits)
	assert.NilError(t, err)

	gc, ec := p2p.Pipe()

	type result struct {
		bits []bool
		err  error
	}
	done := make(chan result)
	go func() {
		ev, err := New(nil, Evaluator, c, ec)
		if err != nil {
			done <- result{err: err}
			return
		}
		out, err := ev.Evaluate(bits[keyBits:])
		done <- result{bits: out, err: err}
	}()

	gen, err := New(nil, Generator, c, gc)
	assert.NilError(t, err)
	assert.Equal(t, gen.GeneratorInputs(), keyBits)

	out, err := gen.Evaluate(bits[:keyBits])
	assert.NilError(t, err)
	assert.DeepEqual(t, out, expected)

	r := <-done
	assert.NilError(t, r.err)
	assert.DeepEqual(t, r.bits, expected)
	assert.Equal(t, gen.NumAND(), uint64(numAND))

	_, err = gen.Evaluate(bits)
	assert.Assert(t, errors.Is(err, circuit.ErrIndex))

	assert.NilError(t, gen.Teardown())
}

func TestEvaluateTCP(t *testing.T) {
	c := blockCircuit(t)
	bits := inputBits(c.Inputs.Size(), 3)
	expected, err := c.Eval(bits)
	assert.NilError(t, err)

	l, err := p2p.Listen("127.0.0.1:0", nil)
	assert.NilError(t, err)
	defer l.Close()

	done := make(chan error)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			done <- err
			return
		}
		gen, err := New(nil, Generator, c, conn)
		if err != nil {
			done <- err
			return
		}
		if _, err := gen.Evaluate(bits[:keyBits]); err != nil {
			done <- err
			return
		}
		done <- gen.Teardown()
	}()

	conn, err := p2p.Dial(l.Addr().String(), 1, nil)
	assert.NilError(t, err)
	ev, err := New(nil, Evaluator, c, conn)
	assert.NilError(t, err)
	out, err := ev.Evaluate(bits[keyBits:])
	assert.NilError(t, err)
	assert.DeepEqual(t, out, expected)

	assert.NilError(t, <-done)
	assert.NilError(t, ev.Teardown())
}

func TestNetworkBatch(t *testing.T) {
	c := blockCircuit(t)
	gc, ec := p2p.Pipe()

	done := make(chan error)
	go func() {
		ev, err := New(nil, Evaluator, c, ec)
		if err == nil {
			_, err = ev.RunBatch(100, false)
		}
		done <- err
	}()

	gen, err := New(nil, Generator, c, gc)
	assert.NilError(t, err)
	batch, err := gen.RunBatch(100, false)
	assert.NilError(t, err)
	assert.NilError(t, <-done)

	assert.Equal(t, batch.ANDPerCompute, uint64(numAND))
	assert.Equal(t, batch.Bytes, uint64(100*numAND*circuit.TableSize))
}

func TestProtocolMismatch(t *testing.T) {
	c := blockCircuit(t)
	other, err := circuit.Parse(strings.NewReader(
		"1 3\n2 1 1\n1 1\n2 1 0 1 2 AND\n"))
	assert.NilError(t, err)

	buf := transport.NewBuffer()
	_, err = New(nil, Generator, c, buf)
	assert.NilError(t, err)

	_, err = New(nil, Evaluator, other, transport.NewBufferFrom(buf.Bytes()))
	assert.Assert(t, errors.Is(err, circuit.ErrProtocolMismatch), err)

	// Truncated garbled table stream.
	gen, err := New(nil, Generator, c, buf)
	assert.NilError(t, err)
	start := buf.Size()
	_, err = gen.RunBatch(1, false)
	assert.NilError(t, err)

	data := buf.Bytes()[:buf.Size()-circuit.TableSize/2]
	evCh := transport.NewBufferFrom(data[start-len(gen.Fingerprint())-
		ot.LabelSize:])
	ev, err := New(nil, Evaluator, c, evCh)
	assert.NilError(t, err)
	_, err = ev.RunBatch(1, false)
	assert.Assert(t, errors.Is(err, circuit.ErrProtocolMismatch), err)
}

type failChannel struct{}

var errLinkDown = errors.New("link down")

func (ch *failChannel) Send(data []byte) error {
	return errLinkDown
}

func (ch *failChannel) Receive(buf []byte) error {
	return errLinkDown
}

func (ch *failChannel) Flush() error {
	return errLinkDown
}

func (ch *failChannel) BytesTransferred() uint64 {
	return 0
}

func TestReconnect(t *testing.T) {
	c := blockCircuit(t)

	discard := transport.NewDiscard()
	s, err := New(nil, Generator, c, discard)
	assert.NilError(t, err)
	delta := s.Generator().Delta()

	// A failed handshake keeps the current binding.
	err = s.Reconnect(&failChannel{})
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)
	assert.Assert(t, errors.Is(err, errLinkDown), err)
	assert.Equal(t, s.Channel(), transport.Channel(discard))
	assert.Assert(t, s.Generator().Delta().Equal(delta))
	assert.Assert(t, s.Generator().Delta().S())

	buf := transport.NewBuffer()
	assert.NilError(t, s.Reconnect(buf))
	assert.Equal(t, s.Channel(), transport.Channel(buf))
	assert.Assert(t, buf.Size() > 0)

	_, err = s.RunBatch(1, false)
	assert.NilError(t, err)

	assert.Assert(t, !s.Generator().Delta().Equal(delta))
	assert.Assert(t, s.Generator().Delta().S())

	err = s.Reconnect(transport.NewDiscard())
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)
}

func TestReconnectMismatch(t *testing.T) {
	c := blockCircuit(t)
	other, err := circuit.Parse(strings.NewReader(
		"1 3\n2 1 1\n1 1\n2 1 0 1 2 AND\n"))
	assert.NilError(t, err)

	buf := transport.NewBuffer()
	_, err = New(nil, Generator, c, buf)
	assert.NilError(t, err)
	ev, err := New(nil, Evaluator, c, transport.NewBufferFrom(buf.Bytes()))
	assert.NilError(t, err)

	buf = transport.NewBuffer()
	_, err = New(nil, Generator, other, buf)
	assert.NilError(t, err)

	// A mismatch is fatal and tears the session down.
	err = ev.Reconnect(transport.NewBufferFrom(buf.Bytes()))
	assert.Assert(t, errors.Is(err, circuit.ErrProtocolMismatch), err)
	_, err = ev.RunBatch(1, false)
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)
}

func TestDeadPeer(t *testing.T) {
	c := blockCircuit(t)
	gc, ec := p2p.Pipe()

	done := make(chan error)
	go func() {
		ev, err := New(nil, Evaluator, c, ec)
		if err == nil {
			err = ev.Teardown()
		}
		done <- err
	}()

	s, err := New(nil, Generator, c, gc)
	assert.NilError(t, err)
	assert.NilError(t, <-done)

	_, err = s.RunBatch(100, false)
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)

	err = s.Teardown()
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)
	assert.NilError(t, s.Teardown())
}

func TestTeardown(t *testing.T) {
	c := blockCircuit(t)
	gc, ec := p2p.Pipe()

	done := make(chan error)
	go func() {
		ev, err := New(nil, Evaluator, c, ec)
		if err == nil {
			err = ev.Teardown()
		}
		done <- err
	}()

	s, err := New(nil, Generator, c, gc)
	assert.NilError(t, err)
	assert.NilError(t, <-done)

	assert.Assert(t, s.Generator().Delta().S())
	assert.NilError(t, s.Teardown())
	assert.Assert(t, s.Generator().Delta().Equal(ot.Label{}))

	err = s.Compute(s.out, s.in)
	assert.Assert(t, errors.Is(err, circuit.ErrTransport), err)

	// Teardown is idempotent.
	assert.NilError(t, s.Teardown())
}

func TestDigest(t *testing.T) {
	cfg := new(env.Config)
	d1 := Digest(cfg, []byte("garbled"))
	d2 := Digest(cfg, []byte("garbled"))
	assert.Equal(t, len(d1), 32)
	assert.Assert(t, bytes.Equal(d1, d2))
	assert.Assert(t, !bytes.Equal(d1, Digest(cfg, []byte("tables"))))
}
