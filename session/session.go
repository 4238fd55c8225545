//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package session implements the two-party garbling session. A
// session binds one role, one circuit, one wire label store, one
// garbling engine, and one transport channel.
package session

import (
	"crypto/subtle"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/markkurossi/halfgates/circuit"
	"github.com/markkurossi/halfgates/env"
	"github.com/markkurossi/halfgates/ot"
	"github.com/markkurossi/halfgates/transport"
	"github.com/paulbellamy/ratecounter"
	"go.uber.org/zap"
)

// Session implements a garbling session for one protocol role.
type Session struct {
	ID uuid.UUID

	cfg    *env.Config
	log    *zap.Logger
	role   Role
	circ   *circuit.Circuit
	ch     transport.Channel
	prg    *ot.PRG
	store  *circuit.Store
	engine circuit.Engine
	gen    *circuit.Generator
	ip     *circuit.Interpreter
	in     []ot.Label
	out    []ot.Label
	rate   *ratecounter.RateCounter
	digest []byte
	used   bool
	closed bool
}

// Batch describes the result of a RunBatch call.
type Batch struct {
	Computes      int
	Elapsed       time.Duration
	ANDGates      uint64
	ANDPerCompute uint64
	Bytes         uint64
}

// New creates a new session for the role. The generator sends the
// circuit fingerprint to the evaluator, which verifies it against its
// own circuit before the garbling engine is created.
func New(cfg *env.Config, role Role, circ *circuit.Circuit,
	ch transport.Channel) (*Session, error) {

	if cfg == nil {
		cfg = new(env.Config)
	}
	prg, err := ot.NewPRG(cfg.GetRandom())
	if err != nil {
		return nil, err
	}
	id := uuid.New()

	s := &Session{
		ID:     id,
		cfg:    cfg,
		log:    cfg.GetLogger().With(zap.Stringer("session", id), zap.Stringer("role", role)),
		role:   role,
		circ:   circ,
		prg:    prg,
		store:  circuit.NewStore(circ.NumWires),
		out:    make([]ot.Label, circ.Outputs.Size()),
		rate:   ratecounter.NewRateCounter(time.Second),
		digest: circ.Fingerprint(cfg.GetHash()),
	}
	b, err := s.bind(ch)
	if err != nil {
		return nil, err
	}
	s.use(b)

	s.log.Info("session created",
		zap.Int("wires", circ.NumWires),
		zap.Int("gates", circ.NumGates),
		zap.Int("and", circ.NumAND()))

	return s, nil
}

// binding holds the channel specific state of a session.
type binding struct {
	ch     transport.Channel
	engine circuit.Engine
	gen    *circuit.Generator
	ip     *circuit.Interpreter
}

// bind runs the handshake over ch and creates the engine and
// interpreter. The session is not modified.
func (s *Session) bind(ch transport.Channel) (*binding, error) {
	b := &binding{
		ch: ch,
	}
	var err error

	switch s.role {
	case Generator:
		if err = ch.Send(s.digest); err != nil {
			return nil, circuit.TransportError(err, "send circuit fingerprint")
		}
		b.gen, err = circuit.NewGenerator(ch, s.prg)
		if err != nil {
			return nil, err
		}
		b.engine = b.gen

	case Evaluator:
		peer := make([]byte, len(s.digest))
		if err = ch.Receive(peer); err != nil {
			return nil, circuit.TransportError(err,
				"receive circuit fingerprint")
		}
		if subtle.ConstantTimeCompare(peer, s.digest) != 1 {
			s.log.Error("circuit fingerprint mismatch")
			return nil, circuit.ProtocolMismatchf("circuit fingerprint mismatch")
		}
		b.engine, err = circuit.NewEvaluator(ch)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Newf("invalid role %v", s.role)
	}

	b.ip, err = circuit.NewInterpreter(s.circ, s.store, b.engine)
	if err != nil {
		b.engine.Release()
		return nil, err
	}
	s.log.Debug("handshake done", zap.Binary("fingerprint", s.digest))

	return b, nil
}

// use makes b the session's binding.
func (s *Session) use(b *binding) {
	s.ch = b.ch
	s.engine = b.engine
	s.gen = b.gen
	s.ip = b.ip
	s.in = s.inputLabels()
}

// inputLabels draws labels for all circuit inputs. The generator's
// labels are wire 0-labels. The evaluator's labels are only used for
// benchmarking and they do not encode any bits.
func (s *Session) inputLabels() []ot.Label {
	n := s.circ.Inputs.Size()
	if s.gen != nil {
		return s.gen.InputLabels(n)
	}
	result := make([]ot.Label, n)
	s.prg.Labels(result)
	return result
}

// Role returns the session role.
func (s *Session) Role() Role {
	return s.role
}

// Circuit returns the session circuit.
func (s *Session) Circuit() *circuit.Circuit {
	return s.circ
}

// Channel returns the session transport channel.
func (s *Session) Channel() transport.Channel {
	return s.ch
}

// Generator returns the generator engine or nil if the session is an
// evaluator session.
func (s *Session) Generator() *circuit.Generator {
	return s.gen
}

// Fingerprint returns the circuit fingerprint.
func (s *Session) Fingerprint() []byte {
	return s.digest
}

// NumAND returns the number of AND gates the session engine has
// processed. The counter accumulates over all computes.
func (s *Session) NumAND() uint64 {
	return s.engine.NumAND()
}

// Rate returns the number of computes during the last second.
func (s *Session) Rate() int64 {
	return s.rate.Rate()
}

// Compute runs the circuit once. For the generator, in holds the input
// 0-labels and out receives the output 0-labels. For the evaluator, in
// holds the active input labels and out receives the active output
// labels.
func (s *Session) Compute(out, in []ot.Label) error {
	if s.closed {
		return errors.Mark(errors.New("session closed"), circuit.ErrTransport)
	}
	s.used = true
	if err := s.ip.Compute(out, in); err != nil {
		return err
	}
	s.rate.Incr(1)
	return nil
}

// RunBatch runs n computes. If fresh is true, new input labels are
// drawn for each compute, otherwise the session's fixed inputs are
// used. The channel is flushed after the last compute.
func (s *Session) RunBatch(n int, fresh bool) (*Batch, error) {
	startAND := s.engine.NumAND()
	startBytes := s.ch.BytesTransferred()
	start := time.Now()

	for i := 0; i < n; i++ {
		in := s.in
		if fresh {
			in = s.inputLabels()
		}
		if err := s.Compute(s.out, in); err != nil {
			return nil, errors.Wrapf(err, "compute %d", i)
		}
	}
	if err := s.ch.Flush(); err != nil {
		return nil, circuit.TransportError(err, "flush")
	}

	batch := &Batch{
		Computes: n,
		Elapsed:  time.Since(start),
		ANDGates: s.engine.NumAND() - startAND,
		Bytes:    s.ch.BytesTransferred() - startBytes,
	}
	if n > 0 {
		batch.ANDPerCompute = batch.ANDGates / uint64(n)
	}
	s.log.Debug("batch done",
		zap.Int("computes", n),
		zap.Duration("elapsed", batch.Elapsed),
		zap.Uint64("and", batch.ANDGates),
		zap.Uint64("bytes", batch.Bytes))

	return batch, nil
}

// Outputs returns the output labels of the last compute.
func (s *Session) Outputs() []ot.Label {
	return s.out
}

// Reconnect binds the session to a new channel. Reconnect is only
// possible before the session has computed any gates. If the
// handshake fails with a transport error, the session keeps its
// current binding and Reconnect can be retried. A protocol mismatch
// tears the session down.
func (s *Session) Reconnect(ch transport.Channel) error {
	if s.used || s.closed {
		return errors.Mark(
			errors.New("reconnect after gates were computed"),
			circuit.ErrTransport)
	}
	s.log.Info("reconnecting")
	b, err := s.bind(ch)
	if err != nil {
		s.log.Warn("reconnect failed", zap.Error(err))
		if errors.Is(err, circuit.ErrProtocolMismatch) {
			return errors.CombineErrors(err, s.Teardown())
		}
		return err
	}
	s.engine.Release()
	s.use(b)
	return nil
}

// Rewind rewinds the hash key schedule of the session's engine. The
// peer must rewind at the same point. Rewind is meant for replaying
// computes with the session's fixed inputs; rewinding between computes
// with fresh inputs reuses hash keys under the same free-XOR offset.
func (s *Session) Rewind() {
	s.engine.Rewind()
}

// Teardown releases the engine and the wire labels, and closes the
// channel if it implements io.Closer.
func (s *Session) Teardown() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.engine.Release()
	s.store.Clear()
	clear(s.in)
	clear(s.out)
	s.log.Info("session torn down",
		zap.Uint64("and", s.engine.NumAND()),
		zap.Uint64("bytes", s.ch.BytesTransferred()))

	if closer, ok := s.ch.(io.Closer); ok {
		return circuit.TransportError(closer.Close(), "close channel")
	}
	return nil
}

// Digest computes the configured digest of data.
func Digest(cfg *env.Config, data []byte) []byte {
	h := cfg.GetHash()
	h.Write(data)
	return h.Sum(nil)
}
