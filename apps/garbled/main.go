//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bytes"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/markkurossi/halfgates/circuit"
	"github.com/markkurossi/halfgates/env"
	"github.com/markkurossi/halfgates/p2p"
	"github.com/markkurossi/halfgates/session"
	"github.com/markkurossi/halfgates/transport"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	heading = color.New(color.FgHiWhite, color.Bold)
	cfg     = new(env.Config)
)

func main() {
	roleName := pflag.StringP("role", "r", "generator",
		"party role: generator or evaluator")
	addr := pflag.StringP("addr", "a", "127.0.0.1:12345",
		"generator listen address")
	retries := pflag.Int("retries", 10, "evaluator connect attempts")
	computes := pflag.IntP("computes", "n", 100,
		"computes in discard and network modes")
	batches := pflag.Int("batches", 20, "buffer mode batches")
	batchSize := pflag.Int("batch-size", 5, "computes per buffer mode batch")
	input := pflag.StringP("input", "i", "",
		"evaluate with comma-separated bundle values")
	genBundles := pflag.Int("generator-bundles", 1,
		"input bundles owned by the generator")
	verbose := pflag.BoolP("verbose", "v", false, "verbose output")
	pflag.Parse()

	log.SetFlags(0)

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: garbled [options] circuit.txt\n")
		pflag.PrintDefaults()
		os.Exit(1)
	}
	role, err := session.ParseRole(*roleName)
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer logger.Sync()
		cfg.Logger = logger
	}
	cfg.GeneratorBundles = *genBundles

	circ, err := circuit.ParseFile(pflag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	heading.Printf("%s: %v\n", role, circ)

	if len(*input) > 0 {
		err = evaluate(role, circ, *addr, *retries, *input)
	} else if role == session.Generator {
		err = benchGenerator(circ, *addr, *computes, *batches, *batchSize)
	} else {
		err = benchEvaluator(circ, *addr, *retries, *computes)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func connect(role session.Role, addr string, retries int) (*p2p.Conn, error) {
	if role == session.Generator {
		l, err := p2p.Listen(addr, cfg.GetLogger())
		if err != nil {
			return nil, err
		}
		defer l.Close()
		fmt.Printf("Listening for evaluator at %s\n", l.Addr())
		return l.Accept()
	}
	return p2p.Dial(addr, retries, cfg.GetLogger())
}

func benchGenerator(circ *circuit.Circuit, addr string,
	computes, batches, batchSize int) error {

	timing := circuit.NewTiming()

	// Garbling only.
	s, err := session.New(cfg, session.Generator, circ, transport.NewDiscard())
	if err != nil {
		return err
	}
	batch, err := s.RunBatch(computes, false)
	if err != nil {
		return err
	}
	if err := s.Teardown(); err != nil {
		return err
	}
	timing.Sample("Discard", []string{
		fmt.Sprintf("%d", computes),
		fmt.Sprintf("%d", batch.ANDGates),
		circuit.FileSize(batch.Bytes).String(),
	})

	// Serialization into memory.
	buf := transport.NewBuffer()
	s, err = session.New(cfg, session.Generator, circ, buf)
	if err != nil {
		return err
	}
	var total uint64
	var digestTime time.Duration
	var digest []byte
	for i := 0; i < batches; i++ {
		buf.Clear()
		s.Rewind()
		batch, err = s.RunBatch(batchSize, false)
		if err != nil {
			return err
		}
		total += batch.ANDGates
		start := time.Now()
		d := session.Digest(cfg, buf.Bytes())
		digestTime += time.Since(start)
		if digest != nil && !bytes.Equal(d, digest) {
			return errors.Newf("batch %d: digest mismatch", i)
		}
		digest = d
	}
	if err := s.Teardown(); err != nil {
		return err
	}
	sample := timing.Sample("Buffer", []string{
		fmt.Sprintf("%d", batches*batchSize),
		fmt.Sprintf("%d", total),
		circuit.FileSize(buf.Size()).String() + "/batch",
	})
	sample.AbsSubSample("Digest", digestTime)

	// Network.
	conn, err := connect(session.Generator, addr, 0)
	if err != nil {
		return err
	}
	s, err = session.New(cfg, session.Generator, circ, conn)
	if err != nil {
		return err
	}
	timing.Sample("Connect", nil)
	stats := conn.Stats.Snapshot()
	batch, err = s.RunBatch(computes, false)
	if err != nil {
		return err
	}
	stats = conn.Stats.Sub(stats)
	if err := s.Teardown(); err != nil {
		return err
	}
	timing.Sample("Network", []string{
		fmt.Sprintf("%d", computes),
		fmt.Sprintf("%d", batch.ANDGates),
		circuit.FileSize(batch.Bytes).String(),
	})

	timing.Print(os.Stdout, "Computes", "AND", "Xfer")
	printStats(stats)
	fmt.Printf("Buffer digest: %x\n", digest)
	fmt.Printf("AND gates per compute: %d\n", batch.ANDPerCompute)

	return nil
}

func benchEvaluator(circ *circuit.Circuit, addr string, retries,
	computes int) error {

	timing := circuit.NewTiming()

	conn, err := connect(session.Evaluator, addr, retries)
	if err != nil {
		return err
	}
	s, err := session.New(cfg, session.Evaluator, circ, conn)
	if err != nil {
		return err
	}
	timing.Sample("Connect", nil)

	stats := conn.Stats.Snapshot()
	batch, err := s.RunBatch(computes, false)
	if err != nil {
		return err
	}
	stats = conn.Stats.Sub(stats)
	if err := s.Teardown(); err != nil {
		return err
	}
	timing.Sample("Network", []string{
		fmt.Sprintf("%d", computes),
		fmt.Sprintf("%d", batch.ANDGates),
		circuit.FileSize(batch.Bytes).String(),
	})
	timing.Print(os.Stdout, "Computes", "AND", "Xfer")
	printStats(stats)

	return nil
}

func printStats(stats p2p.IOStats) {
	fmt.Printf("Network: sent %s, received %s, %d flushes\n",
		circuit.FileSize(stats.Sent.Load()),
		circuit.FileSize(stats.Recvd.Load()),
		stats.Flushed.Load())
}

func evaluate(role session.Role, circ *circuit.Circuit, addr string,
	retries int, input string) error {

	conn, err := connect(role, addr, retries)
	if err != nil {
		return err
	}
	s, err := session.New(cfg, role, circ, conn)
	if err != nil {
		return err
	}
	defer s.Teardown()

	numGen := cfg.GetGeneratorBundles()
	if numGen > len(circ.Inputs) {
		numGen = len(circ.Inputs)
	}
	own := circ.Inputs[numGen:]
	if role == session.Generator {
		own = circ.Inputs[:numGen]
	}

	var values []*big.Int
	for _, v := range strings.Split(input, ",") {
		i, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
		if !ok {
			return errors.Newf("invalid input: %s", v)
		}
		values = append(values, i)
	}
	bits, err := own.Bits(values)
	if err != nil {
		return err
	}

	result, err := s.Evaluate(bits)
	if err != nil {
		return err
	}
	outputs, err := circ.Outputs.Values(result)
	if err != nil {
		return err
	}
	for idx, out := range outputs {
		heading.Printf("Result[%d]: ", idx)
		fmt.Printf("%x\n", out)
	}
	return nil
}
