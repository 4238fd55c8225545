//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the garbling engine.
package env

import (
	"crypto/rand"
	"hash"
	"io"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Config defines the global system configuration for the garbling
// engine. It configures system operation for all modules. Config must
// not be modified after being passed to any module. It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the source of entropy for garbling and OT.
	Rand io.Reader

	// Logger receives structured log events. A nil logger discards
	// all events.
	Logger *zap.Logger

	// NewHash creates the digest used for circuit fingerprints and
	// batch digests. Defaults to BLAKE2b-256.
	NewHash func() hash.Hash

	// GeneratorBundles is the number of leading input bundles owned
	// by the generator. Zero selects the default of one bundle.
	GeneratorBundles int
}

// GetRandom returns the source of entropy for garbling, OT, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the configured logger or a no-op logger.
func (config *Config) GetLogger() *zap.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	return zap.NewNop()
}

// GetHash returns a new digest instance.
func (config *Config) GetHash() hash.Hash {
	if config.NewHash != nil {
		return config.NewHash()
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for oversized keys.
		panic(err)
	}
	return h
}

// GetGeneratorBundles returns the number of input bundles owned by
// the generator.
func (config *Config) GetGeneratorBundles() int {
	if config.GeneratorBundles > 0 {
		return config.GeneratorBundles
	}
	return 1
}
