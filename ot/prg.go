//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"io"

	"golang.org/x/crypto/chacha20"
)

// PRGSeedSize specifies the PRG seed size in bytes.
const PRGSeedSize = chacha20.KeySize

// PRG implements a deterministic label generator. It expands a
// 256-bit seed into a ChaCha20 keystream and cuts the stream into
// labels.
type PRG struct {
	cipher *chacha20.Cipher
	zero   [64 * LabelSize]byte
	buf    [64 * LabelSize]byte
	pos    int
}

// NewPRG creates a new PRG seeded from the random source.
func NewPRG(rand io.Reader) (*PRG, error) {
	var seed [PRGSeedSize]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return nil, err
	}
	return NewPRGFromSeed(seed[:])
}

// NewPRGFromSeed creates a new PRG from the seed.
func NewPRGFromSeed(seed []byte) (*PRG, error) {
	var nonce [chacha20.NonceSize]byte

	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		return nil, err
	}
	prg := &PRG{
		cipher: c,
	}
	prg.pos = len(prg.buf)
	return prg, nil
}

// Label returns the next label from the keystream.
func (prg *PRG) Label() Label {
	if prg.pos+LabelSize > len(prg.buf) {
		prg.cipher.XORKeyStream(prg.buf[:], prg.zero[:])
		prg.pos = 0
	}
	var l Label
	l.SetBytes(prg.buf[prg.pos:])
	prg.pos += LabelSize
	return l
}

// Labels fills the argument slice with labels from the keystream.
func (prg *PRG) Labels(labels []Label) {
	for i := range labels {
		labels[i] = prg.Label()
	}
}

// Read implements io.Reader and fills p from the keystream.
func (prg *PRG) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		if prg.pos >= len(prg.buf) {
			prg.cipher.XORKeyStream(prg.buf[:], prg.zero[:])
			prg.pos = 0
		}
		c := copy(p[n:], prg.buf[prg.pos:])
		prg.pos += c
		n += c
	}
	return n, nil
}
