//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"testing"
)

func TestPRGDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, PRGSeedSize)

	p0, err := NewPRG(bytes.NewReader(seed))
	if err != nil {
		t.Fatal(err)
	}
	p1, err := NewPRGFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	a := make([]Label, 100)
	b := make([]Label, 100)
	p0.Labels(a)
	p1.Labels(b)

	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("label %d: %s != %s", i, a[i], b[i])
		}
		if i > 0 && a[i].Equal(a[i-1]) {
			t.Fatalf("label %d repeats", i)
		}
	}
}

func TestPRGShortSeed(t *testing.T) {
	_, err := NewPRG(bytes.NewReader([]byte{1, 2, 3}))
	if err == nil {
		t.Fatalf("NewPRG accepted a short seed")
	}
}

func TestPRGRead(t *testing.T) {
	seed := make([]byte, PRGSeedSize)
	p0, _ := NewPRGFromSeed(seed)
	p1, _ := NewPRGFromSeed(seed)

	buf := make([]byte, 3*LabelSize)
	if _, err := p0.Read(buf); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		l := p1.Label()
		var data LabelData
		if !bytes.Equal(l.Bytes(&data), buf[i*LabelSize:(i+1)*LabelSize]) {
			t.Fatalf("label %d does not match keystream", i)
		}
	}
}

func BenchmarkPRGLabel(b *testing.B) {
	prg, _ := NewPRGFromSeed(make([]byte, PRGSeedSize))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prg.Label()
	}
}
