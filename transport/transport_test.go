//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/halfgates/ot"
)

func TestDiscard(t *testing.T) {
	d := NewDiscard()

	if err := d.Send([]byte("Hello, world!")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := []byte{1, 2, 3, 4}
	if err := d.Receive(buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(buf, make([]byte, 4)) {
		t.Errorf("Receive did not zero buffer: %x", buf)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if d.BytesTransferred() != 17 {
		t.Errorf("BytesTransferred: got %d, expected 17", d.BytesTransferred())
	}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer()

	for i := 0; i < 4; i++ {
		if err := b.Send([]byte{byte(i), byte(i)}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if b.Size() != 8 {
		t.Fatalf("Size: got %d, expected 8", b.Size())
	}

	buf := make([]byte, 3)
	if err := b.Receive(buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(buf, []byte{0, 0, 1}) {
		t.Errorf("Receive: got %x", buf)
	}
	if b.Unread() != 5 {
		t.Errorf("Unread: got %d, expected 5", b.Unread())
	}
	if b.BytesTransferred() != 11 {
		t.Errorf("BytesTransferred: got %d, expected 11",
			b.BytesTransferred())
	}

	b.Clear()
	if b.Size() != 0 || b.Unread() != 0 {
		t.Errorf("Clear: size=%d, unread=%d", b.Size(), b.Unread())
	}
	if b.BytesTransferred() != 11 {
		t.Errorf("Clear reset the counter: %d", b.BytesTransferred())
	}
	if err := b.Receive(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Receive from empty buffer: %v", err)
	}
}

func TestBufferShort(t *testing.T) {
	b := NewBufferFrom([]byte{1, 2})
	err := b.Receive(make([]byte, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Receive: got %v, expected %v", err, io.ErrUnexpectedEOF)
	}
}

func TestIO(t *testing.T) {
	b := NewBuffer()
	w := NewIO(b)

	if err := w.SendUint32(42); err != nil {
		t.Fatal(err)
	}
	if err := w.SendData([]byte("Hello, world!")); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewIO(NewBufferFrom(b.Bytes()))
	v, err := r.ReceiveUint32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("ReceiveUint32: got %v, expected 42", v)
	}
	data, err := r.ReceiveData()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello, world!" {
		t.Errorf("ReceiveData: got %q", data)
	}
}

func TestIOTooLong(t *testing.T) {
	b := NewBuffer()
	NewIO(b).SendUint32(MaxDataSize + 1)

	_, err := NewIO(NewBufferFrom(b.Bytes())).ReceiveData()
	if !errors.Is(err, ot.ErrMalformed) {
		t.Fatalf("ReceiveData: got %v, expected %v", err, ot.ErrMalformed)
	}
}
