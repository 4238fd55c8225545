//
// io.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"math/big"
)

// IO is the framed message stream the OT protocols run over. Data
// values are length prefixed so the receiver can read them without
// knowing their size in advance.
type IO interface {
	SendData(val []byte) error
	SendUint32(val int) error
	Flush() error
	ReceiveData() ([]byte, error)
	ReceiveUint32() (int, error)
}

func sendString(io IO, str string) error {
	return io.SendData([]byte(str))
}

func receiveString(io IO) (string, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// receiveBigInt receives a curve coordinate. Coordinates are at most
// limit bytes long.
func receiveBigInt(io IO, limit int) (*big.Int, error) {
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) > limit {
		return nil, malformedf("coordinate too long: %d > %d", len(data), limit)
	}
	return new(big.Int).SetBytes(data), nil
}
