//
// Copyright (c) 2020-2023 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"net"
	"time"

	"go.uber.org/zap"
)

// RetryDelay specifies the delay between connection attempts.
var RetryDelay = 5 * time.Second

// Listener accepts connections from the peer.
type Listener struct {
	listener net.Listener
	log      *zap.Logger
}

// Listen creates a new listener for the TCP address.
func Listen(addr string, log *zap.Logger) (*Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("listening for connections", zap.Stringer("addr", listener.Addr()))

	return &Listener{
		listener: listener,
		log:      log,
	}, nil
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Accept waits for the next connection.
func (l *Listener) Accept() (*Conn, error) {
	nc, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	l.log.Info("new connection", zap.Stringer("remote", nc.RemoteAddr()))
	return NewConn(nc), nil
}

// Close closes the listener.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// Dial connects to the peer at addr. The connection is attempted at
// most attempts times with RetryDelay between the attempts.
func Dial(addr string, attempts int, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Warn("connect failed, retrying",
				zap.String("addr", addr), zap.Duration("delay", RetryDelay),
				zap.Error(err))
			<-time.After(RetryDelay)
		}
		var nc net.Conn
		nc, err = net.Dial("tcp", addr)
		if err == nil {
			log.Info("connected", zap.String("addr", addr))
			return NewConn(nc), nil
		}
	}
	return nil, err
}
