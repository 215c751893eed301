// Copyright (c) 2024–2026 The magnadc developers. All rights reserved.
// Project site: https://github.com/gotmc/magnadc
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package magnadc

import (
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds how long ReadLine waits for a reply line
// when the caller did not pick a timeout.
const DefaultReadTimeout = 5 * time.Second

// Port is the line-oriented exchange an Instrument runs on. *Transport
// implements it over a serial connection.
type Port interface {
	WriteLine(s string) error
	ReadLine() (string, error)
	Close() error
}

// Transport owns one serial connection to the supply. Every outbound
// line is terminated with a single newline; every inbound line is read
// up to its terminator and trimmed of surrounding whitespace.
type Transport struct {
	mu     sync.Mutex
	rwc    io.ReadWriteCloser
	closed bool
}

// Open opens the named serial port at the given baud rate. A
// non-positive timeout falls back to DefaultReadTimeout. Failure to open
// is reported as a *ConnectError.
func Open(port string, baud int, timeout time.Duration) (*Transport, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, &ConnectError{Port: port, Err: err}
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, &ConnectError{Port: port, Err: err}
	}
	return NewTransport(p), nil
}

// NewTransport wraps an already-open connection. Useful against piped or
// recorded connections.
func NewTransport(rwc io.ReadWriteCloser) *Transport {
	return &Transport{rwc: rwc}
}

// WriteLine trims s and writes it with a single trailing newline.
func (t *Transport) WriteLine(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	_, err := io.WriteString(t.rwc, strings.TrimSpace(s)+"\n")
	return err
}

// ReadLine reads the next reply line, trimmed of surrounding whitespace.
// If the connection makes no progress within its read timeout, ReadLine
// fails with ErrTimeout.
func (t *Transport) ReadLine() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return "", ErrClosed
	}
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := t.rwc.Read(buf)
		if n == 0 {
			if err == nil {
				// go.bug.st/serial reports an expired read
				// timeout as a zero-byte read with no error.
				return "", ErrTimeout
			}
			return "", err
		}
		if buf[0] == '\n' {
			return strings.TrimSpace(string(line)), nil
		}
		line = append(line, buf[0])
	}
}

// Close closes the connection. It is safe to call more than once; calls
// after the first do nothing and return nil.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.rwc.Close()
}
