// Copyright (c) 2024–2026 The magnadc developers. All rights reserved.
// Project site: https://github.com/gotmc/magnadc
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package magnadc

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates no reply line arrived within the transport's read
// timeout.
var ErrTimeout = errors.New("read timeout")

// ErrClosed indicates a read or write on a transport that has already
// been closed.
var ErrClosed = errors.New("transport closed")

// ConnectError reports a serial port that could not be opened. No
// commands have been sent when this is returned.
type ConnectError struct {
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("open %s: %s", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// CommError reports a failed exchange with the instrument after the port
// opened: a write failure, a read failure, or a read timeout. Fatal to a
// run in progress.
type CommError struct {
	Op  string // wire text of the command or query that failed
	Err error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

// ParseError reports a query reply that could not be parsed as the
// expected type. The exchange itself succeeded; callers may treat the
// reading as skipped.
type ParseError struct {
	Op    string // wire text of the query
	Reply string // raw reply line
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable reply %q", e.Op, e.Reply)
}

func (e *ParseError) Unwrap() error { return e.Err }
