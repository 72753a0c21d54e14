// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import "fmt"

// ErrorKind classifies protocol and decode failures
type ErrorKind int

const (
	KindTimeout ErrorKind = iota
	KindAck
	KindMalformedAck
	KindPreambleMismatch
	KindChecksum
	KindSizeMismatch
	KindSeparatorMismatch
	KindUnitIndexOutOfRange
	KindProtocolViolation
	KindSelectionOutOfRange
	KindUnitMismatch
	KindInvalidOperand
	KindMalformedIdentity
	KindMalformedTimestamp
)

var kindNames = [...]string{
	"timeout",
	"command not acknowledged",
	"malformed acknowledgement",
	"preamble mismatch",
	"checksum failure",
	"size mismatch",
	"separator mismatch",
	"unit index out of range",
	"protocol violation",
	"selection out of range",
	"unit mismatch",
	"invalid operand",
	"malformed identity",
	"malformed timestamp",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is a protocol or decode failure. Details holds the expected and
// observed values needed to diagnose it.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrTimeout             = &Error{Kind: KindTimeout}
	ErrAck                 = &Error{Kind: KindAck}
	ErrMalformedAck        = &Error{Kind: KindMalformedAck}
	ErrPreambleMismatch    = &Error{Kind: KindPreambleMismatch}
	ErrChecksum            = &Error{Kind: KindChecksum}
	ErrSizeMismatch        = &Error{Kind: KindSizeMismatch}
	ErrSeparatorMismatch   = &Error{Kind: KindSeparatorMismatch}
	ErrUnitIndexOutOfRange = &Error{Kind: KindUnitIndexOutOfRange}
	ErrProtocolViolation   = &Error{Kind: KindProtocolViolation}
	ErrSelectionOutOfRange = &Error{Kind: KindSelectionOutOfRange}
	ErrUnitMismatch        = &Error{Kind: KindUnitMismatch}
	ErrInvalidOperand      = &Error{Kind: KindInvalidOperand}
	ErrMalformedIdentity   = &Error{Kind: KindMalformedIdentity}
	ErrMalformedTimestamp  = &Error{Kind: KindMalformedTimestamp}
)

func newError(kind ErrorKind, details map[string]interface{}, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

func timeoutError(what string, expected, received int) *Error {
	return newError(KindTimeout,
		map[string]interface{}{"expected": expected, "received": received},
		"%s: received %d of %d bytes", what, received, expected)
}
