// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scopemeter

import "fmt"

// AckOutcome is the meaning of a command acknowledgement code
type AckOutcome int

// Acknowledgement outcomes
const (
	AckSuccess AckOutcome = iota
	AckSyntaxError
	AckExecutionError
	AckSyncError
	AckCommError
	AckUnknownCode
)

func (o AckOutcome) String() string {
	switch o {
	case AckSuccess:
		return "success"
	case AckSyntaxError:
		return "command syntax error"
	case AckExecutionError:
		return "command execution error"
	case AckSyncError:
		return "synchronization error"
	case AckCommError:
		return "communication error"
	default:
		return "unknown error code"
	}
}

// Ack is a decoded acknowledgement. Code is the raw first byte.
type Ack struct {
	Outcome AckOutcome
	Code    byte
}

// ParseAck decodes the two byte acknowledgement that follows every command
func ParseAck(data []byte) (Ack, error) {
	if len(data) != 2 {
		return Ack{}, timeoutError("command acknowledgement", 2, len(data))
	}
	if data[1] != CR {
		return Ack{}, newError(KindMalformedAck,
			map[string]interface{}{"expected": byte(CR), "observed": data[1]},
			"expected CR after acknowledgement code, got 0x%02X", data[1])
	}

	ack := Ack{Code: data[0], Outcome: AckUnknownCode}
	if data[0] >= '0' && data[0] <= '4' {
		ack.Outcome = AckOutcome(data[0] - '0')
	}
	return ack, nil
}

// Err returns nil for a successful acknowledgement, or an ErrAck describing
// the failure.
func (a Ack) Err() error {
	if a.Outcome == AckSuccess {
		return nil
	}
	msg := a.Outcome.String()
	if a.Outcome == AckUnknownCode {
		msg = fmt.Sprintf("%s (%q)", msg, a.Code)
	}
	return newError(KindAck,
		map[string]interface{}{"outcome": a.Outcome, "code": a.Code},
		"%s", msg)
}
