package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedNetwork is returned when a network has no registered aggregator,
	// registry or provider.
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// ErrUnknownStrategy is returned when a strategy name is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrUnknownMethod is returned when a call names a method missing from its ABI.
	ErrUnknownMethod = errors.New("method not found in ABI")

	// ErrCallReverted marks a sub-call that failed inside an aggregated call.
	ErrCallReverted = errors.New("call reverted")

	// ErrResultLengthMismatch is returned when the aggregator returns a different
	// number of results than calls submitted.
	ErrResultLengthMismatch = errors.New("result length mismatch")

	// ErrInvalidSnapshot is returned when a snapshot marker cannot be parsed.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidAddress is returned when a call target is not a hex address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidParams is returned when strategy params are missing or malformed.
	ErrInvalidParams = errors.New("invalid strategy params")
)

// EncodeError reports a call that could not be encoded at a given batch position.
type EncodeError struct {
	Index  int
	Method string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding call %d (%s): %v", e.Index, e.Method, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports return data that does not match the method's output
// signature at a given batch position.
type DecodeError struct {
	Index  int
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding result %d (%s): %v", e.Index, e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StrategyError reports a failed strategy invocation.
type StrategyError struct {
	Index int
	Name  string
	Err   error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}
