package entity

import "fmt"

// CallDescriptor names a single read-only contract call.
type CallDescriptor struct {
	Target string
	Method string
	Args   []any
}

// NewCallDescriptor creates a CallDescriptor. The argument slice is copied so the
// descriptor does not alias the caller's slice.
func NewCallDescriptor(target, method string, args ...any) (CallDescriptor, error) {
	c := CallDescriptor{
		Target: target,
		Method: method,
		Args:   append([]any(nil), args...),
	}
	if err := c.validate(); err != nil {
		return CallDescriptor{}, err
	}
	return c, nil
}

func (c CallDescriptor) validate() error {
	if c.Target == "" {
		return fmt.Errorf("target must not be empty")
	}
	if c.Method == "" {
		return fmt.Errorf("method must not be empty")
	}
	return nil
}
