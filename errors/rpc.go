package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// RPCError is a failure reported by the node itself. Codespace, Code and
// Log are kept verbatim as returned in the ABCI response, Kind is the root
// error used to categorize it.
type RPCError struct {
	Kind      *Error
	Codespace string
	Code      uint32
	Log       string

	stack errors.StackTrace
}

// QueryFailed returns an error describing an ABCI query that was answered
// with a non-zero code.
func QueryFailed(codespace string, code uint32, log string) error {
	return newRPCError(ErrQueryFailed, codespace, code, log)
}

// BroadcastFailed returns an error describing a transaction rejected by the
// node's mempool check with a non-zero code.
func BroadcastFailed(codespace string, code uint32, log string) error {
	return newRPCError(ErrBroadcastFailed, codespace, code, log)
}

func newRPCError(kind *Error, codespace string, code uint32, log string) *RPCError {
	// Borrow the stack of a pkg/errors value, skipping this constructor.
	st := errors.New("").(stackTracer).StackTrace()
	if len(st) > 2 {
		st = st[2:]
	}
	return &RPCError{
		Kind:      kind,
		Codespace: codespace,
		Code:      code,
		Log:       log,
		stack:     st,
	}
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s! codespace: %s, code: %d, log: %s", e.Kind.desc, e.Codespace, e.Code, e.Log)
}

// Cause implements the causer interface. It returns the root kind so that
// ErrQueryFailed.Is(err) matches.
func (e *RPCError) Cause() error {
	return e.Kind
}

// StackTrace implements the stackTracer interface.
func (e *RPCError) StackTrace() errors.StackTrace {
	return e.stack
}

// AsRPCError returns the node reported error carried by err, if any.
func AsRPCError(err error) (*RPCError, bool) {
	for err != nil {
		if e, ok := err.(*RPCError); ok {
			return e, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}
