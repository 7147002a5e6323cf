package errors

import (
	"fmt"
)

const (
	// SuccessABCICode declares an ABCI response use 0 to signal that the
	// processing was successful and no error is returned.
	SuccessABCICode = 0

	// Codespace is reported with every non-zero code produced from a grug
	// root error.
	Codespace = "grug"

	// All unclassified errors that do not provide a code are clubbed under
	// an internal error code and a generic message.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the codespace, code and log describing err in an ABCI
// response. It is the inverse of what the client reads back into an
// RPCError.
//
// Errors that do not wrap a registered root error are reported with code 1
// and, unless debug is set, a generic log.
func ABCIInfo(err error, debug bool) (string, uint32, string) {
	if isNilErr(err) {
		return "", SuccessABCICode, ""
	}
	if code := abciCode(err); code != internalABCICode {
		if debug {
			return Codespace, code, fmt.Sprintf("%+v", err)
		}
		return Codespace, code, err.Error()
	}
	if debug {
		return Codespace, internalABCICode, fmt.Sprintf("%+v", err)
	}
	return Codespace, internalABCICode, internalABCILog
}

type coder interface {
	Code() uint32
}

// abciCode unwraps err until a root error providing a code is found.
func abciCode(err error) uint32 {
	for {
		if isNilErr(err) {
			return internalABCICode
		}
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		// A group of errors is reported with the code of its first member.
		if u, ok := err.(unpacker); ok {
			if errs := u.Unpack(); len(errs) > 0 {
				err = errs[0]
				continue
			}
			return internalABCICode
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalABCICode
		}
	}
}
