/*
Package errors implements custom error interfaces for the grug client.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. Root errors are
registered with a unique code using Register(code, description). For reusing
errors - use Errxxx.New and Errxxx.Newf, or Wrap an existing error.

Failures reported by a node (a non-zero ABCI response code) are represented
by *RPCError. It keeps the codespace, code and log exactly as the node
returned them, and its cause is one of ErrQueryFailed or ErrBroadcastFailed,
so

	errors.ErrQueryFailed.Is(err)

works no matter how many times the error was wrapped.

There is also support for stacktraces. Please ensure you create the custom
error using ErrXyz.New("...") or errors.Wrap(err, "...") at the point of
creation to ensure we attach a stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
for the error
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
