package client

import (
	"context"

	"github.com/left-curve/grug-go/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
)

// RequestQuery is used for the query interface to mirror the abci query interface
type RequestQuery = abci.RequestQuery

// ResponseQuery is used for the query interface to mirror the abci query interface
type ResponseQuery = abci.ResponseQuery

// TxHash is the hash used to identify a transaction.
type TxHash = cmn.HexBytes

// BroadcastResult is the mempool admission result of a transaction.
type BroadcastResult struct {
	Code      uint32
	Codespace string
	Log       string
	Data      []byte
	Hash      TxHash
}

// Transport is the connection to a node. Errors returned by a transport are
// network failures, node reported failures are carried by the response
// codes.
type Transport interface {
	ABCIQuery(ctx context.Context, req RequestQuery) (*ResponseQuery, error)
	BroadcastTxSync(ctx context.Context, tx []byte) (*BroadcastResult, error)
}

/***
These are some helper functions to make a connection
to a full node.

NewHTTPConnection talks to a remote node. Any other tendermint ABCI
client (a local node in tests, a mock) can be adapted with NewTransport.
***/

// NewHTTPConnection takes a URL and sends all requests to the remote node.
// Both http(s) and ws(s) schemes are accepted.
func NewHTTPConnection(remote string) Transport {
	return NewTransport(rpcclient.NewHTTP(remote, "/websocket"))
}

// NewTransport adapts a tendermint ABCI client.
//
// Tendermint clients do not accept a context. The context is only checked
// before the request is sent, timeouts are the concern of the underlying
// client.
func NewTransport(conn rpcclient.ABCIClient) Transport {
	return &tmTransport{conn: conn}
}

type tmTransport struct {
	conn rpcclient.ABCIClient
}

func (t *tmTransport) ABCIQuery(ctx context.Context, req RequestQuery) (*ResponseQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query %s: %s", req.Path, err)
	}
	opts := rpcclient.ABCIQueryOptions{Height: req.Height, Prove: req.Prove}
	res, err := t.conn.ABCIQueryWithOptions(req.Path, req.Data, opts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query %s: %s", req.Path, err)
	}
	return &res.Response, nil
}

// BroadcastTxSync leaves the codespace of the result empty: the tendermint
// broadcast result carries only code and log.
func (t *tmTransport) BroadcastTxSync(ctx context.Context, tx []byte) (*BroadcastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast: %s", err)
	}
	res, err := t.conn.BroadcastTxSync(tx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast: %s", err)
	}
	return &BroadcastResult{
		Code: res.Code,
		Log:  res.Log,
		Data: res.Data,
		Hash: res.Hash,
	}, nil
}
