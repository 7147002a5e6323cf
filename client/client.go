package client

import (
	"bytes"
	"context"
	"time"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Query paths served by the node.
const (
	PathApp   = "/app"
	PathStore = "/store"
)

// Client gives access to the chain state and sends transactions through a
// node connection.
//
// Queries are never retried, a failed query is reported to the caller
// together with the code reported by the node.
type Client struct {
	conn      Transport
	logger    log.Logger
	metrics   *Metrics
	proofType string
	poll      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("module", "client")
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithProofType sets the proof op type accepted for proven store queries.
func WithProofType(typ string) Option {
	return func(c *Client) {
		c.proofType = typ
	}
}

// WithPollInterval sets how often WaitForHeight asks the node for its
// latest block.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.poll = d
	}
}

// NewClient wraps a Client around an existing node connection.
func NewClient(conn Transport, opts ...Option) *Client {
	c := &Client{
		conn:      conn,
		logger:    log.NewNopLogger(),
		proofType: grug.DefaultProofType,
		poll:      DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query is the generic ABCI query. A height of zero queries the latest
// state.
//
// A non zero response code is returned as an errors.ErrQueryFailed error
// carrying codespace, code and log of the node.
func (c *Client) Query(ctx context.Context, path string, data []byte, height int64, prove bool) (*ResponseQuery, error) {
	start := time.Now()
	res, err := c.conn.ABCIQuery(ctx, RequestQuery{
		Path:   path,
		Data:   data,
		Height: height,
		Prove:  prove,
	})
	if err != nil {
		c.metrics.observeQuery(path, resultNetwork, start)
		if !errors.ErrNetwork.Is(err) {
			err = errors.Wrap(errors.ErrNetwork, err.Error())
		}
		return nil, err
	}
	if res.Code != 0 {
		c.metrics.observeQuery(path, resultFailed, start)
		c.logger.Debug("query failed", "path", path, "codespace", res.Codespace, "code", res.Code, "log", res.Log)
		return nil, errors.QueryFailed(res.Codespace, res.Code, res.Log)
	}
	c.metrics.observeQuery(path, resultOK, start)
	return res, nil
}

// QueryStore reads a raw key of the chain store. A missing key returns a
// nil value.
//
// With prove set the response must carry exactly one proof op of the
// configured type, bound to the requested key. Otherwise the response is
// rejected with errors.ErrProofValidation. The proof is not verified
// against a root hash, use VerifyStore for that.
func (c *Client) QueryStore(ctx context.Context, key []byte, height int64, prove bool) ([]byte, *grug.Proof, error) {
	res, err := c.Query(ctx, PathStore, key, height, prove)
	if err != nil {
		return nil, nil, err
	}
	var value []byte
	if len(res.Value) > 0 {
		value = res.Value
	}
	if !prove {
		return value, nil, nil
	}

	if res.Proof == nil {
		return nil, nil, errors.Wrap(errors.ErrProofValidation, "no proof")
	}
	if n := len(res.Proof.Ops); n != 1 {
		return nil, nil, errors.Wrapf(errors.ErrProofValidation, "want 1 proof op, got %d", n)
	}
	op := res.Proof.Ops[0]
	if op.Type != c.proofType {
		return nil, nil, errors.Wrapf(errors.ErrProofValidation, "proof type %q, want %q", op.Type, c.proofType)
	}
	if !bytes.Equal(op.Key, key) {
		return nil, nil, errors.Wrapf(errors.ErrProofValidation, "proof is bound to key %X, requested %X", op.Key, key)
	}

	var proof grug.Proof
	if err := grug.Deserialize(op.Data, &proof); err != nil {
		return nil, nil, errors.Wrap(errors.ErrProofValidation, err.Error())
	}
	return value, &proof, nil
}

// VerifyStore reads a raw key together with its proof and verifies the
// proof against the given root hash, usually the app hash of the block at
// height. A nil value means the key is proven to be absent.
func (c *Client) VerifyStore(ctx context.Context, key []byte, root grug.Hash, height int64) ([]byte, error) {
	value, proof, err := c.QueryStore(ctx, key, height, true)
	if err != nil {
		return nil, err
	}
	if err := proof.Verify(root, key, value); err != nil {
		return nil, err
	}
	return value, nil
}

// QueryApp sends a query request to the app. The response must carry the
// tag of the request.
func (c *Client) QueryApp(ctx context.Context, req grug.QueryRequest, height int64) (*grug.QueryResponse, error) {
	data, err := grug.Serialize(req)
	if err != nil {
		return nil, err
	}
	res, err := c.Query(ctx, PathApp, data, height, false)
	if err != nil {
		return nil, err
	}
	var out grug.QueryResponse
	if err := grug.Deserialize(res.Value, &out); err != nil {
		return nil, errors.Wrap(errors.ErrUnexpectedResponse, err.Error())
	}
	if got, want := out.Kind(), req.Kind(); got != want {
		return nil, errors.Wrapf(errors.ErrUnexpectedResponse, "want %s, got %s", want, got)
	}
	return &out, nil
}
