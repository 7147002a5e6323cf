package client

import (
	"context"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// Typed queries. Each one builds a single variant request, sends it with
// QueryApp and returns the matching variant of the response. Pagination
// cursors are passed to the node untouched, nil means not set.

func (c *Client) QueryInfo(ctx context.Context, height int64) (*grug.InfoResponse, error) {
	res, err := c.QueryApp(ctx, grug.QueryRequest{Info: &grug.InfoRequest{}}, height)
	if err != nil {
		return nil, err
	}
	return res.AsInfo()
}

func (c *Client) QueryBalance(ctx context.Context, addr grug.Address, denom string, height int64) (*grug.Coin, error) {
	req := grug.QueryRequest{Balance: &grug.BalanceRequest{Address: addr, Denom: denom}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsBalance()
}

func (c *Client) QueryBalances(ctx context.Context, addr grug.Address, startAfter *string, limit *uint32, height int64) (grug.Coins, error) {
	req := grug.QueryRequest{Balances: &grug.BalancesRequest{Address: addr, StartAfter: startAfter, Limit: limit}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsBalances()
}

func (c *Client) QuerySupply(ctx context.Context, denom string, height int64) (*grug.Coin, error) {
	res, err := c.QueryApp(ctx, grug.QueryRequest{Supply: &grug.SupplyRequest{Denom: denom}}, height)
	if err != nil {
		return nil, err
	}
	return res.AsSupply()
}

func (c *Client) QuerySupplies(ctx context.Context, startAfter *string, limit *uint32, height int64) (grug.Coins, error) {
	req := grug.QueryRequest{Supplies: &grug.SuppliesRequest{StartAfter: startAfter, Limit: limit}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsSupplies()
}

// QueryCode returns the wasm byte code stored under the given hash.
func (c *Client) QueryCode(ctx context.Context, hash grug.Hash, height int64) (grug.Binary, error) {
	res, err := c.QueryApp(ctx, grug.QueryRequest{Code: &grug.CodeRequest{Hash: hash}}, height)
	if err != nil {
		return nil, err
	}
	return res.AsCode()
}

func (c *Client) QueryCodes(ctx context.Context, startAfter grug.Hash, limit *uint32, height int64) ([]grug.Hash, error) {
	req := grug.QueryRequest{Codes: &grug.CodesRequest{StartAfter: startAfter, Limit: limit}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsCodes()
}

func (c *Client) QueryAccount(ctx context.Context, addr grug.Address, height int64) (*grug.AccountResponse, error) {
	res, err := c.QueryApp(ctx, grug.QueryRequest{Account: &grug.AccountRequest{Address: addr}}, height)
	if err != nil {
		return nil, err
	}
	return res.AsAccount()
}

func (c *Client) QueryAccounts(ctx context.Context, startAfter grug.Address, limit *uint32, height int64) ([]grug.AccountResponse, error) {
	req := grug.QueryRequest{Accounts: &grug.AccountsRequest{StartAfter: startAfter, Limit: limit}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsAccounts()
}

func (c *Client) QueryWasmRaw(ctx context.Context, contract grug.Address, key []byte, height int64) (*grug.WasmRawResponse, error) {
	req := grug.QueryRequest{WasmRaw: &grug.WasmRawRequest{Contract: contract, Key: key}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return nil, err
	}
	return res.AsWasmRaw()
}

// QueryWasmSmart sends a query payload to a contract and decodes the
// contract response into out.
func (c *Client) QueryWasmSmart(ctx context.Context, contract grug.Address, payload, out interface{}, height int64) error {
	msg, err := grug.Serialize(payload)
	if err != nil {
		return errors.Wrap(err, "query payload")
	}
	req := grug.QueryRequest{WasmSmart: &grug.WasmSmartRequest{Contract: contract, Msg: msg}}
	res, err := c.QueryApp(ctx, req, height)
	if err != nil {
		return err
	}
	smart, err := res.AsWasmSmart()
	if err != nil {
		return err
	}
	if err := grug.Deserialize(smart.Data, out); err != nil {
		return errors.Wrapf(errors.ErrUnexpectedResponse, "contract response: %s", err)
	}
	return nil
}

// StateQuery is the payload of the account contract query returning the
// account state.
type StateQuery struct {
	State struct{} `json:"state"`
}

// QueryAccountState returns the state of an account contract, most notably
// the sequence of the next transaction it may send.
func (c *Client) QueryAccountState(ctx context.Context, addr grug.Address) (*grug.AccountStateResponse, error) {
	var state grug.AccountStateResponse
	if err := c.QueryWasmSmart(ctx, addr, StateQuery{}, &state, 0); err != nil {
		return nil, err
	}
	return &state, nil
}
