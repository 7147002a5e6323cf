package grug

import (
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// Query tags as they appear on the wire. A response always carries the tag
// of the request it answers.
const (
	QueryTagInfo      = "info"
	QueryTagBalance   = "balance"
	QueryTagBalances  = "balances"
	QueryTagSupply    = "supply"
	QueryTagSupplies  = "supplies"
	QueryTagCode      = "code"
	QueryTagCodes     = "codes"
	QueryTagAccount   = "account"
	QueryTagAccounts  = "accounts"
	QueryTagWasmRaw   = "wasm_raw"
	QueryTagWasmSmart = "wasm_smart"
)

var queryTags = []string{
	QueryTagInfo,
	QueryTagBalance,
	QueryTagBalances,
	QueryTagSupply,
	QueryTagSupplies,
	QueryTagCode,
	QueryTagCodes,
	QueryTagAccount,
	QueryTagAccounts,
	QueryTagWasmRaw,
	QueryTagWasmSmart,
}

// QueryRequest is a query served by the app query path. Exactly one field
// must be set.
//
// Pagination cursors (StartAfter, Limit) are passed to the node as they
// are. A nil cursor is omitted.
type QueryRequest struct {
	Info      *InfoRequest
	Balance   *BalanceRequest
	Balances  *BalancesRequest
	Supply    *SupplyRequest
	Supplies  *SuppliesRequest
	Code      *CodeRequest
	Codes     *CodesRequest
	Account   *AccountRequest
	Accounts  *AccountsRequest
	WasmRaw   *WasmRawRequest
	WasmSmart *WasmSmartRequest
}

type InfoRequest struct{}

type BalanceRequest struct {
	Address Address `json:"address"`
	Denom   string  `json:"denom"`
}

type BalancesRequest struct {
	Address    Address `json:"address"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type SupplyRequest struct {
	Denom string `json:"denom"`
}

type SuppliesRequest struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type CodeRequest struct {
	Hash Hash `json:"hash"`
}

type CodesRequest struct {
	StartAfter Hash    `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type AccountRequest struct {
	Address Address `json:"address"`
}

type AccountsRequest struct {
	StartAfter Address `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type WasmRawRequest struct {
	Contract Address `json:"contract"`
	Key      Binary  `json:"key"`
}

// WasmSmartRequest queries a contract. Msg is the serialized query payload.
type WasmSmartRequest struct {
	Contract Address `json:"contract"`
	Msg      Binary  `json:"msg"`
}

func (q QueryRequest) variants() []variant {
	return []variant{
		{tag: QueryTagInfo, set: q.Info != nil, value: q.Info},
		{tag: QueryTagBalance, set: q.Balance != nil, value: q.Balance},
		{tag: QueryTagBalances, set: q.Balances != nil, value: q.Balances},
		{tag: QueryTagSupply, set: q.Supply != nil, value: q.Supply},
		{tag: QueryTagSupplies, set: q.Supplies != nil, value: q.Supplies},
		{tag: QueryTagCode, set: q.Code != nil, value: q.Code},
		{tag: QueryTagCodes, set: q.Codes != nil, value: q.Codes},
		{tag: QueryTagAccount, set: q.Account != nil, value: q.Account},
		{tag: QueryTagAccounts, set: q.Accounts != nil, value: q.Accounts},
		{tag: QueryTagWasmRaw, set: q.WasmRaw != nil, value: q.WasmRaw},
		{tag: QueryTagWasmSmart, set: q.WasmSmart != nil, value: q.WasmSmart},
	}
}

// Kind returns the tag of the set variant, or an empty string if the
// request is not a valid union.
func (q QueryRequest) Kind() string {
	v, err := activeVariant(errors.ErrInvalidInput, "query request", q.variants())
	if err != nil {
		return ""
	}
	return v.tag
}

func (q QueryRequest) MarshalJSON() ([]byte, error) {
	return marshalUnion(errors.ErrInvalidInput, "query request", q.variants())
}

func (q *QueryRequest) UnmarshalJSON(raw []byte) error {
	var res QueryRequest
	err := unmarshalUnion(errors.ErrInvalidInput, "query request", raw, queryTags, func(tag string, value json.RawMessage) error {
		var dst interface{}
		switch tag {
		case QueryTagInfo:
			res.Info = new(InfoRequest)
			dst = res.Info
		case QueryTagBalance:
			res.Balance = new(BalanceRequest)
			dst = res.Balance
		case QueryTagBalances:
			res.Balances = new(BalancesRequest)
			dst = res.Balances
		case QueryTagSupply:
			res.Supply = new(SupplyRequest)
			dst = res.Supply
		case QueryTagSupplies:
			res.Supplies = new(SuppliesRequest)
			dst = res.Supplies
		case QueryTagCode:
			res.Code = new(CodeRequest)
			dst = res.Code
		case QueryTagCodes:
			res.Codes = new(CodesRequest)
			dst = res.Codes
		case QueryTagAccount:
			res.Account = new(AccountRequest)
			dst = res.Account
		case QueryTagAccounts:
			res.Accounts = new(AccountsRequest)
			dst = res.Accounts
		case QueryTagWasmRaw:
			res.WasmRaw = new(WasmRawRequest)
			dst = res.WasmRaw
		case QueryTagWasmSmart:
			res.WasmSmart = new(WasmSmartRequest)
			dst = res.WasmSmart
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "%s: %s", tag, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*q = res
	return nil
}

// QueryResponse is the answer to a QueryRequest. Exactly one field is set
// and its tag equals the tag of the request. Use the As accessors to read
// a variant, they fail with ErrUnexpectedResponse on a mismatch.
type QueryResponse struct {
	Info      *InfoResponse
	Balance   *Coin
	Balances  *Coins
	Supply    *Coin
	Supplies  *Coins
	Code      *Binary
	Codes     *[]Hash
	Account   *AccountResponse
	Accounts  *[]AccountResponse
	WasmRaw   *WasmRawResponse
	WasmSmart *WasmSmartResponse
}

func (r QueryResponse) variants() []variant {
	return []variant{
		{tag: QueryTagInfo, set: r.Info != nil, value: r.Info},
		{tag: QueryTagBalance, set: r.Balance != nil, value: r.Balance},
		{tag: QueryTagBalances, set: r.Balances != nil, value: r.Balances},
		{tag: QueryTagSupply, set: r.Supply != nil, value: r.Supply},
		{tag: QueryTagSupplies, set: r.Supplies != nil, value: r.Supplies},
		{tag: QueryTagCode, set: r.Code != nil, value: r.Code},
		{tag: QueryTagCodes, set: r.Codes != nil, value: r.Codes},
		{tag: QueryTagAccount, set: r.Account != nil, value: r.Account},
		{tag: QueryTagAccounts, set: r.Accounts != nil, value: r.Accounts},
		{tag: QueryTagWasmRaw, set: r.WasmRaw != nil, value: r.WasmRaw},
		{tag: QueryTagWasmSmart, set: r.WasmSmart != nil, value: r.WasmSmart},
	}
}

// Kind returns the tag of the set variant, or an empty string if the
// response is not a valid union.
func (r QueryResponse) Kind() string {
	v, err := activeVariant(errors.ErrUnexpectedResponse, "query response", r.variants())
	if err != nil {
		return ""
	}
	return v.tag
}

func (r QueryResponse) MarshalJSON() ([]byte, error) {
	return marshalUnion(errors.ErrUnexpectedResponse, "query response", r.variants())
}

func (r *QueryResponse) UnmarshalJSON(raw []byte) error {
	var res QueryResponse
	err := unmarshalUnion(errors.ErrUnexpectedResponse, "query response", raw, queryTags, func(tag string, value json.RawMessage) error {
		var dst interface{}
		switch tag {
		case QueryTagInfo:
			res.Info = new(InfoResponse)
			dst = res.Info
		case QueryTagBalance:
			res.Balance = new(Coin)
			dst = res.Balance
		case QueryTagBalances:
			res.Balances = new(Coins)
			dst = res.Balances
		case QueryTagSupply:
			res.Supply = new(Coin)
			dst = res.Supply
		case QueryTagSupplies:
			res.Supplies = new(Coins)
			dst = res.Supplies
		case QueryTagCode:
			res.Code = new(Binary)
			dst = res.Code
		case QueryTagCodes:
			res.Codes = new([]Hash)
			dst = res.Codes
		case QueryTagAccount:
			res.Account = new(AccountResponse)
			dst = res.Account
		case QueryTagAccounts:
			res.Accounts = new([]AccountResponse)
			dst = res.Accounts
		case QueryTagWasmRaw:
			res.WasmRaw = new(WasmRawResponse)
			dst = res.WasmRaw
		case QueryTagWasmSmart:
			res.WasmSmart = new(WasmSmartResponse)
			dst = res.WasmSmart
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Wrapf(errors.ErrInvalidType, "%s: %s", tag, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*r = res
	return nil
}

func (r QueryResponse) mismatch(want string) error {
	got := r.Kind()
	if got == "" {
		got = "(invalid)"
	}
	return errors.Wrapf(errors.ErrUnexpectedResponse, "want %s, got %s", want, got)
}

func (r QueryResponse) AsInfo() (*InfoResponse, error) {
	if r.Kind() != QueryTagInfo {
		return nil, r.mismatch(QueryTagInfo)
	}
	return r.Info, nil
}

func (r QueryResponse) AsBalance() (*Coin, error) {
	if r.Kind() != QueryTagBalance {
		return nil, r.mismatch(QueryTagBalance)
	}
	return r.Balance, nil
}

func (r QueryResponse) AsBalances() (Coins, error) {
	if r.Kind() != QueryTagBalances {
		return nil, r.mismatch(QueryTagBalances)
	}
	return *r.Balances, nil
}

func (r QueryResponse) AsSupply() (*Coin, error) {
	if r.Kind() != QueryTagSupply {
		return nil, r.mismatch(QueryTagSupply)
	}
	return r.Supply, nil
}

func (r QueryResponse) AsSupplies() (Coins, error) {
	if r.Kind() != QueryTagSupplies {
		return nil, r.mismatch(QueryTagSupplies)
	}
	return *r.Supplies, nil
}

func (r QueryResponse) AsCode() (Binary, error) {
	if r.Kind() != QueryTagCode {
		return nil, r.mismatch(QueryTagCode)
	}
	return *r.Code, nil
}

func (r QueryResponse) AsCodes() ([]Hash, error) {
	if r.Kind() != QueryTagCodes {
		return nil, r.mismatch(QueryTagCodes)
	}
	return *r.Codes, nil
}

func (r QueryResponse) AsAccount() (*AccountResponse, error) {
	if r.Kind() != QueryTagAccount {
		return nil, r.mismatch(QueryTagAccount)
	}
	return r.Account, nil
}

func (r QueryResponse) AsAccounts() ([]AccountResponse, error) {
	if r.Kind() != QueryTagAccounts {
		return nil, r.mismatch(QueryTagAccounts)
	}
	return *r.Accounts, nil
}

func (r QueryResponse) AsWasmRaw() (*WasmRawResponse, error) {
	if r.Kind() != QueryTagWasmRaw {
		return nil, r.mismatch(QueryTagWasmRaw)
	}
	return r.WasmRaw, nil
}

func (r QueryResponse) AsWasmSmart() (*WasmSmartResponse, error) {
	if r.Kind() != QueryTagWasmSmart {
		return nil, r.mismatch(QueryTagWasmSmart)
	}
	return r.WasmSmart, nil
}
