package grug

import (
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// Account is the on chain record of a contract.
//
// Admin is optional. An account without admin cannot be migrated, which is
// different from an account administrated by itself (Admin equal to its own
// address).
type Account struct {
	CodeHash Hash     `json:"code_hash"`
	Admin    *Address `json:"admin,omitempty"`
}

// HasAdmin returns true if an admin is set.
func (a Account) HasAdmin() bool {
	return a.Admin != nil && len(*a.Admin) > 0
}

// AccountResponse is an account together with its address.
type AccountResponse struct {
	Address  Address  `json:"address"`
	CodeHash Hash     `json:"code_hash"`
	Admin    *Address `json:"admin,omitempty"`
}

// Account returns the account record.
func (r AccountResponse) Account() Account {
	return Account{CodeHash: r.CodeHash, Admin: r.Admin}
}

// AccountStateResponse is the state exposed by the standard account
// contract. Sequence is the number of transactions the account has sent.
type AccountStateResponse struct {
	PublicKey Binary `json:"public_key,omitempty"`
	Sequence  uint32 `json:"sequence"`
}

// Permission describes who may perform a chain level action.
type Permission struct {
	// Kind is one of "nobody", "everybody" or "somebodies".
	Kind       string
	Somebodies []Address
}

const (
	PermissionNobody     = "nobody"
	PermissionEverybody  = "everybody"
	PermissionSomebodies = "somebodies"
)

// MarshalJSON encodes "nobody" and "everybody" as plain strings and
// somebodies as {"somebodies": [...]}.
func (p Permission) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PermissionNobody, PermissionEverybody:
		return json.Marshal(p.Kind)
	case PermissionSomebodies:
		list := p.Somebodies
		if list == nil {
			list = []Address{}
		}
		return json.Marshal(map[string][]Address{PermissionSomebodies: list})
	default:
		return nil, errors.Wrapf(errors.ErrInvalidType, "permission %q", p.Kind)
	}
}

// UnmarshalJSON is the reverse of MarshalJSON.
func (p *Permission) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s != PermissionNobody && s != PermissionEverybody {
			return errors.Wrapf(errors.ErrInvalidType, "permission %q", s)
		}
		*p = Permission{Kind: s}
		return nil
	}
	var m map[string][]Address
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.Wrap(errors.ErrInvalidType, "permission")
	}
	list, ok := m[PermissionSomebodies]
	if !ok || len(m) != 1 {
		return errors.Wrap(errors.ErrInvalidType, "permission must be nobody, everybody or somebodies")
	}
	*p = Permission{Kind: PermissionSomebodies, Somebodies: list}
	return nil
}

// Permissions lists who may upload code and instantiate contracts.
type Permissions struct {
	Upload      Permission `json:"upload"`
	Instantiate Permission `json:"instantiate"`
}

// Config is the chain level configuration. Only the owner may update it,
// a chain without owner cannot be reconfigured.
type Config struct {
	Owner         *Address    `json:"owner,omitempty"`
	Bank          Address     `json:"bank"`
	BeginBlockers []Address   `json:"begin_blockers"`
	EndBlockers   []Address   `json:"end_blockers"`
	Permissions   Permissions `json:"permissions"`
}

// BlockInfo describes a finalized block.
type BlockInfo struct {
	Height    uint64 `json:"height,string"`
	Timestamp uint64 `json:"timestamp,string"`
	Hash      Hash   `json:"hash"`
}

// InfoResponse is the chain level information.
type InfoResponse struct {
	ChainID            string    `json:"chain_id"`
	Config             Config    `json:"config"`
	LastFinalizedBlock BlockInfo `json:"last_finalized_block"`
}

// WasmRawResponse is the raw value of a contract storage key. A nil Value
// means the key is not set.
type WasmRawResponse struct {
	Contract Address `json:"contract"`
	Key      Binary  `json:"key"`
	Value    *Binary `json:"value,omitempty"`
}

// WasmSmartResponse is the result of a contract query. Data is the
// serialized response of the contract.
type WasmSmartResponse struct {
	Contract Address `json:"contract"`
	Data     Binary  `json:"data"`
}
