package grug

import (
	"encoding/json"

	"github.com/left-curve/grug-go/errors"
)

// Message tags as they appear on the wire.
const (
	MsgTagTransfer     = "transfer"
	MsgTagStoreCode    = "store_code"
	MsgTagInstantiate  = "instantiate"
	MsgTagExecute      = "execute"
	MsgTagMigrate      = "migrate"
	MsgTagUpdateConfig = "update_config"
)

var messageTags = []string{
	MsgTagTransfer,
	MsgTagStoreCode,
	MsgTagInstantiate,
	MsgTagExecute,
	MsgTagMigrate,
	MsgTagUpdateConfig,
}

// Message is a single operation carried by a transaction. Exactly one of
// the fields must be set. A message with none or more than one set can
// neither be encoded nor decoded.
type Message struct {
	Transfer     *TransferMsg
	StoreCode    *StoreCodeMsg
	Instantiate  *InstantiateMsg
	Execute      *ExecuteMsg
	Migrate      *MigrateMsg
	UpdateConfig *UpdateConfigMsg
}

// TransferMsg sends coins to the given recipient.
type TransferMsg struct {
	To    Address `json:"to"`
	Coins Coins   `json:"coins"`
}

// StoreCodeMsg uploads wasm byte code. The code is later referenced by its
// hash, see CodeHashOf.
type StoreCodeMsg struct {
	WasmByteCode Binary `json:"wasm_byte_code"`
}

// InstantiateMsg creates a new contract at
// DeriveAddress(sender, CodeHash, Salt).
type InstantiateMsg struct {
	CodeHash Hash `json:"code_hash"`
	// Msg is the serialized instantiate payload of the contract.
	Msg   Binary   `json:"msg"`
	Salt  Binary   `json:"salt"`
	Funds Coins    `json:"funds"`
	Admin *Address `json:"admin,omitempty"`
}

// ExecuteMsg calls a contract.
type ExecuteMsg struct {
	Contract Address `json:"contract"`
	Msg      Binary  `json:"msg"`
	Funds    Coins   `json:"funds"`
}

// MigrateMsg updates the code of a contract. Only the contract admin is
// authorized to do this.
type MigrateMsg struct {
	Contract    Address `json:"contract"`
	NewCodeHash Hash    `json:"new_code_hash"`
	Msg         Binary  `json:"msg"`
}

// UpdateConfigMsg replaces the chain configuration. Only the owner is
// authorized to do this.
type UpdateConfigMsg struct {
	NewCfg Config `json:"new_cfg"`
}

// NewTransferMsg returns a transfer message.
func NewTransferMsg(to Address, coins Coins) Message {
	return Message{Transfer: &TransferMsg{To: to, Coins: coins}}
}

// NewStoreCodeMsg returns a store code message.
func NewStoreCodeMsg(code []byte) Message {
	return Message{StoreCode: &StoreCodeMsg{WasmByteCode: code}}
}

// NewInstantiateMsg returns an instantiate message. The payload is
// serialized.
func NewInstantiateMsg(codeHash Hash, payload interface{}, salt []byte, funds Coins, admin *Address) (Message, error) {
	bz, err := Serialize(payload)
	if err != nil {
		return Message{}, errors.Wrap(err, "instantiate payload")
	}
	return Message{Instantiate: &InstantiateMsg{
		CodeHash: codeHash,
		Msg:      bz,
		Salt:     salt,
		Funds:    funds,
		Admin:    admin,
	}}, nil
}

// NewExecuteMsg returns an execute message. The payload is serialized.
func NewExecuteMsg(contract Address, payload interface{}, funds Coins) (Message, error) {
	bz, err := Serialize(payload)
	if err != nil {
		return Message{}, errors.Wrap(err, "execute payload")
	}
	return Message{Execute: &ExecuteMsg{Contract: contract, Msg: bz, Funds: funds}}, nil
}

// NewMigrateMsg returns a migrate message. The payload is serialized.
func NewMigrateMsg(contract Address, newCodeHash Hash, payload interface{}) (Message, error) {
	bz, err := Serialize(payload)
	if err != nil {
		return Message{}, errors.Wrap(err, "migrate payload")
	}
	return Message{Migrate: &MigrateMsg{Contract: contract, NewCodeHash: newCodeHash, Msg: bz}}, nil
}

// NewUpdateConfigMsg returns an update config message.
func NewUpdateConfigMsg(cfg Config) Message {
	return Message{UpdateConfig: &UpdateConfigMsg{NewCfg: cfg}}
}

func (m Message) variants() []variant {
	return []variant{
		{tag: MsgTagTransfer, set: m.Transfer != nil, value: m.Transfer},
		{tag: MsgTagStoreCode, set: m.StoreCode != nil, value: m.StoreCode},
		{tag: MsgTagInstantiate, set: m.Instantiate != nil, value: m.Instantiate},
		{tag: MsgTagExecute, set: m.Execute != nil, value: m.Execute},
		{tag: MsgTagMigrate, set: m.Migrate != nil, value: m.Migrate},
		{tag: MsgTagUpdateConfig, set: m.UpdateConfig != nil, value: m.UpdateConfig},
	}
}

// Kind returns the tag of the set variant, or an empty string if the
// message is not a valid union.
func (m Message) Kind() string {
	v, err := activeVariant(errors.ErrInvalidMsg, "message", m.variants())
	if err != nil {
		return ""
	}
	return v.tag
}

// MarshalJSON encodes the message as {"<tag>": {...}}.
func (m Message) MarshalJSON() ([]byte, error) {
	return marshalUnion(errors.ErrInvalidMsg, "message", m.variants())
}

// UnmarshalJSON decodes a message, failing unless exactly one known variant
// is present.
func (m *Message) UnmarshalJSON(raw []byte) error {
	var res Message
	err := unmarshalUnion(errors.ErrInvalidMsg, "message", raw, messageTags, func(tag string, value json.RawMessage) error {
		var dst interface{}
		switch tag {
		case MsgTagTransfer:
			res.Transfer = new(TransferMsg)
			dst = res.Transfer
		case MsgTagStoreCode:
			res.StoreCode = new(StoreCodeMsg)
			dst = res.StoreCode
		case MsgTagInstantiate:
			res.Instantiate = new(InstantiateMsg)
			dst = res.Instantiate
		case MsgTagExecute:
			res.Execute = new(ExecuteMsg)
			dst = res.Execute
		case MsgTagMigrate:
			res.Migrate = new(MigrateMsg)
			dst = res.Migrate
		case MsgTagUpdateConfig:
			res.UpdateConfig = new(UpdateConfigMsg)
			dst = res.UpdateConfig
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Wrapf(errors.ErrInvalidMsg, "%s: %s", tag, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*m = res
	return nil
}

// Validate checks the set variant for well formed content.
func (m Message) Validate() error {
	v, err := activeVariant(errors.ErrInvalidMsg, "message", m.variants())
	if err != nil {
		return err
	}
	switch v.tag {
	case MsgTagTransfer:
		return m.Transfer.Validate()
	case MsgTagStoreCode:
		return m.StoreCode.Validate()
	case MsgTagInstantiate:
		return m.Instantiate.Validate()
	case MsgTagExecute:
		return m.Execute.Validate()
	case MsgTagMigrate:
		return m.Migrate.Validate()
	default:
		return m.UpdateConfig.Validate()
	}
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "To", m.To.Validate())
	if len(m.Coins) == 0 {
		errs = errors.AppendField(errs, "Coins", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Coins", m.Coins.Validate())
	return errs
}

func (m *StoreCodeMsg) Validate() error {
	if len(m.WasmByteCode) == 0 {
		return errors.Field("WasmByteCode", errors.ErrEmpty, "no code")
	}
	return nil
}

func (m *InstantiateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "CodeHash", m.CodeHash.Validate())
	errs = errors.AppendField(errs, "Funds", m.Funds.Validate())
	if m.Admin != nil {
		errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	}
	return errs
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Contract", m.Contract.Validate())
	errs = errors.AppendField(errs, "Funds", m.Funds.Validate())
	return errs
}

func (m *MigrateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Contract", m.Contract.Validate())
	errs = errors.AppendField(errs, "NewCodeHash", m.NewCodeHash.Validate())
	return errs
}

func (m *UpdateConfigMsg) Validate() error {
	var errs error
	if m.NewCfg.Owner != nil {
		errs = errors.AppendField(errs, "NewCfg.Owner", m.NewCfg.Owner.Validate())
	}
	errs = errors.AppendField(errs, "NewCfg.Bank", m.NewCfg.Bank.Validate())
	return errs
}
