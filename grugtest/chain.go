package grugtest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"sync"
	"time"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
	"github.com/tendermint/tendermint/crypto/merkle"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultPageLimit is used by paginated queries sent without a limit.
const DefaultPageLimit = 30

// Store key layout. Addresses and hashes are stored raw.
var (
	configKey     = []byte("config")
	balancePrefix = []byte("balance/")
	supplyPrefix  = []byte("supply/")
	codePrefix    = []byte("code/")
	accountPrefix = []byte("account/")
	wasmPrefix    = []byte("wasm/")

	// Account contracts keep their state under this contract key.
	accountStateKey = []byte("state")
)

// VerifyFunc checks the credential of a transaction against the public key
// of the sending account.
type VerifyFunc func(keyType grug.KeyType, pubKey, signBytes, credential []byte) error

// VerifySignature is the default VerifyFunc. It accepts DER encoded ECDSA
// signatures of the sign bytes.
func VerifySignature(keyType grug.KeyType, pubKey, signBytes, credential []byte) error {
	ok, err := crypto.Verify(keyType, pubKey, signBytes, credential)
	if err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	return nil
}

// SmartHandler answers wasm smart queries sent to a contract.
type SmartHandler func(msg []byte) (interface{}, error)

// ExecuteHandler is called for every execute message sent to a contract.
// Returning an error fails the transaction. Handlers run while the chain is
// locked and must not call back into it.
type ExecuteHandler func(sender grug.Address, msg []byte, funds grug.Coins) error

// QueryHook may replace the answer to a query. Returning both values nil
// lets the chain answer.
type QueryHook func(req client.RequestQuery) (*client.ResponseQuery, error)

// BroadcastHook may replace the answer to a broadcast. Returning both
// values nil lets the chain process the transaction.
type BroadcastHook func(tx []byte) (*client.BroadcastResult, error)

// Chain is a single node chain kept in memory. It implements
// client.Transport so that a client can be tested without a network.
//
// Every accepted transaction is executed immediately and finalizes its own
// block. Contracts are not executed, their behaviour can be provided with
// HandleSmart and HandleExecute.
type Chain struct {
	mu sync.Mutex

	chainID     string
	store       *Store
	height      uint64
	blockHash   grug.Hash
	timestamp   uint64
	factory     grug.Address
	accountCode grug.Hash
	serial      uint32

	verify  VerifyFunc
	logger  log.Logger
	smart   map[string]SmartHandler
	execute map[string]ExecuteHandler

	queryHook     QueryHook
	broadcastHook BroadcastHook

	queries    []client.RequestQuery
	broadcasts [][]byte
	txs        []grug.Tx
}

var _ client.Transport = (*Chain)(nil)

// Option configures a Chain.
type Option func(*Chain)

// WithOwner sets the chain owner, the only sender allowed to update the
// configuration.
func WithOwner(owner grug.Address) Option {
	return func(c *Chain) {
		cfg := c.config()
		cfg.Owner = &owner
		c.store.Set(configKey, grug.MustSerialize(cfg))
	}
}

// WithPermissions replaces the upload and instantiate permissions.
func WithPermissions(p grug.Permissions) Option {
	return func(c *Chain) {
		cfg := c.config()
		cfg.Permissions = p
		c.store.Set(configKey, grug.MustSerialize(cfg))
	}
}

// WithVerifier replaces the credential verification.
func WithVerifier(fn VerifyFunc) Option {
	return func(c *Chain) {
		c.verify = fn
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(c *Chain) {
		c.logger = logger.With("module", "grugtest")
	}
}

// NewChain returns a chain at height zero. Code for the account contract
// and the account factory are preinstalled.
func NewChain(chainID string, opts ...Option) *Chain {
	accountCode := []byte("grugtest account")
	factoryCode := []byte("grugtest account factory")
	c := &Chain{
		chainID:     chainID,
		store:       NewStore(),
		accountCode: grug.CodeHashOf(accountCode),
		verify:      VerifySignature,
		logger:      log.NewNopLogger(),
		smart:       make(map[string]SmartHandler),
		execute:     make(map[string]ExecuteHandler),
		timestamp:   uint64(time.Now().UnixNano()),
	}

	genesis := make(grug.Address, grug.AddressLength)
	factoryHash := grug.CodeHashOf(factoryCode)
	c.factory = grug.DeriveAddress(genesis, factoryHash, []byte("factory"))
	bankHash := grug.CodeHashOf([]byte("grugtest bank"))
	bank := grug.DeriveAddress(genesis, bankHash, []byte("bank"))

	c.store.Set(codeKey(c.accountCode), accountCode)
	c.store.Set(codeKey(factoryHash), factoryCode)
	c.store.Set(codeKey(bankHash), []byte("grugtest bank"))
	c.store.Set(accountKey(c.factory), grug.MustSerialize(grug.Account{CodeHash: factoryHash}))
	c.store.Set(accountKey(bank), grug.MustSerialize(grug.Account{CodeHash: bankHash}))
	c.store.Set(configKey, grug.MustSerialize(grug.Config{
		Bank:          bank,
		BeginBlockers: []grug.Address{},
		EndBlockers:   []grug.Address{},
		Permissions: grug.Permissions{
			Upload:      grug.Permission{Kind: grug.PermissionEverybody},
			Instantiate: grug.Permission{Kind: grug.PermissionEverybody},
		},
	}))

	for _, opt := range opts {
		opt(c)
	}
	c.blockHash = RootHash(c.store)
	return c
}

// Client returns a client connected to this chain.
func (c *Chain) Client(opts ...client.Option) *client.Client {
	return client.NewClient(c, opts...)
}

// ChainID returns the chain id.
func (c *Chain) ChainID() string {
	return c.chainID
}

// Height returns the height of the last finalized block.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// AppHash returns the merkle root of the current state.
func (c *Chain) AppHash() grug.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RootHash(c.store)
}

// Factory returns the address of the account factory, the deployer of all
// registered accounts.
func (c *Chain) Factory() grug.Address {
	return c.factory
}

// AccountCodeHash returns the code hash of registered accounts.
func (c *Chain) AccountCodeHash() grug.Hash {
	return c.accountCode
}

// RegisterAccount creates an account controlled by the given public key
// the way the account factory does. The n-th registration uses the serial
// n-1.
func (c *Chain) RegisterAccount(keyType grug.KeyType, pubKey []byte) (grug.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	salt, err := grug.DeriveSalt(keyType, pubKey, c.serial)
	if err != nil {
		return nil, err
	}
	addr := grug.DeriveAddress(c.factory, c.accountCode, salt)
	factory := c.factory
	c.store.Set(accountKey(addr), grug.MustSerialize(grug.Account{CodeHash: c.accountCode, Admin: &factory}))
	c.store.Set(wasmKey(addr, accountStateKey), grug.MustSerialize(accountState{
		KeyType:   keyType,
		PublicKey: pubKey,
	}))
	c.serial++
	c.logger.Debug("account registered", "address", addr, "key_type", keyType)
	return addr, nil
}

// RegisterSigner is RegisterAccount for the public key of a signer.
func (c *Chain) RegisterSigner(s crypto.Signer) (grug.Address, error) {
	return c.RegisterAccount(s.KeyType(), s.PublicKey())
}

// Mint credits coins to an address and increases the supply.
func (c *Chain) Mint(to grug.Address, coins grug.Coins) error {
	if err := coins.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := newCache(c.store)
	for _, coin := range coins {
		supply := readUint(tx, supplyKey(coin.Denom))
		tx.Set(supplyKey(coin.Denom), []byte(supply.Add(coin.Amount).String()))
		bal := readUint(tx, balanceKey(to, coin.Denom))
		tx.Set(balanceKey(to, coin.Denom), []byte(bal.Add(coin.Amount).String()))
	}
	tx.Write()
	return nil
}

// SetConfig changes the chain configuration without a transaction.
func (c *Chain) SetConfig(fn func(cfg *grug.Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := c.config()
	fn(&cfg)
	c.store.Set(configKey, grug.MustSerialize(cfg))
}

// SetContractState writes a raw key of the contract storage.
func (c *Chain) SetContractState(contract grug.Address, key, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(wasmKey(contract, key), value)
}

// HandleSmart registers the smart query handler of a contract.
func (c *Chain) HandleSmart(contract grug.Address, fn SmartHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.smart[string(contract)] = fn
}

// HandleExecute registers the execute handler of a contract.
func (c *Chain) HandleExecute(contract grug.Address, fn ExecuteHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execute[string(contract)] = fn
}

// OnQuery installs a hook that may replace query answers. Pass nil to
// remove it.
func (c *Chain) OnQuery(fn QueryHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryHook = fn
}

// OnBroadcast installs a hook that may replace broadcast answers. Pass nil
// to remove it.
func (c *Chain) OnBroadcast(fn BroadcastHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcastHook = fn
}

// Queries returns all queries received so far, in order.
func (c *Chain) Queries() []client.RequestQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.RequestQuery(nil), c.queries...)
}

// Broadcasts returns the raw bytes of all broadcast transactions, accepted
// or not, in order.
func (c *Chain) Broadcasts() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.broadcasts...)
}

// Txs returns all accepted transactions, in order.
func (c *Chain) Txs() []grug.Tx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]grug.Tx(nil), c.txs...)
}

// ABCIQuery implements client.Transport.
func (c *Chain) ABCIQuery(ctx context.Context, req client.RequestQuery) (*client.ResponseQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	c.mu.Lock()
	c.queries = append(c.queries, req)
	hook := c.queryHook
	c.mu.Unlock()

	if hook != nil {
		if res, err := hook(req); res != nil || err != nil {
			return res, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.query(req)
	if err != nil {
		codespace, code, rawLog := errors.ABCIInfo(err, false)
		c.logger.Debug("query failed", "path", req.Path, "err", err)
		return &client.ResponseQuery{
			Code:      code,
			Codespace: codespace,
			Log:       rawLog,
			Height:    int64(c.height),
		}, nil
	}
	return res, nil
}

func (c *Chain) query(req client.RequestQuery) (*client.ResponseQuery, error) {
	if req.Height != 0 && req.Height != int64(c.height) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "only the latest height %d is available", c.height)
	}
	switch req.Path {
	case client.PathStore:
		res := &client.ResponseQuery{
			Key:    req.Data,
			Value:  c.store.Get(req.Data),
			Height: int64(c.height),
		}
		if req.Prove {
			proof, err := grug.Serialize(Prove(c.store, req.Data))
			if err != nil {
				return nil, err
			}
			res.Proof = &merkle.Proof{Ops: []merkle.ProofOp{
				{Type: grug.DefaultProofType, Key: req.Data, Data: proof},
			}}
		}
		return res, nil
	case client.PathApp:
		var q grug.QueryRequest
		if err := grug.Deserialize(req.Data, &q); err != nil {
			return nil, err
		}
		answer, err := c.answer(q)
		if err != nil {
			return nil, err
		}
		bz, err := grug.Serialize(answer)
		if err != nil {
			return nil, err
		}
		return &client.ResponseQuery{Value: bz, Height: int64(c.height)}, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "path %q", req.Path)
	}
}

func (c *Chain) answer(q grug.QueryRequest) (*grug.QueryResponse, error) {
	switch q.Kind() {
	case grug.QueryTagInfo:
		return &grug.QueryResponse{Info: &grug.InfoResponse{
			ChainID: c.chainID,
			Config:  c.config(),
			LastFinalizedBlock: grug.BlockInfo{
				Height:    c.height,
				Timestamp: c.timestamp,
				Hash:      c.blockHash,
			},
		}}, nil
	case grug.QueryTagBalance:
		r := q.Balance
		coin := grug.Coin{Denom: r.Denom, Amount: readUint(c.store, balanceKey(r.Address, r.Denom))}
		return &grug.QueryResponse{Balance: &coin}, nil
	case grug.QueryTagBalances:
		r := q.Balances
		coins := c.coins(append(clone(balancePrefix), r.Address...), r.StartAfter, r.Limit)
		return &grug.QueryResponse{Balances: &coins}, nil
	case grug.QueryTagSupply:
		coin := grug.Coin{Denom: q.Supply.Denom, Amount: readUint(c.store, supplyKey(q.Supply.Denom))}
		return &grug.QueryResponse{Supply: &coin}, nil
	case grug.QueryTagSupplies:
		coins := c.coins(supplyPrefix, q.Supplies.StartAfter, q.Supplies.Limit)
		return &grug.QueryResponse{Supplies: &coins}, nil
	case grug.QueryTagCode:
		code := c.store.Get(codeKey(q.Code.Hash))
		if code == nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "code %s", q.Code.Hash)
		}
		bin := grug.Binary(code)
		return &grug.QueryResponse{Code: &bin}, nil
	case grug.QueryTagCodes:
		hashes := []grug.Hash{}
		c.store.Iterate(codePrefix, q.Codes.StartAfter, pageLimit(q.Codes.Limit), func(key, _ []byte) bool {
			hashes = append(hashes, clone(key))
			return true
		})
		return &grug.QueryResponse{Codes: &hashes}, nil
	case grug.QueryTagAccount:
		acc, err := c.account(c.store, q.Account.Address)
		if err != nil {
			return nil, err
		}
		res := grug.AccountResponse{Address: q.Account.Address, CodeHash: acc.CodeHash, Admin: acc.Admin}
		return &grug.QueryResponse{Account: &res}, nil
	case grug.QueryTagAccounts:
		accounts := []grug.AccountResponse{}
		var err error
		c.store.Iterate(accountPrefix, q.Accounts.StartAfter, pageLimit(q.Accounts.Limit), func(key, value []byte) bool {
			var acc grug.Account
			if err = grug.Deserialize(value, &acc); err != nil {
				return false
			}
			accounts = append(accounts, grug.AccountResponse{Address: clone(key), CodeHash: acc.CodeHash, Admin: acc.Admin})
			return true
		})
		if err != nil {
			return nil, err
		}
		return &grug.QueryResponse{Accounts: &accounts}, nil
	case grug.QueryTagWasmRaw:
		r := q.WasmRaw
		res := grug.WasmRawResponse{Contract: r.Contract, Key: r.Key}
		if v := c.store.Get(wasmKey(r.Contract, r.Key)); v != nil {
			bin := grug.Binary(v)
			res.Value = &bin
		}
		return &grug.QueryResponse{WasmRaw: &res}, nil
	case grug.QueryTagWasmSmart:
		data, err := c.smartQuery(q.WasmSmart.Contract, q.WasmSmart.Msg)
		if err != nil {
			return nil, err
		}
		return &grug.QueryResponse{WasmSmart: &grug.WasmSmartResponse{Contract: q.WasmSmart.Contract, Data: data}}, nil
	default:
		return nil, errors.Wrap(errors.ErrInvalidInput, "query request")
	}
}

func (c *Chain) smartQuery(contract grug.Address, msg []byte) ([]byte, error) {
	if fn, ok := c.smart[string(contract)]; ok {
		res, err := fn(msg)
		if err != nil {
			return nil, err
		}
		return grug.Serialize(res)
	}
	raw := c.store.Get(wasmKey(contract, accountStateKey))
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "contract %s does not answer queries", contract)
	}
	var payload map[string]json.RawMessage
	if err := grug.Deserialize(msg, &payload); err != nil {
		return nil, err
	}
	if _, ok := payload["state"]; !ok || len(payload) != 1 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "account contracts only answer the state query")
	}
	return raw, nil
}

func (c *Chain) coins(prefix []byte, startAfter *string, limit *uint32) grug.Coins {
	var after []byte
	if startAfter != nil {
		after = []byte(*startAfter)
	}
	var coins grug.Coins
	c.store.Iterate(prefix, after, pageLimit(limit), func(key, value []byte) bool {
		amount, err := grug.ParseUint(string(value))
		if err != nil {
			panic(err)
		}
		coins = append(coins, grug.Coin{Denom: string(key), Amount: amount})
		return true
	})
	if coins == nil {
		coins = grug.Coins{}
	}
	return coins
}

func pageLimit(limit *uint32) int {
	if limit == nil {
		return DefaultPageLimit
	}
	return int(*limit)
}

// BroadcastTxSync implements client.Transport. The transaction is executed
// right away, a rejected transaction leaves no trace in the state.
func (c *Chain) BroadcastTxSync(ctx context.Context, tx []byte) (*client.BroadcastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	c.mu.Lock()
	c.broadcasts = append(c.broadcasts, tx)
	hook := c.broadcastHook
	c.mu.Unlock()

	if hook != nil {
		if res, err := hook(tx); res != nil || err != nil {
			return res, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sum := sha256.Sum256(tx)
	hash := client.TxHash(sum[:])
	if err := c.deliver(tx); err != nil {
		codespace, code, rawLog := errors.ABCIInfo(err, false)
		c.logger.Info("tx rejected", "hash", hash, "err", err)
		return &client.BroadcastResult{
			Code:      code,
			Codespace: codespace,
			Log:       rawLog,
			Hash:      hash,
		}, nil
	}
	c.height++
	c.blockHash = grug.Hash(sum[:])
	c.timestamp = uint64(time.Now().UnixNano())
	c.logger.Debug("tx accepted", "hash", hash, "height", c.height)
	return &client.BroadcastResult{Hash: hash}, nil
}

// accountState is the storage of an account contract. It is also the
// response to the state query.
type accountState struct {
	KeyType   grug.KeyType `json:"key_type"`
	PublicKey grug.Binary  `json:"public_key"`
	Sequence  uint32       `json:"sequence"`
}

func (c *Chain) deliver(raw []byte) error {
	var tx grug.Tx
	if err := grug.Deserialize(raw, &tx); err != nil {
		return err
	}
	if err := tx.Validate(); err != nil {
		return err
	}

	stateBz := c.store.Get(wasmKey(tx.Sender, accountStateKey))
	if stateBz == nil {
		return errors.Wrapf(errors.ErrNotFound, "sender %s is not an account", tx.Sender)
	}
	var state accountState
	if err := grug.Deserialize(stateBz, &state); err != nil {
		return err
	}
	signBytes, err := grug.SignBytes(tx.Msgs, tx.Sender, c.chainID, state.Sequence)
	if err != nil {
		return err
	}
	if err := c.verify(state.KeyType, state.PublicKey, signBytes, tx.Credential); err != nil {
		return errors.Wrapf(err, "sequence %d", state.Sequence)
	}

	cache := newCache(c.store)
	for i, msg := range tx.Msgs {
		if err := c.apply(cache, tx.Sender, msg); err != nil {
			cache.Discard()
			return errors.Wrapf(err, "message %d", i)
		}
	}
	state.Sequence++
	cache.Set(wasmKey(tx.Sender, accountStateKey), grug.MustSerialize(state))
	cache.Write()
	c.txs = append(c.txs, tx)
	return nil
}

type kvStore interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)
}

func (c *Chain) apply(db kvStore, sender grug.Address, msg grug.Message) error {
	cfg := c.configFrom(db)
	switch msg.Kind() {
	case grug.MsgTagTransfer:
		return c.send(db, sender, msg.Transfer.To, msg.Transfer.Coins)
	case grug.MsgTagStoreCode:
		if !hasPermission(cfg.Permissions.Upload, cfg.Owner, sender) {
			return errors.Wrap(errors.ErrUnauthorized, "upload")
		}
		hash := grug.CodeHashOf(msg.StoreCode.WasmByteCode)
		if db.Get(codeKey(hash)) != nil {
			return errors.Wrapf(errors.ErrInvalidState, "code %s exists", hash)
		}
		db.Set(codeKey(hash), msg.StoreCode.WasmByteCode)
		return nil
	case grug.MsgTagInstantiate:
		m := msg.Instantiate
		if !hasPermission(cfg.Permissions.Instantiate, cfg.Owner, sender) {
			return errors.Wrap(errors.ErrUnauthorized, "instantiate")
		}
		if db.Get(codeKey(m.CodeHash)) == nil {
			return errors.Wrapf(errors.ErrNotFound, "code %s", m.CodeHash)
		}
		addr := grug.DeriveAddress(sender, m.CodeHash, m.Salt)
		if db.Get(accountKey(addr)) != nil {
			return errors.Wrapf(errors.ErrInvalidState, "account %s exists", addr)
		}
		db.Set(accountKey(addr), grug.MustSerialize(grug.Account{CodeHash: m.CodeHash, Admin: m.Admin}))
		return c.send(db, sender, addr, m.Funds)
	case grug.MsgTagExecute:
		m := msg.Execute
		if _, err := c.account(db, m.Contract); err != nil {
			return err
		}
		if err := c.send(db, sender, m.Contract, m.Funds); err != nil {
			return err
		}
		if fn, ok := c.execute[string(m.Contract)]; ok {
			return fn(sender, m.Msg, m.Funds)
		}
		return nil
	case grug.MsgTagMigrate:
		m := msg.Migrate
		acc, err := c.account(db, m.Contract)
		if err != nil {
			return err
		}
		if !acc.HasAdmin() || !acc.Admin.Equals(sender) {
			return errors.Wrapf(errors.ErrUnauthorized, "sender is not the admin of %s", m.Contract)
		}
		if db.Get(codeKey(m.NewCodeHash)) == nil {
			return errors.Wrapf(errors.ErrNotFound, "code %s", m.NewCodeHash)
		}
		acc.CodeHash = m.NewCodeHash
		db.Set(accountKey(m.Contract), grug.MustSerialize(acc))
		return nil
	case grug.MsgTagUpdateConfig:
		if cfg.Owner == nil || !cfg.Owner.Equals(sender) {
			return errors.Wrap(errors.ErrUnauthorized, "sender is not the owner")
		}
		db.Set(configKey, grug.MustSerialize(msg.UpdateConfig.NewCfg))
		return nil
	default:
		return errors.Wrap(errors.ErrInvalidMsg, "unknown message")
	}
}

func hasPermission(p grug.Permission, owner *grug.Address, sender grug.Address) bool {
	if owner != nil && owner.Equals(sender) {
		return true
	}
	switch p.Kind {
	case grug.PermissionEverybody:
		return true
	case grug.PermissionSomebodies:
		for _, a := range p.Somebodies {
			if a.Equals(sender) {
				return true
			}
		}
	}
	return false
}

func (c *Chain) send(db kvStore, from, to grug.Address, coins grug.Coins) error {
	for _, coin := range coins {
		bal := readUint(db, balanceKey(from, coin.Denom))
		rest, err := bal.Sub(coin.Amount)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidAmount, "insufficient %s: have %s, need %s", coin.Denom, bal, coin.Amount)
		}
		writeUint(db, balanceKey(from, coin.Denom), rest)
		writeUint(db, balanceKey(to, coin.Denom), readUint(db, balanceKey(to, coin.Denom)).Add(coin.Amount))
	}
	return nil
}

func (c *Chain) account(db kvStore, addr grug.Address) (grug.Account, error) {
	var acc grug.Account
	raw := db.Get(accountKey(addr))
	if raw == nil {
		return acc, errors.Wrapf(errors.ErrNotFound, "account %s", addr)
	}
	err := grug.Deserialize(raw, &acc)
	return acc, err
}

func (c *Chain) config() grug.Config {
	return c.configFrom(c.store)
}

func (c *Chain) configFrom(db kvStore) grug.Config {
	var cfg grug.Config
	if err := grug.Deserialize(db.Get(configKey), &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func readUint(db kvStore, key []byte) grug.Uint {
	raw := db.Get(key)
	if raw == nil {
		return grug.NewUint(0)
	}
	u, err := grug.ParseUint(string(raw))
	if err != nil {
		panic(err)
	}
	return u
}

// writeUint stores a non-zero amount and removes a zero one.
func writeUint(db kvStore, key []byte, u grug.Uint) {
	if u.IsZero() {
		db.Delete(key)
		return
	}
	db.Set(key, []byte(u.String()))
}

func balanceKey(addr grug.Address, denom string) []byte {
	return join(balancePrefix, addr, []byte(denom))
}

func supplyKey(denom string) []byte {
	return join(supplyPrefix, []byte(denom))
}

func codeKey(hash grug.Hash) []byte {
	return join(codePrefix, hash)
}

func accountKey(addr grug.Address) []byte {
	return join(accountPrefix, addr)
}

func wasmKey(contract grug.Address, key []byte) []byte {
	return join(wasmPrefix, contract, key)
}

func join(parts ...[]byte) []byte {
	var res []byte
	for _, p := range parts {
		res = append(res, p...)
	}
	return res
}
