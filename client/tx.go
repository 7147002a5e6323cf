package client

import (
	"context"
	"time"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
)

// SigningOptions describes who signs a transaction.
//
// ChainID and Sequence are resolved from the chain when nil. A pointer to
// zero is an explicit value and is used as is.
type SigningOptions struct {
	Sender   grug.Address
	Signer   crypto.Signer
	ChainID  *string
	Sequence *uint32
}

// SendTx signs the messages and broadcasts them in a single transaction.
// It returns once the transaction was admitted to the mempool of the node.
//
// The chain id is resolved before the sequence, both before signing. A
// transaction rejected by the node is returned as an
// errors.ErrBroadcastFailed error carrying codespace, code and log of the
// node.
func (c *Client) SendTx(ctx context.Context, msgs []grug.Message, opts SigningOptions) (TxHash, error) {
	if opts.Signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	if err := opts.Sender.Validate(); err != nil {
		return nil, errors.Wrap(err, "sender")
	}
	if len(msgs) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "no messages")
	}
	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
	}

	var chainID string
	if opts.ChainID != nil {
		chainID = *opts.ChainID
	} else {
		info, err := c.QueryInfo(ctx, 0)
		if err != nil {
			return nil, errors.Wrap(err, "resolve chain id")
		}
		chainID = info.ChainID
	}

	var sequence uint32
	if opts.Sequence != nil {
		sequence = *opts.Sequence
	} else {
		state, err := c.QueryAccountState(ctx, opts.Sender)
		if err != nil {
			return nil, errors.Wrap(err, "resolve sequence")
		}
		sequence = state.Sequence
	}

	signBytes, err := grug.SignBytes(msgs, opts.Sender, chainID, sequence)
	if err != nil {
		return nil, err
	}
	credential, err := opts.Signer.Sign(signBytes)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	tx, err := grug.Serialize(grug.Tx{
		Sender:     opts.Sender,
		Msgs:       msgs,
		Credential: credential,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.conn.BroadcastTxSync(ctx, tx)
	if err != nil {
		c.metrics.observeBroadcast(resultNetwork, start)
		if !errors.ErrNetwork.Is(err) {
			err = errors.Wrap(errors.ErrNetwork, err.Error())
		}
		return nil, err
	}
	// A check tx failure means the transaction never made it into the
	// mempool and will not be included in a block.
	if res.Code != 0 {
		c.metrics.observeBroadcast(resultFailed, start)
		c.logger.Info("broadcast rejected", "sender", opts.Sender, "codespace", res.Codespace, "code", res.Code, "log", res.Log)
		return nil, errors.BroadcastFailed(res.Codespace, res.Code, res.Log)
	}
	c.metrics.observeBroadcast(resultOK, start)
	c.logger.Debug("broadcast", "hash", res.Hash, "sender", opts.Sender, "chain", chainID, "sequence", sequence, "msgs", len(msgs))
	return res.Hash, nil
}

// Transfer sends coins to the recipient.
func (c *Client) Transfer(ctx context.Context, to grug.Address, coins grug.Coins, opts SigningOptions) (TxHash, error) {
	return c.SendTx(ctx, []grug.Message{grug.NewTransferMsg(to, coins)}, opts)
}

// StoreCode uploads wasm byte code. The code is identified by
// grug.CodeHashOf(code) once stored.
func (c *Client) StoreCode(ctx context.Context, code []byte, opts SigningOptions) (TxHash, error) {
	return c.SendTx(ctx, []grug.Message{grug.NewStoreCodeMsg(code)}, opts)
}

// Instantiate creates a contract and returns the address it is created at.
// The address is computed locally and equals the address assigned by the
// chain.
func (c *Client) Instantiate(ctx context.Context, codeHash grug.Hash, payload interface{}, salt []byte, funds grug.Coins, admin AdminOption, opts SigningOptions) (grug.Address, TxHash, error) {
	addr := grug.DeriveAddress(opts.Sender, codeHash, salt)
	msg, err := grug.NewInstantiateMsg(codeHash, payload, salt, funds, ResolveAdmin(admin, addr))
	if err != nil {
		return nil, nil, err
	}
	hash, err := c.SendTx(ctx, []grug.Message{msg}, opts)
	if err != nil {
		return nil, nil, err
	}
	return addr, hash, nil
}

// StoreCodeAndInstantiate uploads code and instantiates it within the same
// transaction. It returns the code hash and the contract address.
func (c *Client) StoreCodeAndInstantiate(ctx context.Context, code []byte, payload interface{}, salt []byte, funds grug.Coins, admin AdminOption, opts SigningOptions) (grug.Hash, grug.Address, TxHash, error) {
	codeHash := grug.CodeHashOf(code)
	addr := grug.DeriveAddress(opts.Sender, codeHash, salt)
	instantiate, err := grug.NewInstantiateMsg(codeHash, payload, salt, funds, ResolveAdmin(admin, addr))
	if err != nil {
		return nil, nil, nil, err
	}
	msgs := []grug.Message{
		grug.NewStoreCodeMsg(code),
		instantiate,
	}
	hash, err := c.SendTx(ctx, msgs, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return codeHash, addr, hash, nil
}

// Execute calls a contract.
func (c *Client) Execute(ctx context.Context, contract grug.Address, payload interface{}, funds grug.Coins, opts SigningOptions) (TxHash, error) {
	msg, err := grug.NewExecuteMsg(contract, payload, funds)
	if err != nil {
		return nil, err
	}
	return c.SendTx(ctx, []grug.Message{msg}, opts)
}

// Migrate moves a contract to new code. Only the admin of the contract may
// do this.
func (c *Client) Migrate(ctx context.Context, contract grug.Address, newCodeHash grug.Hash, payload interface{}, opts SigningOptions) (TxHash, error) {
	msg, err := grug.NewMigrateMsg(contract, newCodeHash, payload)
	if err != nil {
		return nil, err
	}
	return c.SendTx(ctx, []grug.Message{msg}, opts)
}

// UpdateConfig replaces the chain configuration. Only the chain owner may
// do this.
func (c *Client) UpdateConfig(ctx context.Context, cfg grug.Config, opts SigningOptions) (TxHash, error) {
	return c.SendTx(ctx, []grug.Message{grug.NewUpdateConfigMsg(cfg)}, opts)
}
