package grugtest

import (
	"context"
	"testing"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/crypto"
	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest/assert"
)

func TestRegisterAccountFollowsFactory(t *testing.T) {
	chain := NewChain("test-1")
	key, err := crypto.GenSecp256k1()
	assert.Nil(t, err)

	for serial := uint32(0); serial < 3; serial++ {
		addr, err := chain.RegisterSigner(key)
		assert.Nil(t, err)
		salt, err := crypto.AccountSalt(key, serial)
		assert.Nil(t, err)
		assert.Equal(t, grug.DeriveAddress(chain.Factory(), chain.AccountCodeHash(), salt), addr)
	}

	_, err = chain.RegisterAccount(grug.KeyType("ed25519"), key.PublicKey())
	assert.IsErr(t, errors.ErrInvalidKeyType, err)
}

func TestRejectedTxLeavesNoTrace(t *testing.T) {
	chain := NewChain("test-1")
	key, err := crypto.GenSecp256k1()
	assert.Nil(t, err)
	alice, err := chain.RegisterSigner(key)
	assert.Nil(t, err)
	coins, err := grug.NewCoins(grug.NewCoin("uatom", 5))
	assert.Nil(t, err)
	assert.Nil(t, chain.Mint(alice, coins))
	root := chain.AppHash()

	// The second message overdraws, the first one must be rolled back too.
	bob := grug.DeriveAddress(alice, chain.AccountCodeHash(), []byte("bob"))
	four, _ := grug.NewCoins(grug.NewCoin("uatom", 4))
	msgs := []grug.Message{grug.NewTransferMsg(bob, four), grug.NewTransferMsg(bob, four)}
	zero := uint32(0)
	chainID := "test-1"
	_, err = chain.Client().SendTx(context.Background(), msgs, client.SigningOptions{
		Sender:   alice,
		Signer:   key,
		ChainID:  &chainID,
		Sequence: &zero,
	})
	assert.IsErr(t, errors.ErrBroadcastFailed, err)
	rpcErr, ok := errors.AsRPCError(err)
	assert.Equal(t, true, ok)
	assert.Equal(t, errors.ErrInvalidAmount.Code(), rpcErr.Code)

	assert.Equal(t, root, chain.AppHash())
	assert.Equal(t, uint64(0), chain.Height())
	assert.Equal(t, 0, len(chain.Txs()))
	assert.Equal(t, 1, len(chain.Broadcasts()))
}

func TestQueryUnknownHeightAndPath(t *testing.T) {
	chain := NewChain("test-1")
	ctx := context.Background()

	res, err := chain.ABCIQuery(ctx, client.RequestQuery{Path: client.PathApp, Height: 10})
	assert.Nil(t, err)
	assert.Equal(t, errors.ErrInvalidInput.Code(), res.Code)

	res, err = chain.ABCIQuery(ctx, client.RequestQuery{Path: "/p2p/filter"})
	assert.Nil(t, err)
	assert.Equal(t, errors.ErrNotFound.Code(), res.Code)
	assert.Equal(t, errors.Codespace, res.Codespace)
}

func TestHooksMayPassThrough(t *testing.T) {
	chain := NewChain("test-1")
	var seen int
	chain.OnQuery(func(req client.RequestQuery) (*client.ResponseQuery, error) {
		seen++
		return nil, nil
	})
	info, err := chain.Client().QueryInfo(context.Background(), 0)
	assert.Nil(t, err)
	assert.Equal(t, "test-1", info.ChainID)
	assert.Equal(t, 1, seen)

	chain.OnQuery(nil)
	_, err = chain.Client().QueryInfo(context.Background(), 0)
	assert.Nil(t, err)
	assert.Equal(t, 1, seen)
}
