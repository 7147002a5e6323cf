package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/errors"
	"github.com/left-curve/grug-go/grugtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForHeight(t *testing.T) {
	defer leaktest.Check(t)()

	chain := grugtest.NewChain("local-1")
	alice := newAccount(t, chain, grug.NewCoin("uatom", 10))
	c := chain.Client(client.WithPollInterval(5 * time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A past height returns immediately.
	block, err := c.WaitForHeight(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block.Height)

	done := make(chan *grug.BlockInfo, 1)
	go func() {
		b, err := c.WaitForHeight(ctx, 1)
		if err != nil {
			done <- nil
			return
		}
		done <- b
	}()

	coins, _ := grug.NewCoins(grug.NewCoin("uatom", 1))
	_, err = c.Transfer(ctx, alice.addr, coins, alice.opts())
	require.NoError(t, err)

	select {
	case b := <-done:
		require.NotNil(t, b)
		assert.Equal(t, uint64(1), b.Height)
	case <-ctx.Done():
		t.Fatal("block never seen")
	}

	sent := make(chan error, 1)
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, err := c.Transfer(ctx, alice.addr, coins, alice.opts())
		sent <- err
	}()
	block, err = c.WaitForNextBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), block.Height)
	require.NoError(t, <-sent)
}

func TestWaitForHeightCanceled(t *testing.T) {
	defer leaktest.Check(t)()

	chain := grugtest.NewChain("local-1")
	c := chain.Client(client.WithPollInterval(5 * time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.WaitForHeight(ctx, 100)
	assert.True(t, errors.ErrNetwork.Is(err))
}
