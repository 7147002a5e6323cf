package client

import (
	"context"
	"time"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/errors"
)

// DefaultPollInterval is the default delay between two block queries of
// WaitForHeight.
const DefaultPollInterval = 500 * time.Millisecond

// WaitForNextBlock returns the first block finalized after the call.
func (c *Client) WaitForNextBlock(ctx context.Context) (*grug.BlockInfo, error) {
	info, err := c.QueryInfo(ctx, 0)
	if err != nil {
		return nil, err
	}
	return c.WaitForHeight(ctx, info.LastFinalizedBlock.Height+1)
}

// WaitForHeight polls the node until a block equal to or greater than the
// given height is finalized and returns it. A height in the past returns
// the latest block right away.
//
// The node is asked again after the poll interval, query failures end the
// wait. Cancel the context to give up.
func (c *Client) WaitForHeight(ctx context.Context, height uint64) (*grug.BlockInfo, error) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		info, err := c.QueryInfo(ctx, 0)
		if err != nil {
			return nil, err
		}
		if block := info.LastFinalizedBlock; block.Height >= height {
			return &block, nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(errors.ErrNetwork, "waiting for height %d: %s", height, ctx.Err())
		case <-ticker.C:
		}
	}
}
