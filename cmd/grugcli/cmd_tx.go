package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	grug "github.com/left-curve/grug-go"
	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/crypto"
)

// signingFlags are shared by all commands sending a transaction.
type signingFlags struct {
	keyPath  string
	sender   string
	sequence int64
	wait     bool
}

func (f *signingFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.keyPath, "key", env("GRUG_KEY", os.Getenv("HOME")+"/.grug.priv.key"),
		"Path to the hex encoded secp256k1 private key the transaction is signed with. You can use GRUG_KEY environment variable to set it.")
	c.Flags().StringVar(&f.sender, "sender", env("GRUG_SENDER", ""), "Address of the sending account (required). You can use GRUG_SENDER environment variable to set it.")
	c.Flags().Int64Var(&f.sequence, "sequence", -1, "Sequence to sign with, queried from the account when negative.")
	c.Flags().BoolVar(&f.wait, "wait", false, "Wait for the next block before returning.")
}

func (f *signingFlags) options(a *app) (client.SigningOptions, error) {
	var opts client.SigningOptions
	sender, err := grug.ParseAddress(f.sender)
	if err != nil {
		return opts, fmt.Errorf("invalid sender: %s", err)
	}
	key, err := readKey(f.keyPath)
	if err != nil {
		return opts, err
	}
	opts.Sender = sender
	opts.Signer = key
	if a.conf.ChainID != "" {
		chainID := a.conf.ChainID
		opts.ChainID = &chainID
	}
	if f.sequence >= 0 {
		if f.sequence > int64(^uint32(0)) {
			return opts, fmt.Errorf("sequence %d out of range", f.sequence)
		}
		seq := uint32(f.sequence)
		opts.Sequence = &seq
	}
	return opts, nil
}

func readKey(path string) (*crypto.Secp256k1Key, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	bz, err := decodeHex("private key", string(raw))
	if err != nil {
		return nil, err
	}
	return crypto.Secp256k1FromBytes(bz)
}

type txOutput struct {
	Hash     client.TxHash `json:"hash"`
	Address  grug.Address  `json:"address,omitempty"`
	CodeHash grug.Hash     `json:"code_hash,omitempty"`
	Height   uint64        `json:"height,omitempty"`
}

// send signs and broadcasts the transaction built by fn. With --wait it
// returns once a block was produced after the broadcast.
func (a *app) send(cmd *cobra.Command, f *signingFlags, fn func(*client.Client, client.SigningOptions) (txOutput, error)) error {
	opts, err := f.options(a)
	if err != nil {
		return err
	}
	cli := a.client()
	ctx := cmd.Context()

	var from uint64
	if f.wait {
		info, err := cli.QueryInfo(ctx, 0)
		if err != nil {
			return err
		}
		from = info.LastFinalizedBlock.Height
	}
	out, err := fn(cli, opts)
	if err != nil {
		return err
	}
	if f.wait {
		block, err := cli.WaitForHeight(ctx, from+1)
		if err != nil {
			return err
		}
		out.Height = block.Height
	}
	return a.printJSON(out)
}

func parseFunds(s string) (grug.Coins, error) {
	coins, err := grug.ParseCoins(s)
	if err != nil {
		return nil, fmt.Errorf("invalid funds: %s", err)
	}
	return coins, nil
}

func parseMsg(s string) (json.RawMessage, error) {
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("message must be JSON")
	}
	return json.RawMessage(s), nil
}

func newTransferCmd(a *app) *cobra.Command {
	var f signingFlags
	c := &cobra.Command{
		Use:   "transfer RECIPIENT COINS",
		Short: "Send coins, given like 10uatom,5uosmo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			coins, err := parseFunds(args[1])
			if err != nil {
				return err
			}
			return a.send(cmd, &f, func(cli *client.Client, opts client.SigningOptions) (txOutput, error) {
				hash, err := cli.Transfer(cmd.Context(), to, coins, opts)
				return txOutput{Hash: hash}, err
			})
		},
	}
	f.register(c)
	return c
}

func newStoreCodeCmd(a *app) *cobra.Command {
	var f signingFlags
	c := &cobra.Command{
		Use:   "store-code FILE",
		Short: "Upload contract code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := ioutil.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read code: %s", err)
			}
			return a.send(cmd, &f, func(cli *client.Client, opts client.SigningOptions) (txOutput, error) {
				hash, err := cli.StoreCode(cmd.Context(), code, opts)
				return txOutput{Hash: hash, CodeHash: grug.CodeHashOf(code)}, err
			})
		},
	}
	f.register(c)
	return c
}

func newInstantiateCmd(a *app) *cobra.Command {
	var (
		f     signingFlags
		funds string
		admin string
	)
	c := &cobra.Command{
		Use:   "instantiate CODE_HASH MSG",
		Short: "Instantiate a contract from uploaded code",
		Args:  cobra.ExactArgs(2),
	}
	salt := saltFlags(c)
	c.RunE = func(cmd *cobra.Command, args []string) error {
		hash, err := grug.ParseHash(args[0])
		if err != nil {
			return err
		}
		msg, err := parseMsg(args[1])
		if err != nil {
			return err
		}
		s, err := salt()
		if err != nil {
			return err
		}
		coins, err := parseFunds(funds)
		if err != nil {
			return err
		}
		adminOpt, err := client.ParseAdminOption(admin)
		if err != nil {
			return err
		}
		return a.send(cmd, &f, func(cli *client.Client, opts client.SigningOptions) (txOutput, error) {
			addr, txHash, err := cli.Instantiate(cmd.Context(), hash, msg, s, coins, adminOpt, opts)
			return txOutput{Hash: txHash, Address: addr}, err
		})
	}
	c.Flags().StringVar(&funds, "funds", "", "Coins sent along, like 10uatom.")
	c.Flags().StringVar(&admin, "admin", "", `Admin of the contract: an address, "self" or empty for none.`)
	f.register(c)
	return c
}

func newExecuteCmd(a *app) *cobra.Command {
	var (
		f     signingFlags
		funds string
	)
	c := &cobra.Command{
		Use:   "execute CONTRACT MSG",
		Short: "Send an execute message to a contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contract, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			msg, err := parseMsg(args[1])
			if err != nil {
				return err
			}
			coins, err := parseFunds(funds)
			if err != nil {
				return err
			}
			return a.send(cmd, &f, func(cli *client.Client, opts client.SigningOptions) (txOutput, error) {
				hash, err := cli.Execute(cmd.Context(), contract, msg, coins, opts)
				return txOutput{Hash: hash}, err
			})
		},
	}
	c.Flags().StringVar(&funds, "funds", "", "Coins sent along, like 10uatom.")
	f.register(c)
	return c
}
