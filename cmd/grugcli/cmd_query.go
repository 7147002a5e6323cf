package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	grug "github.com/left-curve/grug-go"
)

func newQueryCmd(a *app) *cobra.Command {
	var height int64
	q := &cobra.Command{
		Use:   "query",
		Short: "Query the state of the chain",
	}
	q.PersistentFlags().Int64Var(&height, "height", 0, "Block height to query, 0 for the latest.")

	var (
		startAfter string
		limit      uint32
	)
	pagination := func(c *cobra.Command) {
		c.Flags().StringVar(&startAfter, "start-after", "", "Exclusive lower bound of the page.")
		c.Flags().Uint32Var(&limit, "limit", 0, "Maximum number of entries, 0 for the node default.")
	}
	page := func(c *cobra.Command) (*string, *uint32) {
		var s *string
		var l *uint32
		if c.Flags().Changed("start-after") {
			s = &startAfter
		}
		if c.Flags().Changed("limit") {
			l = &limit
		}
		return s, l
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the chain id, the last block and the chain config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client().QueryInfo(cmd.Context(), height)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}

	balance := &cobra.Command{
		Use:   "balance ADDRESS DENOM",
		Short: "Print the balance of an address in a single denomination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			res, err := a.client().QueryBalance(cmd.Context(), addr, args[1], height)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}

	balances := &cobra.Command{
		Use:   "balances ADDRESS",
		Short: "Print all balances of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			s, l := page(cmd)
			res, err := a.client().QueryBalances(cmd.Context(), addr, s, l, height)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	pagination(balances)

	supply := &cobra.Command{
		Use:   "supply [DENOM]",
		Short: "Print the supply of a denomination, or all supplies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				res, err := a.client().QuerySupply(cmd.Context(), args[0], height)
				if err != nil {
					return err
				}
				return a.printJSON(res)
			}
			s, l := page(cmd)
			res, err := a.client().QuerySupplies(cmd.Context(), s, l, height)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	pagination(supply)

	account := &cobra.Command{
		Use:   "account ADDRESS",
		Short: "Print the code hash and admin of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			res, err := a.client().QueryAccount(cmd.Context(), addr, height)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}

	var prove bool
	store := &cobra.Command{
		Use:   "store KEY",
		Short: "Print the raw value stored under a hex encoded key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
			if err != nil {
				return fmt.Errorf("key must be hex encoded: %s", err)
			}
			value, proof, err := a.client().QueryStore(cmd.Context(), key, height, prove)
			if err != nil {
				return err
			}
			return a.printJSON(storeOutput{Value: value, Proof: proof})
		},
	}
	store.Flags().BoolVar(&prove, "prove", false, "Request and decode a merkle proof.")

	smart := &cobra.Command{
		Use:   "wasm-smart CONTRACT MSG",
		Short: "Send a JSON query message to a contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := grug.ParseAddress(args[0])
			if err != nil {
				return err
			}
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("query message must be JSON")
			}
			var res json.RawMessage
			if err := a.client().QueryWasmSmart(cmd.Context(), addr, json.RawMessage(args[1]), &res, height); err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}

	q.AddCommand(info, balance, balances, supply, account, store, smart)
	return q
}

type storeOutput struct {
	Value grug.Binary `json:"value"`
	Proof *grug.Proof `json:"proof,omitempty"`
}
