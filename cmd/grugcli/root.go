package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/left-curve/grug-go/client"
	"github.com/left-curve/grug-go/config"
)

// app holds what the commands share. It is filled in before any command
// runs.
type app struct {
	out    io.Writer
	stderr io.Writer
	dial   func(node string) client.Transport

	configPath string
	node       string
	chainID    string

	conf   *config.Config
	logger log.Logger
}

func newApp(out, stderr io.Writer) *app {
	return &app{
		out:    out,
		stderr: stderr,
		dial:   client.NewHTTPConnection,
		logger: log.NewNopLogger(),
	}
}

// env returns the value of an environment variable if provided (even if
// empty) or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "grugcli",
		Short:         "Command line client for grug chains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", env("GRUG_CONFIG", ""), "Path to a YAML configuration file. You can use GRUG_CONFIG environment variable to set it.")
	flags.StringVar(&a.node, "node", "", "Tendermint RPC address, overrides the configuration.")
	flags.StringVar(&a.chainID, "chain-id", "", "Chain id, resolved from the node when empty.")

	root.SetOut(a.out)
	root.SetErr(a.stderr)
	root.AddCommand(
		newQueryCmd(a),
		newDeriveAddressCmd(a),
		newDeriveSaltCmd(a),
		newKeyaddrCmd(a),
		newTransferCmd(a),
		newStoreCodeCmd(a),
		newInstantiateCmd(a),
		newExecuteCmd(a),
		newSessionCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	conf, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("node") {
		conf.Node = a.node
	}
	if cmd.Flags().Changed("chain-id") {
		conf.ChainID = a.chainID
	}
	a.conf = conf
	a.logger = conf.Logger(a.stderr).With("module", "grugcli")
	return nil
}

func (a *app) client() *client.Client {
	return client.NewClient(a.dial(a.conf.Node), a.conf.ClientOptions(a.logger)...)
}

// printJSON writes v as indented JSON followed by a new line.
func (a *app) printJSON(v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize output: %s", err)
	}
	_, err = fmt.Fprintln(a.out, string(raw))
	return err
}
