package main

import (
	"fmt"

	"github.com/spf13/cobra"

	grug "github.com/left-curve/grug-go"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.out, grug.Version())
			return err
		},
	}
}
