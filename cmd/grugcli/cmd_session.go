package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/left-curve/grug-go/connect"
)

func newSessionCmd(a *app) *cobra.Command {
	var path string
	s := &cobra.Command{
		Use:   "session",
		Short: "Inspect the wallet connections persisted by applications",
	}
	s.PersistentFlags().StringVar(&path, "session", "", "Session database directory, overrides the configuration.")

	open := func(cmd *cobra.Command) (*connect.DBStorage, error) {
		if !cmd.Flags().Changed("session") {
			path = a.conf.Session
		}
		if path == "" {
			return nil, fmt.Errorf("no session database configured")
		}
		return connect.OpenDBStorage(path)
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := open(cmd)
			if err != nil {
				return err
			}
			defer storage.Close()
			sess, err := storage.Load()
			if err != nil {
				return err
			}
			if sess == nil {
				sess = &connect.Session{}
			}
			raw, err := connect.MarshalSessionJSON(sess)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(raw))
			return err
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all persisted connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := open(cmd)
			if err != nil {
				return err
			}
			defer storage.Close()
			return storage.Save(nil)
		},
	}

	s.AddCommand(show, clearCmd)
	return s
}
