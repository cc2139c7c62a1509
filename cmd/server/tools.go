package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/codec"
	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot>",
		Short: "Check a snapshot file and build it into a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := codec.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := diagram.Build(snap)
			if err != nil {
				return err
			}
			if err := d.Check(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, %d connections)\n",
				args[0], d.Contents().Len(), len(d.Connections()))
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <snapshot>",
		Short: "Convert a snapshot file to another format on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			snap, err := codec.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := diagram.Build(snap)
			if err != nil {
				return err
			}
			return c.Export(d.Snapshot(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (json, yaml)")
	return cmd
}
