package main

import (
	"github.com/spf13/cobra"
)

func NewMDSCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mds-cli",
		Short: "mds-cli calls MDS resource actions and converts form dates.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(NewCmdInvoke())
	cmd.AddCommand(NewCmdCatalog())
	cmd.AddCommand(NewCmdDate())
	return cmd
}
