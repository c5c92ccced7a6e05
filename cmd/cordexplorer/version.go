package main

import (
	"github.com/spf13/cobra"

	"cordexplorer/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the cordexplorer CLI",
		Args:  cobra.NoArgs,
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(contracts.GetFullVersionString())
		},
	}
}
