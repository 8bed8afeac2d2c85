package main

import (
	"github.com/spf13/cobra"

	"github.com/denseforge/denseforge/capability"
)

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the host architecture and vector-kernel support probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := capability.Probe()
			cmd.Printf("architecture:         %s\n", c.Architecture)
			cmd.Printf("vector compiled:      %t\n", c.VectorCompiled)
			cmd.Printf("vector host support:  %t\n", c.VectorSupportedHost)
			cmd.Printf("vector family name:   %s\n", c.ArchitectureName)
			return nil
		},
	}
}
