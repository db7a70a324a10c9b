package main

import (
	"fmt"

	"github.com/kennethnrk/edgernetes-kernels/internal/agent/manifest"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <manifest.yaml>",
		Short: "Render the kernel definitions of a manifest without contacting the control plane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			defs, err := m.KernelDefs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, def := range defs {
				if i > 0 && format == "text" {
					fmt.Fprintln(out, "---")
				}
				if err := writeDef(out, def); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
