package main

import (
	"context"
	"fmt"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"github.com/kennethnrk/edgernetes-kernels/internal/registryclient"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var op, device, node string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered kernels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *registryclient.Client) error {
				records, err := c.ListKernels(ctx, op, constants.DeviceType(device), node)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No kernels found")
					return nil
				}
				for _, r := range records {
					fmt.Fprintf(out, "%s\t%s\t%s\tlabel=%q\tpriority=%d\tnode=%s\n",
						r.ID, r.Def.Op, r.Def.DeviceType, r.Def.Label, r.Def.Priority, r.NodeName)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&op, "op", "", "Only kernels for this op")
	cmd.Flags().StringVar(&device, "device", "", "Only kernels for this device type")
	cmd.Flags().StringVar(&node, "node", "", "Only kernels published by this node")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <kernel-id>",
		Short: "Show one kernel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *registryclient.Client) error {
				r, err := c.GetKernel(ctx, args[0])
				if err != nil {
					return err
				}
				return writeRecord(cmd.OutOrStdout(), r)
			})
		},
	}
}

func newFindCmd() *cobra.Command {
	var (
		q     kernel.Query
		dev   string
		attrs []string
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Resolve the kernel that would run an op on a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bound, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			q.DeviceType = constants.DeviceType(dev)
			q.Attrs = bound
			return withClient(cmd, func(ctx context.Context, c *registryclient.Client) error {
				r, err := c.FindKernel(ctx, q)
				if err != nil {
					return err
				}
				return writeRecord(cmd.OutOrStdout(), r)
			})
		},
	}
	cmd.Flags().StringVar(&q.Op, "op", "", "Op name")
	cmd.Flags().StringVar(&dev, "device", "", "Device type")
	cmd.Flags().StringVar(&q.Label, "label", "", "Kernel label")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "Attr binding NAME=TYPE, repeatable")
	_ = cmd.MarkFlagRequired("op")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}

func newDevicesCmd() *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "devices <op>",
		Short: "List the device types able to run an op",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound, err := parseAttrs(attrs)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *registryclient.Client) error {
				devices, err := c.SupportedDeviceTypes(ctx, args[0], bound)
				if err != nil {
					return err
				}
				for _, d := range devices {
					fmt.Fprintln(cmd.OutOrStdout(), d)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "Attr binding NAME=TYPE, repeatable")
	return cmd
}

func newDeregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deregister <kernel-id>...",
		Short: "Remove kernels from the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *registryclient.Client) error {
				for _, id := range args {
					if err := c.DeRegisterKernel(ctx, id); err != nil {
						return fmt.Errorf("deregister %s: %w", id, err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "deregistered", id)
				}
				return nil
			})
		},
	}
}
