package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kennethnrk/edgernetes-kernels/internal/common/constants"
	"github.com/kennethnrk/edgernetes-kernels/internal/kernel"
	"github.com/kennethnrk/edgernetes-kernels/internal/registryclient"
	"github.com/spf13/cobra"
)

var (
	controlPlaneAddr string
	timeout          time.Duration
	format           string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kernelctl",
		Short:         "Inspect and query the kernel registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&controlPlaneAddr, "addr", envOr("CONTROL_PLANE_ADDR", "localhost:50051"), "The address of the control plane")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-command RPC timeout")
	root.PersistentFlags().StringVarP(&format, "output", "o", "text", "Kernel output format (text, json)")

	root.AddCommand(
		newListCmd(),
		newGetCmd(),
		newFindCmd(),
		newDevicesCmd(),
		newDeregisterCmd(),
		newBuildCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// withClient dials the control plane and runs fn under the command timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *registryclient.Client) error) error {
	c, err := registryclient.Dial(controlPlaneAddr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, c)
}

// parseAttrs turns "T=DT_FLOAT" style bindings into a map.
func parseAttrs(bindings []string) (map[string]constants.DataType, error) {
	attrs := make(map[string]constants.DataType, len(bindings))
	for _, b := range bindings {
		name, typ, ok := strings.Cut(b, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("attr %q: want NAME=TYPE", b)
		}
		if _, dup := attrs[name]; dup {
			return nil, fmt.Errorf("attr %q bound twice", name)
		}
		dt, err := constants.ParseDataType(typ)
		if err != nil {
			return nil, fmt.Errorf("attr %q: %w", name, err)
		}
		attrs[name] = dt
	}
	return attrs, nil
}

func writeDef(w io.Writer, def kernel.KernelDef) error {
	switch format {
	case "json":
		b, err := kernel.MarshalProtoJSON(def)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "text":
		s, err := kernel.MarshalText(def)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, s)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeRecord(w io.Writer, r kernel.Record) error {
	fmt.Fprintf(w, "# %s node=%s registered=%s\n", r.ID, r.NodeName, r.RegisteredAt.Format(time.RFC3339))
	return writeDef(w, r.Def)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
