package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kennethnrk/edgernetes-kernels/internal/agent"
	grpcagent "github.com/kennethnrk/edgernetes-kernels/internal/agent/api/grpc"
	"github.com/kennethnrk/edgernetes-kernels/internal/agent/manifest"
	"github.com/kennethnrk/edgernetes-kernels/internal/agent/utils"
	"github.com/kennethnrk/edgernetes-kernels/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	controlPlaneAddr string
	nodeName         string
	manifestPath     string
	allDevices       bool
	logLevel         string
	logDevelopment   bool
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Publish this node's kernels to the control-plane",
	Long: `The agent detects the compute devices of the host, reads the kernel
manifest and registers every kernel whose device is present with the
control-plane registry.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&controlPlaneAddr, "addr", envOr("CONTROL_PLANE_ADDR", "localhost:50051"), "The address of the control plane")
	rootCmd.Flags().StringVarP(&nodeName, "name", "n", "", "The name of the node (defaults to hostname-random)")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", envOr("AGENT_MANIFEST", "kernels.yaml"), "Kernel manifest (YAML)")
	rootCmd.Flags().BoolVar(&allDevices, "all-devices", false, "Register kernels even for devices not detected on this host")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&logDevelopment, "log-dev", false, "Human-readable development logging")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(logLevel, logDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	defs, err := m.KernelDefs()
	if err != nil {
		return fmt.Errorf("manifest %s: %w", manifestPath, err)
	}

	devices, err := utils.NewDetector().Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect devices: %w", err)
	}
	for _, d := range devices {
		logger.Info("device detected",
			zap.String("type", string(d.Type)),
			zap.String("vendor", d.Vendor),
			zap.String("model", d.Model),
			zap.Int("cores", d.Cores),
		)
	}

	a := agent.New(nodeName, devices, defs, allDevices)
	logger.Info("agent started",
		zap.String("node", a.Name),
		zap.Int("manifest_kernels", len(defs)),
		zap.Int("publishable_kernels", len(a.Kernels)),
	)
	if len(a.Kernels) == 0 {
		logger.Warn("no kernels to register for the detected devices")
		return nil
	}

	return grpcagent.RegisterKernelsWithControlPlane(ctx, controlPlaneAddr, a, logger)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
