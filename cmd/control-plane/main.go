package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	grpcregistry "github.com/kennethnrk/edgernetes-kernels/internal/control-plane/api/grpc/registry"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/config"
	"github.com/kennethnrk/edgernetes-kernels/internal/control-plane/store"
	"github.com/kennethnrk/edgernetes-kernels/internal/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONTROL_PLANE_CONFIG"), "Path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("initializing data store", zap.String("data_dir", cfg.DataDir))
	s, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}
	defer s.Close()

	if cfg.CompactOnStart {
		before := s.WALRecords()
		if err := s.Compact(); err != nil {
			logger.Fatal("failed to compact store", zap.Error(err))
		}
		logger.Info("store compacted", zap.Int("records_before", before), zap.Int("records_after", s.WALRecords()))
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcregistry.LoggingInterceptor(logger)))
	grpcregistry.RegisterServices(srv, s, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		srv.GracefulStop()
	}()

	logger.Info("control-plane gRPC server listening", zap.String("addr", cfg.GRPCAddr))
	if err := srv.Serve(lis); err != nil {
		logger.Error("gRPC server stopped", zap.Error(err))
	}
}
