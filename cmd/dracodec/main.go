package main

import (
	"context"
	"flag"
	"os"

	"github.com/woxQAQ/go-draco/internal/config"
	"github.com/woxQAQ/go-draco/internal/decoder"
	"github.com/woxQAQ/go-draco/pkg/draco"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	input := flag.String("input", "", "Path to the encoded Draco blob")
	output := flag.String("output", "", "Path to write the decoded buffer (optional)")
	pointCloud := flag.Bool("pointcloud", false, "Decode as a point cloud instead of a mesh")
	offThread := flag.Bool("worker", false, "Decode through the worker instead of in-process")
	flag.Parse()

	// Initialize logger
	var logger *zap.Logger
	if *logLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}

	defer logger.Sync()

	logger.Info("Starting dracodec",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	if *input == "" {
		logger.Fatal("No input file given (use -input)")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize decoder service
	service, err := decoder.NewService(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create decoder service", zap.Error(err))
	}
	defer service.Close(ctx)

	data, err := os.ReadFile(*input)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}

	var decoded []byte
	switch {
	case *pointCloud:
		decoded, err = service.DecodePointCloud(ctx, data)
		if err != nil {
			logger.Fatal("Point cloud decode failed", zap.Error(err))
		}
		logger.Info("Point cloud decoded",
			zap.Int("points", len(decoded)/12),
			zap.Int("bytes", len(decoded)),
		)

	default:
		var res *draco.MeshDecodeResult
		if *offThread {
			res, err = service.DecodeMeshOffThread(ctx, data)
		} else {
			res, err = service.DecodeMesh(ctx, data)
		}
		if err != nil {
			logger.Fatal("Mesh decode failed", zap.Error(err))
		}
		decoded = res.Data
		logMeshLayout(logger, res.Config)
	}

	if *output != "" {
		if err := os.WriteFile(*output, decoded, 0o644); err != nil {
			logger.Fatal("Failed to write output", zap.Error(err))
		}
		logger.Info("Decoded buffer written", zap.String("path", *output))
	}
}

func logMeshLayout(logger *zap.Logger, cfg *draco.Config) {
	logger.Info("Mesh decoded",
		zap.Uint32("vertex_count", cfg.VertexCount()),
		zap.Uint32("index_count", cfg.IndexCount()),
		zap.Uint32("index_length", cfg.IndexLength()),
		zap.Int("buffer_size", cfg.BufferSize()),
	)
	for i, attr := range cfg.Attributes() {
		logger.Info("Attribute segment",
			zap.Int("index", i),
			zap.Uint32("dim", attr.Dim),
			zap.String("data_type", attr.DataType.String()),
			zap.Uint32("offset", attr.Offset),
			zap.Uint32("length", attr.Length),
		)
	}
}
