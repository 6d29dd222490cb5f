package decoder

import (
	"context"
	"fmt"

	"github.com/woxQAQ/go-draco/internal/bundle"
	"github.com/woxQAQ/go-draco/internal/config"
	"github.com/woxQAQ/go-draco/internal/engine"
	"github.com/woxQAQ/go-draco/internal/wasm"
	"github.com/woxQAQ/go-draco/pkg/draco"
	"go.uber.org/zap"
)

// Service wires the Wasm runtime, engine bundles, and both decode paths
// into one entry point.
type Service struct {
	cfg     *config.Config
	logger  *zap.Logger
	runtime *wasm.Runtime
	bundles *bundle.Manager
	worker  *Worker
}

// NewService initializes the runtime and discovers engine bundles.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	runtimeConfig := &wasm.RuntimeConfig{
		MemoryPages:  cfg.Wasm.MemoryPages,
		DebugEnabled: cfg.Wasm.Debug,
		CacheDir:     cfg.Wasm.CacheDir,
		MaxInstances: cfg.Wasm.MaxInstances,
	}

	runtime, err := wasm.NewRuntime(ctx, logger, runtimeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	bundles := bundle.NewManager(cfg.BundlePaths, runtime, logger)
	if err := bundles.LoadAll(ctx); err != nil {
		closeErr := runtime.Close(ctx)
		if closeErr != nil {
			logger.Error("Failed to close runtime after bundle load failure", zap.Error(closeErr))
		}
		return nil, err
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger,
		runtime: runtime,
		bundles: bundles,
	}

	// The worker's engine comes from the configured bundle, loaded lazily
	// on the first worker decode.
	s.worker = NewWorker(
		EngineLoaderFunc(func(ctx context.Context) (engine.Engine, error) {
			return bundles.NewEngine(ctx, cfg.EngineBundle)
		}),
		cfg.Worker.QueueSize,
		logger,
	)

	logger.Info("Decoder service initialized",
		zap.String("engine_bundle", cfg.EngineBundle),
		zap.Strings("bundle_paths", cfg.BundlePaths),
	)

	return s, nil
}

// DecodeMesh decodes on the native path with a fresh engine instance.
func (s *Service) DecodeMesh(ctx context.Context, data []byte) (*draco.MeshDecodeResult, error) {
	eng, err := s.bundles.NewEngine(ctx, s.cfg.EngineBundle)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := eng.Close(ctx); closeErr != nil {
			s.logger.Warn("Failed to close engine", zap.Error(closeErr))
		}
	}()

	return New(eng, s.logger).DecodeMesh(ctx, data)
}

// DecodePointCloud decodes a point cloud on the native path.
func (s *Service) DecodePointCloud(ctx context.Context, data []byte) ([]byte, error) {
	eng, err := s.bundles.NewEngine(ctx, s.cfg.EngineBundle)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := eng.Close(ctx); closeErr != nil {
			s.logger.Warn("Failed to close engine", zap.Error(closeErr))
		}
	}()

	return New(eng, s.logger).DecodePointCloud(ctx, data)
}

// DecodeMeshOffThread decodes through the shared worker.
func (s *Service) DecodeMeshOffThread(ctx context.Context, data []byte) (*draco.MeshDecodeResult, error) {
	return s.worker.Decode(ctx, data)
}

// Bundles returns the bundle manager (for inspection).
func (s *Service) Bundles() *bundle.Manager {
	return s.bundles
}

// Close shuts the service down: worker first, then the runtime.
func (s *Service) Close(ctx context.Context) error {
	s.logger.Info("Shutting down decoder service")

	if err := s.worker.Close(ctx); err != nil {
		s.logger.Warn("Failed to close decode worker", zap.Error(err))
	}

	if err := s.runtime.Close(ctx); err != nil {
		s.logger.Error("Failed to shutdown Wasm runtime", zap.Error(err))
		return err
	}

	s.logger.Info("Decoder service shutdown complete")
	return nil
}
