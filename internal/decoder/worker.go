package decoder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/woxQAQ/go-draco/internal/engine"
	"github.com/woxQAQ/go-draco/pkg/draco"
	"go.uber.org/zap"
)

// EngineLoader produces the decode engine a worker runs on. It is an
// injectable capability so tests can substitute a fake engine without any
// global state. A worker calls it exactly once, on the first decode.
type EngineLoader interface {
	Load(ctx context.Context) (engine.Engine, error)
}

// EngineLoaderFunc adapts a function to the EngineLoader interface.
type EngineLoaderFunc func(ctx context.Context) (engine.Engine, error)

// Load calls f.
func (f EngineLoaderFunc) Load(ctx context.Context) (engine.Engine, error) {
	return f(ctx)
}

// workerRequest carries one encoded blob into the worker.
type workerRequest struct {
	data  []byte
	reply chan workerResponse
}

// attributeShape is what crosses the worker boundary per attribute: dim
// and wire-code only. Offsets never cross; the caller re-derives them.
type attributeShape struct {
	dim      uint32
	dataType uint32
}

type workerResponse struct {
	decoded     []byte
	vertexCount uint32
	indexCount  uint32
	attributes  []attributeShape
	err         error
}

// Worker decodes meshes on a dedicated goroutine, mirroring the native
// path's semantics through a message-passing round trip. Callers block
// while the round trip is outstanding; once a decode is issued it runs to
// completion or failure, with no cancellation and no timeout.
type Worker struct {
	loader EngineLoader
	logger *zap.Logger

	requests chan *workerRequest
	quit     chan struct{}
	done     chan struct{}

	closeOnce sync.Once

	// Engine state, touched only by the worker goroutine. The loader runs
	// at most once; every later request observes the same cached engine.
	loadOnce sync.Once
	eng      engine.Engine
	dec      *Decoder
	loadErr  error
}

// NewWorker creates and starts a decode worker.
func NewWorker(loader EngineLoader, queueSize int, logger *zap.Logger) *Worker {
	if queueSize < 0 {
		queueSize = 0
	}
	w := &Worker{
		loader:   loader,
		logger:   logger.With(zap.String("component", "decode-worker")),
		requests: make(chan *workerRequest, queueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case req := <-w.requests:
			req.reply <- w.handle(req.data)
		case <-w.quit:
			// Fail any requests that were queued but never picked up.
			for {
				select {
				case req := <-w.requests:
					req.reply <- workerResponse{err: errors.New("worker shut down")}
				default:
					return
				}
			}
		}
	}
}

// handle performs one decode on the worker goroutine. A panic anywhere in
// the engine or orchestration collapses to a failed response; it must not
// take the process down.
func (w *Worker) handle(data []byte) (resp workerResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = workerResponse{err: fmt.Errorf("decode panic: %v", r)}
		}
	}()

	w.loadOnce.Do(func() {
		w.eng, w.loadErr = w.loader.Load(context.Background())
		if w.loadErr == nil {
			w.dec = New(w.eng, w.logger)
			w.logger.Info("Decode engine loaded")
		}
	})
	if w.loadErr != nil {
		return workerResponse{err: w.loadErr}
	}
	if w.dec == nil {
		// Loader panicked on a previous request; the once already fired.
		return workerResponse{err: errors.New("engine loader did not produce an engine")}
	}

	res, err := w.dec.DecodeMesh(context.Background(), data)
	if err != nil {
		return workerResponse{err: err}
	}

	// Strip the layout down to shape. Offsets are re-derived on the other
	// side of the boundary.
	attrs := res.Config.Attributes()
	shapes := make([]attributeShape, 0, len(attrs))
	for _, attr := range attrs {
		shapes = append(shapes, attributeShape{dim: attr.Dim, dataType: attr.DataType.Code()})
	}

	return workerResponse{
		decoded:     res.Data,
		vertexCount: res.Config.VertexCount(),
		indexCount:  res.Config.IndexCount(),
		attributes:  shapes,
	}
}

// Decode submits an encoded mesh blob and blocks until the worker replies.
//
// The response carries counts and attribute shapes but no offsets, so the
// config is reconstructed in auto-offset mode, inserting attributes in the
// order received. For the same mesh the result is structurally identical
// to the native path's config.
func (w *Worker) Decode(ctx context.Context, data []byte) (*draco.MeshDecodeResult, error) {
	req := &workerRequest{data: data, reply: make(chan workerResponse, 1)}

	// Context is honored only up to submission; an issued decode always
	// runs to completion or failure.
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, &TransportError{Err: errors.New("worker shut down")}
	case <-ctx.Done():
		return nil, &TransportError{Err: ctx.Err()}
	}

	var resp workerResponse
	select {
	case resp = <-req.reply:
	case <-w.done:
		return nil, &TransportError{Err: errors.New("worker shut down")}
	}

	if resp.err != nil {
		// Non-fatal by contract: log the diagnostic and hand back a typed
		// failure the caller can retry on.
		w.logger.Error("Worker decode failed", zap.Error(resp.err))
		return nil, &TransportError{Err: resp.err}
	}

	config := draco.NewConfig(resp.vertexCount, resp.indexCount)
	for _, shape := range resp.attributes {
		dataType, err := draco.ParseDataType(shape.dataType)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if err := config.AddAttribute(shape.dim, dataType); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	return &draco.MeshDecodeResult{Data: resp.decoded, Config: config}, nil
}

// Close stops the worker and releases its engine. Idempotent.
func (w *Worker) Close(ctx context.Context) error {
	var err error
	w.closeOnce.Do(func() {
		close(w.quit)
		<-w.done
		if w.eng != nil {
			err = w.eng.Close(ctx)
		}
	})
	return err
}
