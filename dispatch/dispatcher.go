// Package dispatch runs every configured classifier over a batch and
// collects one label per model per row.
package dispatch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"heartpredict/ml"
	"heartpredict/record"
)

// Dispatcher is safe for concurrent use; it holds no per-dispatch state.
type Dispatcher struct {
	models []ModelSpec
	loader Loader
	logger *zap.Logger
	now    func() time.Time
}

// New validates cfg and builds a Dispatcher. Call Close to release the
// artifact watcher when caching is enabled.
func New(cfg Config, logger *zap.Logger) (*Dispatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var loader Loader = fileLoader{}
	if cfg.CacheSize > 0 {
		cached, err := newCachedLoader(loader, cfg.CacheSize, cfg.Models, cfg.Watch, logger)
		if err != nil {
			return nil, err
		}
		loader = cached
	}
	return newDispatcher(cfg.Models, loader, logger), nil
}

func newDispatcher(models []ModelSpec, loader Loader, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		models: append([]ModelSpec(nil), models...),
		loader: loader,
		logger: logger,
		now:    time.Now,
	}
}

// Models returns the configured models in dispatch order.
func (d *Dispatcher) Models() []ModelSpec {
	return append([]ModelSpec(nil), d.models...)
}

// Dispatch loads every artifact and runs each model over the whole batch.
// It either returns all len(models) x len(batch) labels or an error and no
// labels at all.
func (d *Dispatcher) Dispatch(batch record.Batch) (*Result, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	start := d.now()

	classifiers, err := d.loadAll()
	if err != nil {
		d.logger.Warn("dispatch aborted", zap.Error(err))
		return nil, err
	}

	predictions := make([][]int, len(d.models))
	for i, model := range classifiers {
		spec := d.models[i]
		labels, err := model.Predict(batch)
		if err != nil {
			err = &InferenceError{Model: spec.Name, Err: err}
			d.logger.Warn("dispatch aborted", zap.Error(err))
			return nil, err
		}
		if err := checkLabels(labels, len(batch)); err != nil {
			err = &InferenceError{Model: spec.Name, Err: err}
			d.logger.Warn("dispatch aborted", zap.Error(err))
			return nil, err
		}
		predictions[i] = labels
	}

	result := &Result{
		ID:          uuid.NewString(),
		Models:      d.Models(),
		Predictions: predictions,
		Rows:        len(batch),
		Elapsed:     d.now().Sub(start),
	}
	d.logger.Info("dispatch complete",
		zap.String("dispatch_id", result.ID),
		zap.Int("rows", result.Rows),
		zap.Int("models", len(result.Models)),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// loadAll loads the artifacts concurrently. When several fail, the error of
// the first model in dispatch order is reported.
func (d *Dispatcher) loadAll() ([]ml.Classifier, error) {
	classifiers := make([]ml.Classifier, len(d.models))
	errs := make([]error, len(d.models))

	var g errgroup.Group
	for i, spec := range d.models {
		i, spec := i, spec
		g.Go(func() error {
			model, err := d.loader.Load(spec)
			if err != nil {
				errs[i] = &ArtifactLoadError{Model: spec.Name, Path: spec.Path, Err: err}
				return errs[i]
			}
			d.logger.Debug("artifact loaded", zap.String("model", spec.ID), zap.String("path", spec.Path))
			classifiers[i] = model
			return nil
		})
	}
	if g.Wait() == nil {
		return classifiers, nil
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return classifiers, nil
}

func checkLabels(labels []int, rows int) error {
	if len(labels) != rows {
		return fmt.Errorf("returned %d labels for %d rows", len(labels), rows)
	}
	for row, label := range labels {
		if label != ml.LabelNoDisease && label != ml.LabelDisease {
			return fmt.Errorf("row %d: label %d is not binary", row, label)
		}
	}
	return nil
}

// Close releases the loader.
func (d *Dispatcher) Close() error {
	return d.loader.Close()
}
