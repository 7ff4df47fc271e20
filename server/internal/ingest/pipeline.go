package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitaltrace/vitaltrace/pkg/types"
	"github.com/vitaltrace/vitaltrace/server/internal/alerts"
	"github.com/vitaltrace/vitaltrace/server/internal/classify"
	"github.com/vitaltrace/vitaltrace/server/internal/fingerprint"
	"github.com/vitaltrace/vitaltrace/server/internal/ledger"
	"github.com/vitaltrace/vitaltrace/server/internal/metrics"
	"github.com/vitaltrace/vitaltrace/server/internal/store"
)

const (
	// taskBufSize is the background task queue depth. When full, the
	// oldest pending task is evicted to keep the response path non-blocking.
	taskBufSize = 256

	// workerCount is how many goroutines drain the task queue.
	workerCount = 4
)

// ErrInvalidReading marks readings rejected before fingerprinting.
var ErrInvalidReading = errors.New("invalid reading")

// Publisher delivers one event to all live observers.
type Publisher interface {
	Publish(types.Event)
}

// Notifier delivers an alert text to the external messaging targets.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Result is the submitter-facing outcome of an ingestion.
type Result struct {
	Status      types.Status
	Fingerprint string
	// Cause is empty when Status is normal.
	Cause string
}

// task is one fire-and-forget background operation.
type task struct {
	sink string
	run  func(ctx context.Context) error
}

// Pipeline orchestrates reading ingestion and fan-out.
type Pipeline struct {
	store    store.Store
	hub      Publisher
	notifier Notifier
	anchorer ledger.Anchorer
	metrics  *metrics.Metrics

	// classifier is swapped atomically on config hot-reload.
	classifier atomic.Pointer[classify.Classifier]

	tasks chan task
	now   func() time.Time // injectable for deterministic tests
}

// NewPipeline wires the pipeline. Run must be started for background sink
// tasks to execute.
func NewPipeline(st store.Store, hub Publisher, notifier Notifier, anchorer ledger.Anchorer,
	m *metrics.Metrics, thresholds classify.Thresholds) *Pipeline {

	p := &Pipeline{
		store:    st,
		hub:      hub,
		notifier: notifier,
		anchorer: anchorer,
		metrics:  m,
		tasks:    make(chan task, taskBufSize),
		now:      time.Now,
	}
	p.classifier.Store(classify.New(thresholds))
	return p
}

// SetThresholds swaps the classification thresholds. In-flight ingestions
// finish with the classifier they loaded.
func (p *Pipeline) SetThresholds(t classify.Thresholds) {
	p.classifier.Store(classify.New(t))
	slog.Info("pipeline: thresholds updated",
		"max_heart_rate", t.MaxHeartRate,
		"min_spo2", t.MinSpO2,
		"max_temp", t.MaxTemp,
	)
}

// Ingest processes one reading: fingerprint, classify, persist, broadcast,
// and, for fatal readings, schedule the alert and ledger tasks. It blocks
// only until the record is durably committed and the broadcast has been
// handed off; background sink outcomes are not part of the result.
func (p *Pipeline) Ingest(ctx context.Context, r types.Reading) (Result, error) {
	if err := validate(r); err != nil {
		return Result{}, err
	}

	fp := fingerprint.Hash(r)
	status, cause := p.classifier.Load().Classify(r)

	rec := types.Record{
		Reading:     r,
		Status:      status,
		Cause:       cause,
		Fingerprint: fp,
	}
	id, err := p.store.Append(ctx, rec)
	if err != nil {
		// Persistence failure is fatal to the request: no broadcast, no
		// background tasks.
		p.metrics.AppendFailures.Inc()
		return Result{}, fmt.Errorf("ingest: append record: %w", err)
	}

	p.metrics.ReadingsIngested.Inc()
	slog.Debug("ingest: record committed",
		"id", id,
		"status", status,
		"fingerprint", fp,
	)

	p.hub.Publish(types.NewEvent(r, status, cause))

	if status == types.StatusFatal {
		p.metrics.FatalReadings.Inc()
		slog.Warn("ingest: fatal reading",
			"id", id,
			"hr", r.HR,
			"spo2", r.SpO2,
			"temp", r.Temp,
			"cause", cause,
		)
		p.scheduleAlert(r, cause)
		p.scheduleAnchor(fp)
	}

	return Result{Status: status, Fingerprint: fp, Cause: cause}, nil
}

// Run drains the background task queue with workerCount workers. It blocks
// until ctx is cancelled; queued tasks still pending at shutdown are
// abandoned.
func (p *Pipeline) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-p.tasks:
					if err := t.run(ctx); err != nil {
						p.metrics.SinkFailures.WithLabelValues(t.sink).Inc()
						slog.Error("ingest: background sink failed",
							"sink", t.sink, "err", err)
					}
				}
			}
		}()
	}
	wg.Wait()
}

func (p *Pipeline) scheduleAlert(r types.Reading, cause string) {
	text := alerts.FormatAlert(r, cause, p.now())
	p.enqueue(task{
		sink: "alert",
		run: func(ctx context.Context) error {
			return p.notifier.Notify(ctx, text)
		},
	})
}

func (p *Pipeline) scheduleAnchor(hexFingerprint string) {
	raw, err := fingerprint.Bytes32(hexFingerprint)
	if err != nil {
		// Cannot happen for digests we computed ourselves.
		slog.Error("ingest: malformed fingerprint", "err", err)
		return
	}
	p.enqueue(task{
		sink: "ledger",
		run: func(ctx context.Context) error {
			receipt, err := p.anchorer.Anchor(ctx, raw)
			if err != nil {
				return err
			}
			if p.anchorer.Enabled() && !receipt.Committed {
				return errors.New("anchor not committed")
			}
			slog.Debug("ingest: fingerprint anchored", "fingerprint", hexFingerprint)
			return nil
		},
	})
}

// enqueue adds t to the task queue without blocking. When the queue is full
// the oldest pending task is evicted to make room.
func (p *Pipeline) enqueue(t task) {
	select {
	case p.tasks <- t:
	default:
		select {
		case dropped := <-p.tasks:
			p.metrics.SinkFailures.WithLabelValues(dropped.sink).Inc()
			slog.Warn("ingest: task queue full, evicted oldest",
				"evicted_sink", dropped.sink, "queue_cap", cap(p.tasks))
		default:
		}
		p.tasks <- t
	}
}

// validate rejects malformed readings before any side effect.
func validate(r types.Reading) error {
	switch {
	case r.Timestamp <= 0:
		return fmt.Errorf("%w: timestamp %v must be positive", ErrInvalidReading, r.Timestamp)
	case r.HR <= 0:
		return fmt.Errorf("%w: hr %d must be positive", ErrInvalidReading, r.HR)
	case r.SpO2 < 0 || r.SpO2 > 100:
		return fmt.Errorf("%w: spo2 %v is out of range [0, 100]", ErrInvalidReading, r.SpO2)
	case r.Temp <= 0:
		return fmt.Errorf("%w: temp %v must be positive", ErrInvalidReading, r.Temp)
	}
	return nil
}
