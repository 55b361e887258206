package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/elite30/internal/telemetry/metrics"
	"github.com/2beens/elite30/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=cell_mocks_test.go -package=progress_test

// Cell is a single remote string slot holding the encoded document.
type Cell interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// Store loads and saves the progress document in one Cell.
// There is no locking or conflict detection: the last write wins.
type Store struct {
	cell    Cell
	metrics *metrics.Manager
}

func NewStore(cell Cell, metricsManager *metrics.Manager) *Store {
	return &Store{
		cell:    cell,
		metrics: metricsManager,
	}
}

// Load returns the stored document. Empty or malformed content yields the
// default document and no error; only an unreachable store is an error.
func (s *Store) Load(ctx context.Context) (_ *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.progress.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("load", time.Now(), &err)

	raw, err := s.cell.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrConnection, err)
	}

	if raw == "" {
		log.Tracef("progress slot empty, using default document")
		span.SetAttributes(attribute.Bool("default", true))
		return Default(), nil
	}

	doc, parseErr := Decode(raw)
	if parseErr != nil {
		log.Warnf("stored progress document discarded, falling back to default: %s", parseErr)
		span.SetAttributes(attribute.Bool("default", true))
		if s.metrics != nil {
			s.metrics.CounterParseFallbacks.Inc()
		}
		return Default(), nil
	}

	if s.metrics != nil {
		s.metrics.GaugeCurrentDay.Set(float64(doc.CurrentDay))
	}
	span.SetAttributes(attribute.Int("current_day", doc.CurrentDay))

	return doc, nil
}

// Save overwrites the stored document.
func (s *Store) Save(ctx context.Context, doc *Document) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.progress.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("save", time.Now(), &err)

	if doc == nil {
		return errors.New("save progress: nil document")
	}

	encoded, err := doc.Encode()
	if err != nil {
		return err
	}

	if err := s.cell.Write(ctx, encoded); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	if s.metrics != nil {
		s.metrics.GaugeCurrentDay.Set(float64(doc.CurrentDay))
	}
	log.Debugf("progress saved, current day %d, %d history entries", doc.CurrentDay, len(doc.History))

	return nil
}

// Reset clears the slot so the next Load returns the default document.
func (s *Store) Reset(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.progress.reset")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("reset", time.Now(), &err)

	if err := s.cell.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrStorageWrite, err)
	}

	if s.metrics != nil {
		s.metrics.CounterProgressResets.Inc()
		s.metrics.GaugeCurrentDay.Set(1)
	}
	log.Warnln("progress reset")

	return nil
}

func (s *Store) observe(op string, begin time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.HistogramStoreDuration.WithLabelValues(op).Observe(time.Since(begin).Seconds())
	if *err != nil {
		s.metrics.CounterStoreErrors.WithLabelValues(op).Inc()
	}
}
