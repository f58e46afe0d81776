// Package trigger handles document-change events: it unwraps the new
// document, derives the record it came from and marks that record with a
// status field.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/Neumenon/firedoc/config"
	"github.com/Neumenon/firedoc/firedoc"
	"github.com/Neumenon/firedoc/internal/log"
	"github.com/Neumenon/firedoc/store"
)

// timeFormat renders UTC times with milliseconds.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Handler processes events one at a time. It is safe for concurrent use
// when its Updater is.
type Handler struct {
	cfg     *config.Config
	updater store.Updater
	clock   clock.Clock
	metrics *Metrics
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock sets the clock used for dry-run timestamps.
func WithClock(c clock.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

// WithMetrics sets the counters the handler updates.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New returns a Handler writing through updater. A nil cfg uses
// config.Default. updater may be nil when every event is a dry run.
func New(cfg *config.Config, updater store.Updater, opts ...Option) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	h := &Handler{
		cfg:     cfg,
		updater: updater,
		clock:   clock.NewClock(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = NewMetrics(nil)
	}
	return h
}

// Result reports what Handle did.
type Result struct {
	Ref      store.DocumentRef
	Document map[string]any
	// Dropped lists the paths of values dropped during decoding.
	Dropped   []string
	DryRun    bool
	UpdatedAt time.Time
}

// Handle processes one event payload. The record is written at most once
// and only after the document has been decoded and the resource name
// parsed.
func (h *Handler) Handle(ctx context.Context, meta Metadata, payload []byte) (*Result, error) {
	res, err := h.handle(ctx, meta, payload)
	if err != nil {
		h.metrics.Events.WithLabelValues(OutcomeError).Inc()
		return nil, err
	}
	if res.DryRun {
		h.metrics.Events.WithLabelValues(OutcomeDryRun).Inc()
	} else {
		h.metrics.Events.WithLabelValues(OutcomeUpdated).Inc()
	}
	return res, nil
}

func (h *Handler) handle(ctx context.Context, meta Metadata, payload []byte) (*Result, error) {
	ev, err := ParseEvent(payload)
	if err != nil {
		return nil, err
	}

	ctx = log.WithContext(ctx, func(c zerolog.Context) zerolog.Context {
		c = c.Str("event-id", meta.EventID)
		if !meta.Timestamp.IsZero() {
			c = c.Time("event-time", meta.Timestamp)
		}
		return c
	})
	log.Info(ctx).RawJSON("message", []byte(gjson.GetBytes(payload, "@ugly").Raw)).Msg("event received")
	log.Info(ctx).Str("resource", meta.Resource).Msg("function triggered by event")
	log.Info(ctx).Str("event-type", meta.EventType).Msg("event type")

	res := &Result{DryRun: ev.DryRun || h.cfg.DryRun}
	if res.DryRun {
		log.Info(ctx).Msg("dry run mode activated")
	}

	opts := h.cfg.ConvertOptions()
	opts.OnDrop = func(path firedoc.Path, keys []string) {
		p := path.String()
		res.Dropped = append(res.Dropped, p)
		h.metrics.Dropped.Inc()
		log.Warn(ctx).Str("path", p).Strs("keys", keys).Msg("dropped value with no recognized type tag")
	}
	doc, err := firedoc.NewDecoder(opts).DecodeFieldsJSON(ev.Fields)
	if err != nil {
		return nil, fmt.Errorf("trigger: decode document: %w", err)
	}
	res.Document = doc
	log.Debug(ctx).Interface("document", doc).Msg("decoded document")

	res.Ref, err = ParseResourceName(ev.Name, h.cfg.CollectionIndex, h.cfg.DocumentIndex)
	if err != nil {
		return nil, err
	}

	if res.DryRun {
		res.UpdatedAt = h.clock.Now().UTC()
		h.metrics.Writes.WithLabelValues(ModeDryRun).Inc()
		log.Info(ctx).Msgf("[DRY-RUN] Document %s updated at %s", res.Ref, res.UpdatedAt.Format(timeFormat))
		return res, nil
	}

	if h.updater == nil {
		return nil, errors.New("trigger: no updater configured")
	}
	res.UpdatedAt, err = h.updater.UpdateField(ctx, res.Ref, h.cfg.StatusField, true)
	if err != nil {
		return nil, fmt.Errorf("trigger: update %s: %w", res.Ref, err)
	}
	h.metrics.Writes.WithLabelValues(ModeLive).Inc()
	log.Info(ctx).Msgf("Document %s updated at %s", res.Ref, res.UpdatedAt.UTC().Format(timeFormat))
	return res, nil
}
