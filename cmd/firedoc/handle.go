package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Neumenon/firedoc/config"
	"github.com/Neumenon/firedoc/internal/codec"
	"github.com/Neumenon/firedoc/internal/log"
	"github.com/Neumenon/firedoc/store"
	"github.com/Neumenon/firedoc/trigger"
)

type handleOutput struct {
	Ref       string         `json:"ref"`
	DryRun    bool           `json:"dryRun"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Dropped   []string       `json:"dropped,omitempty"`
	Document  map[string]any `json:"document"`
}

func newHandleCmd(load loadFunc) *cobra.Command {
	var (
		meta      trigger.Metadata
		eventTime string
		memory    bool
	)
	cmd := &cobra.Command{
		Use:   "handle [file]",
		Short: "Run the document trigger on an event payload",
		Long: `Run the document trigger on an event payload.

The new document is decoded and its status field set to true unless the
event or --dry-run asks for a dry run. With --memory the write goes to an
in-process store seeded with the event's record instead of the database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if eventTime != "" {
				meta.Timestamp, err = time.Parse(time.RFC3339Nano, eventTime)
				if err != nil {
					return fmt.Errorf("event time: %w", err)
				}
			}
			data, err := readInput(fileArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			ev, err := trigger.ParseEvent(data)
			if err != nil {
				return err
			}
			if meta.Resource == "" {
				meta.Resource = ev.Name
			}

			ctx := cmd.Context()
			reg := prometheus.NewRegistry()
			if cfg.MetricsFile != "" {
				defer func() {
					if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
						log.Error(ctx).Err(err).Str("file", cfg.MetricsFile).Msg("failed to write metrics")
					}
				}()
			}

			updater, closeFn, err := newUpdater(ctx, cfg, ev, memory)
			if err != nil {
				return err
			}
			defer closeFn()

			h := trigger.New(cfg, updater, trigger.WithMetrics(trigger.NewMetrics(reg)))
			res, err := h.Handle(ctx, meta, data)
			if err != nil {
				return err
			}
			return codec.Write(cmd.OutOrStdout(), codec.JSON, handleOutput{
				Ref:       res.Ref.String(),
				DryRun:    res.DryRun,
				UpdatedAt: res.UpdatedAt,
				Dropped:   res.Dropped,
				Document:  res.Document,
			}, true)
		},
	}
	flags := cmd.Flags()
	flags.Bool("dry-run", false, "never write, whatever the event asks")
	flags.BoolVar(&memory, "memory", false, "write to an in-process store instead of the database")
	flags.String("metrics-file", "", "write counters to this file in the prometheus text format")
	flags.String("project", "", "database project id")
	flags.String("database", "", "database id")
	flags.Int("collection-index", 5, "position of the collection id in the resource name")
	flags.Int("document-index", 6, "position of the record id in the resource name")
	flags.String("status-field", "status", "field set to true on the record")
	flags.Bool("strict", false, "fail on values with no recognized type tag")
	flags.StringVar(&meta.EventID, "event-id", "", "event id to log")
	flags.StringVar(&meta.EventType, "event-type", "", "event type to log")
	flags.StringVar(&meta.Resource, "resource", "", "triggering resource to log (default: the document name)")
	flags.StringVar(&eventTime, "event-time", "", "event timestamp in RFC 3339 format")
	return cmd
}

// newUpdater picks the store the handler writes through. Configured dry
// runs need none.
func newUpdater(ctx context.Context, cfg *config.Config, ev *trigger.Event, memory bool) (store.Updater, func(), error) {
	noop := func() {}
	switch {
	case memory:
		mem := store.NewMemory(nil)
		if ref, err := trigger.ParseResourceName(ev.Name, cfg.CollectionIndex, cfg.DocumentIndex); err == nil {
			mem.Put(ref, nil)
		}
		return mem, noop, nil
	case cfg.DryRun:
		return nil, noop, nil
	}

	projectID, err := cfg.ResolveProjectID(ctx)
	if err != nil {
		return nil, noop, err
	}
	fs, err := store.NewFirestore(ctx, projectID, cfg.DatabaseID)
	if err != nil {
		return nil, noop, err
	}
	return fs, func() {
		if err := fs.Close(); err != nil {
			log.Warn(ctx).Err(err).Msg("failed to close firestore client")
		}
	}, nil
}
