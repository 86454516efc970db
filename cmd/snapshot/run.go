package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/screwyprof/airdrop/pkg/bech32addr"
	"github.com/screwyprof/airdrop/pkg/metrics"
	"github.com/screwyprof/airdrop/snapshot"
	"github.com/screwyprof/airdrop/snapshot/jsonfile"
)

type runOptions struct {
	input        string
	output       string
	prefix       string
	maxBatchSize int
	joinPolicy   string
	callTimeout  time.Duration
	metricsFile  string
}

// recordSaver persists a finished batch
type recordSaver interface {
	Save(ctx context.Context, records []snapshot.Record, takenAt time.Time) error
}

type runner struct {
	dial    snapshot.DialFunc
	stdout  io.Writer
	log     *slog.Logger
	metrics *metrics.Registry
	store   recordSaver // optional
}

// run snapshots one batch. Records stream to stdout as they complete;
// the output file is written in input order once the batch is done.
func (r *runner) run(ctx context.Context, opts runOptions) error {
	allocations, err := jsonfile.ReadFile(opts.input)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}

	svc, err := r.newService(opts)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}

	var (
		startedAt time.Time
		report    snapshot.Report
		failed    error
	)

	events, done := svc.Start(ctx, allocations)
	closer := snapshot.Fanout(events,
		func(ch <-chan snapshot.Event) func() {
			return snapshot.NewSubscriber(ch,
				snapshot.OnBatchStarted(func(e snapshot.BatchStarted) {
					startedAt = e.StartedAt
					r.logBatchStarted(ctx, e)
				}),
				snapshot.OnRecordProduced(func(e snapshot.RecordProduced) {
					if err := jsonfile.WriteLine(r.stdout, e.Record); err != nil {
						r.log.ErrorContext(ctx, "Failed to write progress", slog.Any("error", err))
					}
				}),
				snapshot.OnAddressFailed(func(e snapshot.AddressFailed) {
					r.log.WarnContext(ctx, "Address failed",
						slog.Int("index", e.Index),
						slog.String("address", e.Address),
						slog.String("kind", kindName(e.Err)),
						slog.Any("error", e.Err),
					)
				}),
				snapshot.OnBatchDone(func(e snapshot.BatchDone) {
					report = e.Report
					r.log.InfoContext(ctx, "Batch done",
						slog.Int("records", len(e.Report.Records)),
						slog.Int("failures", len(e.Report.Failures)),
						slog.Duration("duration", e.Duration),
					)
				}),
				snapshot.OnBatchFailed(func(e snapshot.BatchFailed) {
					failed = e.Err
				}),
			)
		},
		r.metricsSubscriber,
	)
	<-done
	closer()

	if failed != nil {
		r.writeMetrics(ctx, opts.metricsFile)
		return cli.Exit(fmt.Errorf("batch aborted: %w", failed), exitFatal)
	}

	if err := jsonfile.WriteFile(opts.output, report.Records); err != nil {
		return cli.Exit(err, exitFatal)
	}
	r.log.InfoContext(ctx, "Snapshot written", slog.String("output", opts.output))

	if r.store != nil {
		if err := r.store.Save(ctx, report.Records, startedAt); err != nil {
			return cli.Exit(err, exitFatal)
		}
		r.log.InfoContext(ctx, "Snapshot stored", slog.Int("records", len(report.Records)))
	}

	r.writeMetrics(ctx, opts.metricsFile)

	if len(report.Failures) > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d addresses failed: %v", len(report.Failures), report.Accepted, report.Err()), exitPartial)
	}
	return nil
}

func (r *runner) newService(opts runOptions) (*snapshot.Service, error) {
	policy, err := snapshot.ParseJoinPolicy(opts.joinPolicy)
	if err != nil {
		return nil, err
	}

	if opts.maxBatchSize < 0 {
		return nil, fmt.Errorf("max-batch-size must not be negative: %d", opts.maxBatchSize)
	}

	svcOpts := []snapshot.Option{
		snapshot.WithJoinPolicy(policy),
		snapshot.WithMaxBatchSize(opts.maxBatchSize),
		snapshot.WithCallTimeout(opts.callTimeout),
	}

	if opts.prefix != "" {
		normalizer, err := bech32addr.New(opts.prefix)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, snapshot.WithNormalizer(normalizer))
	}

	return snapshot.NewService(r.dial, svcOpts...), nil
}

func (r *runner) logBatchStarted(ctx context.Context, e snapshot.BatchStarted) {
	attrs := []any{
		slog.Int("requested", e.Requested),
		slog.Int("accepted", e.Accepted),
	}
	if e.Accepted < e.Requested {
		r.log.WarnContext(ctx, "Batch truncated to the maximum batch size", attrs...)
		return
	}
	r.log.InfoContext(ctx, "Batch started", attrs...)
}

func (r *runner) metricsSubscriber(events <-chan snapshot.Event) func() {
	return snapshot.NewSubscriber(events,
		snapshot.OnRecordProduced(func(snapshot.RecordProduced) { r.metrics.RecordProduced() }),
		snapshot.OnAddressFailed(func(e snapshot.AddressFailed) { r.metrics.AddressFailed(kindName(e.Err)) }),
		snapshot.OnBatchDone(func(e snapshot.BatchDone) { r.metrics.BatchDone(e.Duration) }),
	)
}

func (r *runner) writeMetrics(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := r.metrics.WriteTextfile(path); err != nil {
		r.log.ErrorContext(ctx, "Failed to write metrics", slog.Any("error", err))
	}
}

func kindName(err error) string {
	if kind, ok := snapshot.KindOf(err); ok {
		return kind.String()
	}
	return "unknown"
}
