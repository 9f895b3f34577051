package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/missioncontrol/mcagent/internal/claim"
	"github.com/missioncontrol/mcagent/internal/completion"
	"github.com/missioncontrol/mcagent/internal/metrics"
	"github.com/missioncontrol/mcagent/internal/runlog"
	"github.com/missioncontrol/mcagent/internal/taskstore"
	"github.com/missioncontrol/mcagent/internal/transcript"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type watchOptions struct {
	interval    time.Duration
	metricsAddr string
	noPoll      bool
	runLog      bool
}

func newWatchCommand() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for work and complete finished tasks on an interval",
		Long: `Run the claim poll and the completion batch side by side, each once per
interval, until interrupted. Every iteration uses a fresh session key.

With --metrics-addr, Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchCommandE(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Time between iterations (default from config)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&opts.noPoll, "no-poll", false, "Only complete tasks; do not claim new work")
	cmd.Flags().BoolVar(&opts.runLog, "run-log", false, "Record an NDJSON run log (overrides config)")

	return cmd
}

func watchCommandE(cmd *cobra.Command, opts watchOptions) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if opts.interval <= 0 {
		opts.interval = a.cfg.Watch.Interval
	}
	if opts.metricsAddr == "" {
		opts.metricsAddr = a.cfg.Watch.MetricsAddr
	}

	store, err := a.taskStore()
	if err != nil {
		return err
	}
	transcripts, err := a.transcriptStore()
	if err != nil {
		return err
	}
	rl, err := a.openRunLog(opts.runLog)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	w := &watcher{
		app:         a,
		store:       store,
		transcripts: transcripts,
		runLog:      rl,
		metrics:     m,
		out:         &syncWriter{w: cmd.OutOrStdout()},
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	if opts.metricsAddr != "" {
		srv := newMetricsServer(opts.metricsAddr, reg)
		g.Go(func() error {
			a.logger.Info("serving metrics", "addr", opts.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	if !opts.noPoll {
		g.Go(func() error { return every(ctx, opts.interval, w.poll) })
	}
	g.Go(func() error { return every(ctx, opts.interval, w.complete) })

	a.logger.Info("watching", "interval", opts.interval, "poll", !opts.noPoll)
	err = g.Wait()
	if cmd.Context().Err() != nil {
		// Interrupted by the caller.
		return nil
	}
	return err
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// every calls fn immediately and then once per interval until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		fn(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// watcher runs single poll and completion iterations. Failures are logged
// and retried on the next tick.
type watcher struct {
	app         *app
	store       *taskstore.Client
	transcripts transcript.Store
	runLog      runlog.Logger
	metrics     *metrics.Metrics
	out         io.Writer
}

func (w *watcher) poll(ctx context.Context) {
	client := claim.NewClient(w.store, claim.Options{Logger: w.app.logger, RunLog: w.runLog, Metrics: w.metrics})
	cl, err := client.Poll(ctx, w.app.newRun())
	if err != nil {
		if ctx.Err() == nil {
			w.app.logger.Error("poll failed", "error", err)
		}
		return
	}
	if cl != nil {
		var buf bytes.Buffer
		cl.WriteInstructions(&buf)
		w.out.Write(buf.Bytes()) //nolint:errcheck
	}
}

func (w *watcher) complete(ctx context.Context) {
	coord := completion.New(w.store, w.transcripts, w.app.newRun(),
		completion.WithLogger(w.app.logger),
		completion.WithRunLog(w.runLog),
		completion.WithMetrics(w.metrics),
	)
	report, err := coord.Run(ctx)
	if err != nil {
		return
	}
	if report.Processed > 0 {
		fmt.Fprintf(w.out, "Post-process complete. Processed %d task(s).\n", report.Processed) //nolint:errcheck
	}
}

// syncWriter serializes writes from the watch loops.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
