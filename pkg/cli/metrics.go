/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sunnydmess/labctl/pkg/logging"
)

// metricsServer exposes the process metrics on /metrics for the duration of
// a run. Long converges are observable from outside instead of appearing
// hung.
type metricsServer struct {
	srv *http.Server
	g   *errgroup.Group
}

func startMetricsServer(addr string) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ms := &metricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ErrorLog:          logging.NewLogLogger(slog.LevelError),
		},
		g: &errgroup.Group{},
	}

	ms.g.Go(func() error {
		slog.Info("serving metrics", "addr", addr)
		if err := ms.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return ms
}

// stop shuts the server down and reports any listen failure that occurred
// while the run was in progress.
func (ms *metricsServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ms.srv.Shutdown(ctx); err != nil {
		slog.Warn("metrics server shutdown failed", "error", err)
	}
	if err := ms.g.Wait(); err != nil {
		slog.Warn("metrics server failed", "error", err)
	}
}
