// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/wenruji/decaygame/api"
	"github.com/wenruji/decaygame/metrics"
)

var serveCommand = cli.Command{
	Name:   "serve",
	Usage:  "serve the read-only API over the contract database",
	Flags:  []cli.Flag{enableAPILogsFlag, metricsAddrFlag},
	Action: serveAction,
}

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(&cfg.Host)

	if cfg.Host.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	db, err := openMainDB(cfg.Host.DataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); db.Close() }()

	c := newContracts(cfg, db)
	handler, err := api.New(api.Contracts{
		Referral: c.referral,
		HitNRug:  c.hitnrug,
		Vault:    c.vault,
	}, newClock(ctx), api.Options{
		AllowedOrigins:       strings.Join(cfg.Host.APICORS, ","),
		EnableReqLogger:      ctx.Bool(enableAPILogsFlag.Name),
		SlowQueriesThreshold: time.Second,
		EnableMetrics:        cfg.Host.EnableMetrics,
	})
	if err != nil {
		return err
	}

	exitCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(exitCtx)
	apiURL, err := startServer(gctx, g, cfg.Host.APIAddr, handler)
	if err != nil {
		return errors.Wrap(err, "api")
	}
	logger.Info("API server started", "url", apiURL)

	if cfg.Host.EnableMetrics {
		router := mux.NewRouter()
		router.Path("/metrics").Handler(metrics.HTTPHandler())
		metricsURL, err := startServer(gctx, g, ctx.String(metricsAddrFlag.Name), router)
		if err != nil {
			cancel()
			_ = g.Wait()
			return errors.Wrap(err, "metrics")
		}
		logger.Info("metrics server started", "url", metricsURL+"metrics")
	}

	return g.Wait()
}

// startServer serves handler on addr until ctx is done.
func startServer(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return "http://" + listener.Addr().String() + "/", nil
}
