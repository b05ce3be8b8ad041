// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/vms/rewards"
)

const (
	blockIntervalKey = "block-interval"
	blockAuthorKey   = "block-author"

	metricsEndpoint   = "/ext/metrics"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rewards json-rpc API and metrics",
		Long: "Serve the rewards json-rpc API and metrics. With --" + blockIntervalKey +
			" set, a block authored by --" + blockAuthorKey + " is rewarded at every interval.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			interval, err := cmd.Flags().GetDuration(blockIntervalKey)
			if err != nil {
				return err
			}
			var author ids.ShortID
			if interval > 0 {
				authorStr, err := cmd.Flags().GetString(blockAuthorKey)
				if err != nil {
					return err
				}
				author, err = address.ParseToID(authorStr)
				if err != nil {
					return fmt.Errorf("couldn't parse %s: %w", blockAuthorKey, err)
				}
			}

			log := newLogger(c.Logging, stderr)
			defer log.Stop()

			registry := prometheus.NewRegistry()
			db, err := openDB(c.DBDir, log, registry)
			if err != nil {
				return err
			}

			vm := &rewards.VM{}
			if err := vm.Initialize(&rewards.Context{
				NetworkID: c.NetworkID,
				Log:       log,
				Metrics:   registry,
				DB:        db,
				IndexPath: c.IndexFile,
			}, c.Genesis); err != nil {
				_ = db.Close()
				return err
			}
			defer func() {
				if err := vm.Shutdown(context.Background()); err != nil {
					log.Error("failed to shut down", zap.Error(err))
				}
			}()

			handler, err := vm.CreateHandler()
			if err != nil {
				return err
			}
			router := mux.NewRouter()
			router.Handle(metricsEndpoint, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			router.PathPrefix(rewards.Endpoint).Handler(handler)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var producer sync.WaitGroup
			if interval > 0 {
				producer.Add(1)
				go func() {
					defer producer.Done()
					produceBlocks(ctx, vm, log, interval, author)
				}()
			}
			err = serve(ctx, log, net.JoinHostPort(c.HTTPHost, strconv.Itoa(int(c.HTTPPort))), router)

			// the vm is shut down once no more blocks are produced
			stop()
			producer.Wait()
			return err
		},
	}
	cmd.Flags().Duration(blockIntervalKey, 0, "Interval between locally produced blocks. No blocks are produced if 0")
	cmd.Flags().String(blockAuthorKey, "", "Address authoring the locally produced blocks")
	return cmd
}

func serve(ctx context.Context, log logging.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving rewards api", zap.String("address", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// produceBlocks rewards [author] for a new block every [interval] until
// [ctx] is done.
func produceBlocks(ctx context.Context, vm *rewards.VM, log logging.Logger, interval time.Duration, author ids.ShortID) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		height := uint64(1)
		if last, ok := vm.LastRewarded(); ok {
			height = last + 1
		}
		if err := vm.AcceptBlock(ctx, height, author); err != nil {
			log.Error("failed to reward block",
				zap.Uint64("height", height),
				zap.Error(err),
			)
		}
	}
}
