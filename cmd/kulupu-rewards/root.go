// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/OIEIEIO/kulupu/config"
)

const logFileName = "rewards.log"

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "kulupu-rewards",
		Short:         "Block reward issuance with time-locked vesting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().AddFlagSet(config.BuildFlagSet())

	rootCmd.AddCommand(
		newScheduleCmd(),
		newSimulateCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	return config.GetConfig(v)
}

func newLogger(c config.LoggingConfig, display io.WriteCloser) logging.Logger {
	format := logging.Plain
	if c.JSON {
		format = logging.JSON
	}

	cores := []logging.WrappedCore{
		logging.NewWrappedCore(
			c.DisplayLevel,
			display,
			format.ConsoleEncoder(),
		),
	}
	if c.Directory != "" {
		cores = append(cores, logging.NewWrappedCore(
			c.Level,
			&lumberjack.Logger{
				Filename:   filepath.Join(c.Directory, logFileName),
				MaxSize:    c.MaxSize,
				MaxBackups: c.MaxFiles,
				MaxAge:     c.MaxAge,
				Compress:   c.Compress,
			},
			format.FileEncoder(),
		))
	}
	return logging.NewLogger("rewards", cores...)
}

// openDB returns an in-memory database if [dir] is empty.
func openDB(dir string, log logging.Logger, registerer prometheus.Registerer) (database.Database, error) {
	if dir == "" {
		log.Info("using in-memory database")
		return memdb.New(), nil
	}
	return leveldb.New(filepath.Join(dir, "rewards"), nil, log, "db", registerer)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// nopCloser keeps the process' standard streams open when the logger stops.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

var stderr io.WriteCloser = nopCloser{Writer: os.Stderr}
