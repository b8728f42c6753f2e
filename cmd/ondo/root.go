package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/internal/badgerstore"
	"github.com/umuro/ondo/pkg/config"
)

var (
	// Version is set during build.
	Version = "0.1.0"

	cfgPath string
	store   *badgerstore.Store
)

// rootCmd is the base command; every subcommand opens the configured
// store in PersistentPreRunE and closes it in PersistentPostRunE.
var rootCmd = &cobra.Command{
	Use:     "ondo",
	Short:   "Admin CLI for an ondo document database",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		store, err = badgerstore.Open(badgerstore.Config{
			DataDir:        cfg.Storage.DataDir,
			InMemory:       cfg.Storage.InMemory,
			SyncWrites:     cfg.Storage.SyncWrites,
			ValueThreshold: cfg.Storage.ValueThreshold,
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store == nil {
			return nil
		}
		return store.Close()
	},
}

// Execute adds every child command to rootCmd and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(serverCmd)
}
