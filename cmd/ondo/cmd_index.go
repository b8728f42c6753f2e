package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/pkg/ondo"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage secondary indexes",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <domain> <table> <index> <fields>",
	Short: "Create an index over a comma-separated list of dotted field paths",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewIndexReference(args[0], args[1], args[2])
		fields := strings.Split(args[3], ",")
		effects, err := ref.PostIndex(ondo.Index{Reference: ref, Fields: fields}, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("created index %q on %s/%s over %v\n", args[2], args[0], args[1], fields)
		return nil
	},
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete <domain> <table> <index>",
	Short: "Delete an index",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewIndexReference(args[0], args[1], args[2])
		effects, err := ref.DeleteIndex(store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("deleted index %q from %s/%s\n", args[2], args[0], args[1])
		return nil
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild <domain> <table> <index> <fields>",
	Short: "Replace an index's field list and fully reindex the table",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewIndexReference(args[0], args[1], args[2])
		fields := strings.Split(args[3], ",")
		effects, err := ref.PutIndex(ondo.Index{Reference: ref, Fields: fields}, store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("rebuilt index %q on %s/%s over %v\n", args[2], args[0], args[1], fields)
		return nil
	},
}

func init() {
	indexCmd.AddCommand(indexCreateCmd, indexDeleteCmd, indexRebuildCmd)
}
