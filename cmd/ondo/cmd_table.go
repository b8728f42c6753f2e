package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/pkg/ondo"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage tables",
}

var tableCreateCmd = &cobra.Command{
	Use:   "create <domain> <table>",
	Short: "Create a new table in a domain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewTableReference(args[0], args[1])
		effects, err := ref.PostTable(ondo.Table{Reference: ref}, store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("created table %q in domain %q\n", args[1], args[0])
		return nil
	},
}

var tableDeleteCmd = &cobra.Command{
	Use:   "delete <domain> <table>",
	Short: "Delete a table and its indexes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewTableReference(args[0], args[1])
		effects, err := ref.DeleteTable(store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("deleted table %q from domain %q\n", args[1], args[0])
		return nil
	},
}

var tableListIndexesCmd = &cobra.Command{
	Use:   "indexes <domain> <table>",
	Short: "List the indexes on a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewTableReference(args[0], args[1])
		names, err := ref.ListIndexNames(store)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var tableScanCmd = &cobra.Command{
	Use:   "scan <domain> <table>",
	Short: "Print every row in a table in key order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewTableReference(args[0], args[1])
		seq, err := ref.AllValues(store)
		if err != nil {
			return err
		}
		for item := range seq {
			if item.Err != nil {
				return item.Err
			}
			fmt.Printf("%v\n", item.Value)
		}
		return nil
	},
}

func init() {
	tableCmd.AddCommand(tableCreateCmd, tableDeleteCmd, tableListIndexesCmd, tableScanCmd)
}
