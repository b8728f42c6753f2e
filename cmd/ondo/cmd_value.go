package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/pkg/ondo"
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Read and write rows",
}

func parseID(s string) ondo.Key {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return ondo.NewKey(n)
	}
	return ondo.NewKey(s)
}

func parseValue(s string) (ondo.Value, error) {
	var v ondo.Value
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parse value json: %w", err)
	}
	return v, nil
}

var valueGetCmd = &cobra.Command{
	Use:   "get <domain> <table> <id>",
	Short: "Print a row by primary key",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableRef := ondo.NewTableReference(args[0], args[1])
		valueRef := ondo.NewTableValueReference(tableRef, parseID(args[2]))
		v, err := valueRef.GetTableValue(store)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("no row %s in %s/%s", args[2], args[0], args[1])
		}
		fmt.Printf("%v\n", *v)
		return nil
	},
}

var valuePostCmd = &cobra.Command{
	Use:   "post <domain> <table> <json>",
	Short: "Insert a row, assigning a primary key from the table's counter",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableRef := ondo.NewTableReference(args[0], args[1])
		value, err := parseValue(args[2])
		if err != nil {
			return err
		}
		createRef := ondo.CreateTableValueReference{TableReference: tableRef}
		effects, err := createRef.PostTableValue(value, store, store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("inserted row into %s/%s\n", args[0], args[1])
		return nil
	},
}

var valuePutCmd = &cobra.Command{
	Use:   "put <domain> <table> <id> <json>",
	Short: "Replace a row by primary key",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableRef := ondo.NewTableReference(args[0], args[1])
		valueRef := ondo.NewTableValueReference(tableRef, parseID(args[2]))
		value, err := parseValue(args[3])
		if err != nil {
			return err
		}
		effects, err := valueRef.PutTableValue(value, store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("updated row %s in %s/%s\n", args[2], args[0], args[1])
		return nil
	},
}

var valueDeleteCmd = &cobra.Command{
	Use:   "delete <domain> <table> <id>",
	Short: "Delete a row by primary key",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableRef := ondo.NewTableReference(args[0], args[1])
		valueRef := ondo.NewTableValueReference(tableRef, parseID(args[2]))
		effects, err := valueRef.DeleteTableValue(store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}
		fmt.Printf("deleted row %s from %s/%s\n", args[2], args[0], args[1])
		return nil
	},
}

func init() {
	valueCmd.AddCommand(valueGetCmd, valuePostCmd, valuePutCmd, valueDeleteCmd)
}
