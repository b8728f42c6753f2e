package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/pkg/ondo"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage domains",
}

var domainCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewDomainReference(args[0])
		effects, err := ref.PostDomain(ondo.Domain{Reference: ref}, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}

		// Server-level domain bookkeeping is planned and applied as its
		// own step, never folded into PostDomain's effects (SPEC_FULL.md
		// §4.4), so a failure here never leaves the new domain half-made.
		serverEffect, err := serverRef.AddDomain(store, args[0])
		if err != nil {
			return err
		}
		if err := store.Apply(ondo.Effects{serverEffect}); err != nil {
			return err
		}

		fmt.Printf("created domain %q\n", args[0])
		return nil
	},
}

var domainDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a domain and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewDomainReference(args[0])
		effects, err := ref.DeleteDomain(store, store)
		if err != nil {
			return err
		}
		if err := store.Apply(effects); err != nil {
			return err
		}

		serverEffect, err := serverRef.RemoveDomain(store, args[0])
		if err != nil {
			return err
		}
		if err := store.Apply(ondo.Effects{serverEffect}); err != nil {
			return err
		}

		fmt.Printf("deleted domain %q\n", args[0])
		return nil
	},
}

var domainListTablesCmd = &cobra.Command{
	Use:   "tables <name>",
	Short: "List the tables in a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ondo.NewDomainReference(args[0])
		names, err := ref.ListTableNames(store)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	domainCmd.AddCommand(domainCreateCmd, domainDeleteCmd, domainListTablesCmd)
}
