package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umuro/ondo/pkg/ondo"
)

// serverRef addresses the single server-level record this CLI process
// talks to. Multi-server deployments would thread a --server flag
// through here; this admin CLI only ever talks to one store, so one
// fixed name is enough.
var serverRef = ondo.DatabaseServerReference{ServerName: "default"}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Inspect server-level bookkeeping",
}

var serverListDomainsCmd = &cobra.Command{
	Use:   "list-domains",
	Short: "List every domain name the server record knows about",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := serverRef.ListDomainNames(store)
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
	serverCmd.AddCommand(serverListDomainsCmd)
}
