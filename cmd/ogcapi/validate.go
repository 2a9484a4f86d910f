package ogcapi

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/edgeflare/ogcapi/pkg/postgis"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the generated SQL",
	Long:  `Loads the configuration, builds every query of each collection and checks that it parses as a single SELECT`,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, id := range cfg.CollectionIDs() {
		col, _ := cfg.Collection(id)
		fmt.Fprintf(out, "collection %s (table %s)\n", id, col.Table)

		queries := postgis.CollectionQueries(col)
		names := make([]string, 0, len(queries))
		for name := range queries {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(out, "  %-10s %s\n", name, queries[name].SQL)
		}
	}
	fmt.Fprintf(out, "ok: %d collections\n", len(cfg.Collections))
	return nil
}
