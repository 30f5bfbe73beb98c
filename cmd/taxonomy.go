package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/hackmatch/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy [category]",
	Short: "List the technology categories skills are expanded with",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTaxonomy(cmd, taxonomy.Default(), args)
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
}

func printTaxonomy(cmd *cobra.Command, tax *taxonomy.Taxonomy, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		terms := tax.Terms(args[0])
		if terms == nil {
			return fmt.Errorf("unknown category %q", args[0])
		}
		fmt.Fprintln(out, strings.Join(terms, ", "))
		return nil
	}

	fmt.Fprintf(out, "%d categories\n", tax.Len())
	for _, c := range tax.Categories() {
		fmt.Fprintf(out, "%s: %s\n", c.Name, strings.Join(c.Terms, ", "))
	}
	return nil
}
