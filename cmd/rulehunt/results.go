package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rulehunt/internal/core"
	"rulehunt/internal/store"
)

var (
	flagResultsMin   float64
	flagResultsLimit int
	flagResultsKind  string
)

// resultsCmd lists stored search results, best scores first.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored search results",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(flagStore, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.Filter{MinScore: flagResultsMin, Limit: flagResultsLimit}
		if flagResultsKind != "" {
			kind, err := core.ParseRuleKind(flagResultsKind)
			if err != nil {
				return err
			}
			filter.KindTag = uint8(kind)
		}

		results, err := st.Query(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No stored results match.")
			return nil
		}

		fmt.Printf("%-6s %-20s %-12s %-6s %-8s %s\n", "ID", "RULE", "SEED", "GENS", "SCORE", "OUTCOME")
		for _, r := range results {
			fmt.Printf("%-6d %#-20x %-12d %-6d %-8.4f %s\n",
				r.ID, r.Rule, r.Seed, r.Generations, r.Score, r.Outcome)
		}
		return nil
	},
}

func init() {
	fs := resultsCmd.Flags()
	fs.Float64Var(&flagResultsMin, "min-score", 0, "only list results at or above this score")
	fs.IntVar(&flagResultsLimit, "limit", 20, "maximum rows to list (0 = all)")
	fs.StringVar(&flagResultsKind, "kind", "", "restrict to one rule family")
}
