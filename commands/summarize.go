package commands

import (
	"os"

	"doge-savings-scraper/diff"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <scrape.csv>",
	Short: "Print row count and savings totals for one scrape file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return diff.Summarize(args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
