package commands

import (
	"errors"
	"os"

	"doge-savings-scraper/diff"

	"github.com/spf13/cobra"
)

var (
	diffDataDir   string
	diffBaseIndex int
)

var diffCmd = &cobra.Command{
	Use:   "diff [new.csv old.csv]",
	Short: "Compare two scrape files, or the two most recent in the data directory",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var newPath, oldPath string
		var err error

		switch len(args) {
		case 2:
			newPath, oldPath = args[0], args[1]
		case 0:
			newPath, oldPath, err = diff.LatestPair(diffDataDir, diffBaseIndex)
			if err != nil {
				return err
			}
		default:
			return errors.New("pass either both file paths or none")
		}

		if err := diff.Summarize(newPath, os.Stdout); err != nil {
			return err
		}
		if err := diff.Summarize(oldPath, os.Stdout); err != nil {
			return err
		}

		newRecs, err := diff.LoadScrape(newPath)
		if err != nil {
			return err
		}
		oldRecs, err := diff.LoadScrape(oldPath)
		if err != nil {
			return err
		}

		report := diff.Compare(newRecs, oldRecs)
		report.NewPath, report.OldPath = newPath, oldPath
		report.Render(os.Stdout)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffDataDir, "data-dir", "data", "directory holding past scrape files")
	diffCmd.Flags().IntVar(&diffBaseIndex, "base-index", 1, "reverse-chronological index of the scrape to diff against")
	rootCmd.AddCommand(diffCmd)
}
