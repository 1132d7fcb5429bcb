package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addLanguage string

var addCmd = &cobra.Command{
	Use:   "add <tvdb-id> [title]",
	Short: "Follow a series",
	Long: `Follow a series by its TheTVDB id. The optional title is only used
for display and search; the id is what drives synchronization.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) > 1 {
			title = args[1]
		}
		ref, err := librarySvc.Add(args[0], addLanguage, title)
		if err != nil {
			return err
		}
		if ref.Title != "" {
			fmt.Printf("added %s (%s) [%s]\n", ref.TVDBID, ref.Title, ref.Language)
		} else {
			fmt.Printf("added %s [%s]\n", ref.TVDBID, ref.Language)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addLanguage, "language", "l", "", "metadata language (defaults to library.default_language)")
	rootCmd.AddCommand(addCmd)
}
