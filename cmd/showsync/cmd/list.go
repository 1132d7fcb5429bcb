package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cweiss/showsync/internal/tui/styles"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List followed series",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := librarySvc.ListRefs()
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("no series followed yet; try: showsync add <tvdb-id>")
			return nil
		}
		for _, ref := range refs {
			title := ref.Title
			if title == "" {
				title = "(untitled)"
			}
			title = styles.Truncate(title, 44)
			added := time.Unix(ref.AddedAt, 0).Format("2006-01-02")
			fmt.Printf("%-10s %-44s %s\n",
				ref.TVDBID,
				title,
				styles.DimStyle.Render(fmt.Sprintf("%s  added %s", ref.Language, added)))
		}
		fmt.Printf("\n%d series followed\n", len(refs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
