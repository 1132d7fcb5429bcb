package cmd

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/cweiss/showsync/internal/tui/styles"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search followed series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		refs, err := librarySvc.Search(query)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, ref := range refs {
			label := ref.Title
			if label == "" {
				label = ref.TVDBID
			}
			fmt.Printf("%s %s\n",
				highlightMatches(label, query),
				styles.DimStyle.Render("["+ref.TVDBID+"]"))
		}
		return nil
	},
}

// highlightMatches re-runs the fuzzy match against a single label so the
// matched characters can be emphasized in the listing.
func highlightMatches(label, query string) string {
	matches := fuzzy.Find(query, []string{label})
	if len(matches) == 0 {
		return label
	}

	matched := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, idx := range matches[0].MatchedIndexes {
		matched[idx] = true
	}

	// Batch consecutive characters with the same match state so each
	// highlighted run is styled once.
	var b strings.Builder
	i := 0
	for i < len(label) {
		hit := matched[i]
		start := i
		for i < len(label) && matched[i] == hit {
			i++
		}
		if hit {
			b.WriteString(styles.MatchHighlightStyle.Render(label[start:i]))
		} else {
			b.WriteString(label[start:i])
		}
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
