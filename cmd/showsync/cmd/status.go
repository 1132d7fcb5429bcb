package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cweiss/showsync/internal/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library and synchronization state",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := librarySvc.ListRefs()
		if err != nil {
			return err
		}
		fmt.Printf("followed series: %d\n", len(refs))

		cached := 0
		if entries, err := os.ReadDir(cfg.Cache.Root); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					cached++
				}
			}
		}
		fmt.Printf("cached series:   %d\n", cached)

		marks := sync.NewWatermarkStore(cfg.Cache.Root)
		token, err := marks.Read()
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("watermark:       none (next sync downloads everything)")
			return nil
		}
		fmt.Printf("watermark:       %s\n", token)
		if at, ok := marks.LastSync(); ok {
			fmt.Printf("last sync:       %s (%s ago)\n",
				at.Format(time.RFC3339), time.Since(at).Round(time.Minute))
			if marks.IsThrottled() {
				fmt.Println("next sync:       throttled (one pass per 24h)")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
