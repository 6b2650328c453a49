package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openSQLite()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		fmt.Printf("db:            %s (%s bytes)\n", stats.DBPath, printer.Sprintf("%d", stats.DBSizeBytes))
		fmt.Printf("conversations: %d\nmessages:      %d\nusers:         %d\n\n", stats.Conversations, stats.Messages, stats.Users)
		rows := make([][]string, len(stats.Intents))
		for i, in := range stats.Intents {
			rows[i] = []string{string(in.Intent), fmt.Sprintf("%d", in.Count)}
		}
		writeTable(os.Stdout, []string{"INTENT", "MESSAGES"}, rows)
		return
	}
	printJSON(stats)
}
