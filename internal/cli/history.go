package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/api"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history [conversation-id]",
		Short: "Show recent messages",
		Long:  "Show the most recent messages of a conversation, oldest first. Unknown ids print an empty list.",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max messages (default: history_limit from config)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	msgs, err := newManager(s).History(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("history", err)
	}

	entries := api.NewHistoryEntries(msgs)
	if textFormat() {
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.Timestamp.Local().Format("15:04:05"),
				string(e.SenderType),
				string(e.Intent),
				e.Content,
				strings.Join(e.Recommendations, ","),
			}
		}
		writeTable(os.Stdout, []string{"TIME", "FROM", "INTENT", "MESSAGE", "RECOMMENDED"}, rows)
		return
	}
	printJSON(entries)
}
