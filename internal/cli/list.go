package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Long:  "List conversations, most recently active first.",
		Run:   runList,
	}

	cmd.Flags().StringP("user", "u", "", "Filter by shopper id")
	cmd.Flags().Duration("idle", 0, "Only conversations idle for at least this long")
	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")
	cmd.Flags().Bool("ids-only", false, "Only output conversation ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	userID, _ := cmd.Flags().GetString("user")
	idle, _ := cmd.Flags().GetDuration("idle")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	params := store.ListParams{UserID: userID, Limit: limit}
	if idle > 0 {
		params.IdleSince = time.Now().Add(-idle)
	}
	convs, err := s.List(cmd.Context(), params)
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, c := range convs {
			fmt.Println(c.ID)
		}
		return
	}

	if textFormat() {
		rows := make([][]string, len(convs))
		for i, c := range convs {
			user := c.UserID
			if user == "" {
				user = "-"
			}
			rows[i] = []string{
				c.ID,
				user,
				fmt.Sprintf("%d", c.MessageCount),
				c.LastMessageAt.Local().Format("2006-01-02 15:04"),
			}
		}
		writeTable(os.Stdout, []string{"ID", "USER", "MESSAGES", "LAST MESSAGE"}, rows)
		return
	}
	printJSON(convs)
}
