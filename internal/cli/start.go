package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/api"
)

func init() {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a conversation",
		Long:  "Start a conversation and print its id with the welcome message.",
		Run:   runStart,
	}

	cmd.Flags().StringP("user", "u", "", "Shopper id (optional)")

	RootCmd.AddCommand(cmd)
}

func runStart(cmd *cobra.Command, args []string) {
	userID, _ := cmd.Flags().GetString("user")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m := newManager(s)
	conv, err := m.StartConversation(cmd.Context(), userID)
	if err != nil {
		exitErr("start", err)
	}

	resp := api.NewStartResponse(conv.ID, m.Welcome())
	if textFormat() {
		fmt.Printf("conversation: %s\n%s\n[%s]\n", resp.ConversationID, resp.Message, strings.Join(resp.QuickReplies, "] ["))
		return
	}
	printJSON(resp)
}
