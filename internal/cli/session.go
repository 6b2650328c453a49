package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/api"
	"github.com/rcliao/shop-recommender/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "session [conversation-id]",
		Short: "Show a conversation summary",
		Args:  cobra.ExactArgs(1),
		Run:   runSession,
	}

	RootCmd.AddCommand(cmd)
}

func runSession(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	conv, ok, err := newManager(s).GetConversation(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if !ok {
		exitErr("get", fmt.Errorf("%w: %s", session.ErrConversationNotFound, args[0]))
	}

	view := api.NewSessionView(conv)
	if textFormat() {
		intents := make([]string, len(view.DetectedIntents))
		for i, in := range view.DetectedIntents {
			intents[i] = string(in)
		}
		fmt.Printf("conversation: %s\n", view.ConversationID)
		if view.UserID != "" {
			fmt.Printf("user:         %s\n", view.UserID)
		}
		fmt.Printf("started:      %s\n", view.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("last message: %s\n", view.LastMessageAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("messages:     %d\n", view.MessageCount)
		fmt.Printf("intents:      %s\n", joinOrDash(intents))
		return
	}
	printJSON(view)
}
