package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [conversation-id]",
		Short: "Show accumulated conversation keywords",
		Long:  "Show every filter extracted so far in a conversation, with the fallback search query they build.",
		Args:  cobra.ExactArgs(1),
		Run:   runContext,
	}

	RootCmd.AddCommand(cmd)
}

type contextView struct {
	ConversationID string                  `json:"conversationId"`
	Keywords       model.ExtractedKeywords `json:"accumulatedKeywords"`
	SearchQuery    string                  `json:"searchQuery"`
}

func runContext(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	kw, ok, err := newManager(s).AccumulatedKeywords(cmd.Context(), args[0])
	if err != nil {
		exitErr("context", err)
	}
	if !ok {
		exitErr("context", fmt.Errorf("%w: %s", session.ErrConversationNotFound, args[0]))
	}

	query := keywords.BuildSearchQuery(kw)
	if textFormat() {
		writeKeywords(os.Stdout, kw)
		fmt.Printf("query:      %s\n", query)
		return
	}
	printJSON(contextView{ConversationID: args[0], Keywords: kw, SearchQuery: query})
}
