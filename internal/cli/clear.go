package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear [conversation-id]",
		Short: "Delete a conversation",
		Long:  "Delete one conversation, or every conversation with --all.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runClear,
	}

	cmd.Flags().Bool("all", false, "Delete every conversation")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	if all == (len(args) == 1) {
		exitErr("clear", errors.New("pass either a conversation id or --all"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m := newManager(s)
	if all {
		if err := m.ClearAll(cmd.Context()); err != nil {
			exitErr("clear", err)
		}
		fmt.Println(`{"ok":true,"cleared":"all"}`)
		return
	}

	if err := m.ClearConversation(cmd.Context(), args[0]); err != nil {
		exitErr("clear", err)
	}
	fmt.Printf(`{"ok":true,"cleared":%q}`+"\n", args[0])
}
