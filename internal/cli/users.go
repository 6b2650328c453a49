package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List shoppers with conversations",
		Run:   runUsers,
	}

	RootCmd.AddCommand(cmd)
}

func runUsers(cmd *cobra.Command, args []string) {
	s, err := openSQLite()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	users, err := s.ListUsers(cmd.Context())
	if err != nil {
		exitErr("list users", err)
	}

	if textFormat() {
		rows := make([][]string, len(users))
		for i, u := range users {
			rows[i] = []string{u.UserID, fmt.Sprintf("%d", u.Conversations), u.LastMessageAt.Local().Format("2006-01-02 15:04")}
		}
		writeTable(os.Stdout, []string{"USER", "CONVERSATIONS", "LAST MESSAGE"}, rows)
		return
	}
	printJSON(users)
}
