package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conversations as JSON",
		Long:  "Export full conversations with their messages as a JSON array. Filter by shopper with -u.",
		Run:   runExport,
	}

	cmd.Flags().StringP("user", "u", "", "Filter by shopper id")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	userID, _ := cmd.Flags().GetString("user")

	s, err := openSQLite()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	convs, err := s.ExportAll(cmd.Context(), userID)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(convs)
}
