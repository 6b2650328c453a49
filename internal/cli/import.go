package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import conversations from JSON",
		Long:  "Import conversations from JSON on stdin. Expects the format produced by export; existing ids are skipped.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var convs []model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		exitErr("parse json", err)
	}

	s, err := openSQLite()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), convs)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d,"skipped":%d}`+"\n", imported, len(convs)-imported)
}
