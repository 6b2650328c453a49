package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "extract [message]",
		Short: "Extract product filters from a message",
		Args:  cobra.MinimumNArgs(1),
		Run:   runExtract,
	}

	RootCmd.AddCommand(cmd)
}

type extractView struct {
	Keywords    model.ExtractedKeywords `json:"keywords"`
	SearchQuery string                  `json:"searchQuery"`
}

func runExtract(cmd *cobra.Command, args []string) {
	kw := keywords.Extract(strings.Join(args, " "))
	query := keywords.BuildSearchQuery(kw)

	if textFormat() {
		writeKeywords(os.Stdout, kw)
		fmt.Printf("query:      %s\n", query)
		return
	}
	printJSON(extractView{Keywords: kw, SearchQuery: query})
}
