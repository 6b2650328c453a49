package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/keywords"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Fuzzy-search the catalog",
		Long: "Fuzzy-search product titles, brands, categories and tags. With --from-message the query is " +
			"built from the filters extracted out of a chat message instead.",
		Args: cobra.MinimumNArgs(1),
		Run:  runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("from-message", false, "Treat the arguments as a chat message")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	fromMessage, _ := cmd.Flags().GetBool("from-message")
	query := strings.Join(args, " ")

	if cfg.CatalogPath == "" {
		exitErr("search", errors.New("no catalog configured (--catalog or $RECOMMENDER_CATALOG)"))
	}
	cat, err := loadCatalog(cmd)
	if err != nil {
		exitErr("load catalog", err)
	}

	if fromMessage {
		query = keywords.BuildSearchQuery(keywords.Extract(query))
	}
	results := cat.Search(query, limit)

	if textFormat() {
		rows := make([][]string, len(results))
		for i, p := range results {
			rows[i] = []string{p.ID, p.Title, p.Brand, p.Category, formatPrice(p.Price)}
		}
		writeTable(os.Stdout, []string{"ID", "TITLE", "BRAND", "CATEGORY", "PRICE"}, rows)
		return
	}
	printJSON(results)
}
