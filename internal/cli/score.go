package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/scorer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "score [message]",
		Short: "Score catalog products against a message",
		Long: "Score every catalog product against the filters in a message and the shopper's action log, " +
			"without touching any conversation. Requires --catalog.",
		Run: runScore,
	}

	cmd.Flags().IntP("limit", "l", scorer.DefaultTopLimit, "Max results")
	cmd.Flags().Int("min-score", scorer.DefaultMinScore, "Drop products scoring below this")
	cmd.Flags().Bool("breakdown", false, "Include the chat, behaviour and popularity sub-scores")

	RootCmd.AddCommand(cmd)
}

func runScore(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	minScore, _ := cmd.Flags().GetInt("min-score")
	breakdown, _ := cmd.Flags().GetBool("breakdown")

	if cfg.CatalogPath == "" {
		exitErr("score", errors.New("no catalog configured (--catalog or $RECOMMENDER_CATALOG)"))
	}
	cat, err := loadCatalog(cmd)
	if err != nil {
		exitErr("load catalog", err)
	}

	var current *model.ExtractedKeywords
	userCtx := cat.UserContext()
	if len(args) > 0 {
		kw := keywords.Extract(strings.Join(args, " "))
		current = &kw
		userCtx.ChatKeywords = kw.RawKeywords
		userCtx.ChatCategories = kw.Categories
		userCtx.ChatBrands = kw.Brands
	}

	top := scorer.TopRecommendations(scorer.ScoreProducts(cat.Products, userCtx, current), limit, minScore)

	if textFormat() {
		headers := []string{"ID", "TITLE", "PRICE", "SCORE"}
		if breakdown {
			headers = append(headers, "CHAT", "BEHAVIOR", "POPULARITY")
		}
		headers = append(headers, "WHY")
		rows := make([][]string, len(top))
		for i, sp := range top {
			row := []string{sp.Product.ID, sp.Product.Title, formatPrice(sp.Product.Price), fmt.Sprintf("%d", sp.Score)}
			if breakdown {
				row = append(row,
					fmt.Sprintf("%d", sp.Breakdown.Chat),
					fmt.Sprintf("%d", sp.Breakdown.Behavior),
					fmt.Sprintf("%d", sp.Breakdown.Popularity))
			}
			rows[i] = append(row, strings.Join(sp.MatchReasons, "; "))
		}
		writeTable(os.Stdout, headers, rows)
		return
	}
	printJSON(top)
}
