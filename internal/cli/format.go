package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rcliao/shop-recommender/internal/api"
	"github.com/rcliao/shop-recommender/internal/model"
)

const maxCellWidth = 40

var printer = message.NewPrinter(language.English)

func formatPrice(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

func formatRange(r *model.PriceRange) string {
	switch {
	case r == nil:
		return "-"
	case r.Min != nil && r.Max != nil:
		return formatPrice(*r.Min) + " - " + formatPrice(*r.Max)
	case r.Min != nil:
		return ">= " + formatPrice(*r.Min)
	case r.Max != nil:
		return "<= " + formatPrice(*r.Max)
	}
	return "-"
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// writeTable pads columns by display width so wide runes line up.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(runewidth.Truncate(cell, maxCellWidth, "…")); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			c = runewidth.Truncate(c, maxCellWidth, "…")
			if i == len(cells)-1 {
				parts[i] = c
			} else {
				parts[i] = runewidth.FillRight(c, widths[i])
			}
		}
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}

	line(headers)
	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("-", widths[i])
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

func writeKeywords(w io.Writer, kw model.ExtractedKeywords) {
	fmt.Fprintf(w, "categories: %s\n", joinOrDash(kw.Categories))
	fmt.Fprintf(w, "brands:     %s\n", joinOrDash(kw.Brands))
	fmt.Fprintf(w, "colors:     %s\n", joinOrDash(kw.Colors))
	fmt.Fprintf(w, "sizes:      %s\n", joinOrDash(kw.Sizes))
	fmt.Fprintf(w, "price:      %s\n", formatRange(kw.PriceRange))
	if kw.PriceModifier != "" {
		fmt.Fprintf(w, "budget:     %s\n", kw.PriceModifier)
	}
	if kw.Gender != "" {
		fmt.Fprintf(w, "gender:     %s\n", kw.Gender)
	}
	fmt.Fprintf(w, "keywords:   %s\n", joinOrDash(kw.RawKeywords))
}

func writeRecommendations(w io.Writer, recs []api.RecommendationView) {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			r.ProductID,
			r.Title,
			formatPrice(r.Price),
			fmt.Sprintf("%d", r.Score),
			strings.Join(r.MatchReasons, "; "),
		}
	}
	writeTable(w, []string{"#", "ID", "TITLE", "PRICE", "SCORE", "WHY"}, rows)
}

func writeSendResponse(w io.Writer, r api.SendResponse) {
	fmt.Fprintln(w, r.Message)
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w)
		writeRecommendations(w, r.Recommendations)
	}
	if len(r.QuickReplies) > 0 {
		fmt.Fprintf(w, "\n[%s]\n", strings.Join(r.QuickReplies, "] ["))
	}
}
