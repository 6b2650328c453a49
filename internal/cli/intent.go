package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/intent"
)

func init() {
	cmd := &cobra.Command{
		Use:   "intent [message]",
		Short: "Classify a message",
		Long:  "Classify a message into a shopping intent. --all lists every matching intent by priority.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runIntent,
	}

	cmd.Flags().Bool("all", false, "Return every matching intent")

	RootCmd.AddCommand(cmd)
}

func runIntent(cmd *cobra.Command, args []string) {
	all, _ := cmd.Flags().GetBool("all")
	msg := strings.Join(args, " ")

	results := []intent.Result{intent.DetectIntent(msg)}
	if all {
		results = intent.DetectAllIntents(msg)
	}

	if textFormat() {
		rows := make([][]string, len(results))
		for i, r := range results {
			rows[i] = []string{string(r.Intent), fmt.Sprintf("%d", r.Confidence), r.ExtractedText}
		}
		writeTable(os.Stdout, []string{"INTENT", "CONFIDENCE", "MATCHED"}, rows)
		return
	}
	if all {
		printJSON(results)
		return
	}
	printJSON(results[0])
}
