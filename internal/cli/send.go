package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/api"
)

func init() {
	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message to a conversation",
		Long: "Send one user message and print the assistant reply with recommendations.\n" +
			"Candidates come from --catalog unless --request supplies a full SendRequest JSON (\"-\" reads stdin).",
		Run: runSend,
	}

	cmd.Flags().StringP("conversation", "c", "", "Conversation id")
	cmd.Flags().String("request", "", "SendRequest JSON file, or - for stdin")

	RootCmd.AddCommand(cmd)
}

func runSend(cmd *cobra.Command, args []string) {
	convID, _ := cmd.Flags().GetString("conversation")
	reqPath, _ := cmd.Flags().GetString("request")

	var req api.SendRequest
	if reqPath != "" {
		if err := readRequest(reqPath, &req); err != nil {
			exitErr("read request", err)
		}
	}
	if convID != "" {
		req.ConversationID = convID
	}
	if len(args) > 0 {
		req.Message = strings.Join(args, " ")
	}
	if req.ConversationID == "" {
		exitErr("send", errors.New("conversation id is required (--conversation or request body)"))
	}
	if strings.TrimSpace(req.Message) == "" {
		exitErr("send", errors.New("message is required"))
	}

	products := req.Products
	userCtx := req.UserContext
	if products == nil || userCtx == nil {
		cat, err := loadCatalog(cmd)
		if err != nil {
			exitErr("load catalog", err)
		}
		if products == nil {
			products = cat.Products
		}
		if userCtx == nil {
			uc := cat.UserContext()
			userCtx = &uc
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	resp, err := newManager(s).ProcessMessage(cmd.Context(), req.ConversationID, req.Message, products, *userCtx)
	if err != nil {
		exitErr("send", err)
	}

	view := api.NewSendResponse(resp)
	if textFormat() {
		writeSendResponse(os.Stdout, view)
		return
	}
	printJSON(view)
}

func readRequest(path string, req *api.SendRequest) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(req)
}
