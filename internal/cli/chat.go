package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rcliao/shop-recommender/internal/api"
	"github.com/rcliao/shop-recommender/internal/catalog"
	"github.com/rcliao/shop-recommender/internal/keywords"
	"github.com/rcliao/shop-recommender/internal/model"
	"github.com/rcliao/shop-recommender/internal/session"
)

const chatPrompt = "you> "

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the shopping assistant",
		Long: "Interactive chat against --catalog. Type /context, /history, /new or exit.\n" +
			"Reads lines from stdin when it is not a terminal.",
		Run: runChat,
	}

	cmd.Flags().StringP("conversation", "c", "", "Resume a conversation")
	cmd.Flags().StringP("user", "u", "", "Shopper id for a new conversation")

	RootCmd.AddCommand(cmd)
}

type chatStyles struct {
	assistant lipgloss.Style
	title     lipgloss.Style
	reason    lipgloss.Style
	reply     lipgloss.Style
	meta      lipgloss.Style
}

func newChatStyles(color bool) chatStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return chatStyles{plain, plain, plain, plain, plain}
	}
	return chatStyles{
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		title:     lipgloss.NewStyle().Bold(true),
		reason:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		reply:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		meta:      lipgloss.NewStyle().Faint(true),
	}
}

// chatSession is one REPL bound to a conversation.
type chatSession struct {
	manager  *session.Manager
	products []model.Product
	userCtx  model.UserContext
	userID   string
	convID   string
	out      io.Writer
	styles   chatStyles
}

func runChat(cmd *cobra.Command, args []string) {
	convID, _ := cmd.Flags().GetString("conversation")
	userID, _ := cmd.Flags().GetString("user")

	cat, err := loadCatalog(cmd)
	if err != nil {
		exitErr("load catalog", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	cs := newChatSession(newManager(s), cat, userID, os.Stdout, interactive && term.IsTerminal(int(os.Stdout.Fd())))

	ctx := cmd.Context()
	if convID != "" {
		if _, ok, err := cs.manager.GetConversation(ctx, convID); err != nil {
			exitErr("get", err)
		} else if !ok {
			exitErr("get", fmt.Errorf("%w: %s", session.ErrConversationNotFound, convID))
		}
		cs.convID = convID
		fmt.Fprintln(cs.out, cs.styles.meta.Render("resumed "+convID))
	} else if err := cs.start(ctx); err != nil {
		exitErr("start", err)
	}

	if interactive {
		err = cs.readlineLoop(ctx)
	} else {
		err = cs.scanLoop(ctx, os.Stdin)
	}
	if err != nil {
		exitErr("chat", err)
	}
}

func newChatSession(m *session.Manager, cat *catalog.Catalog, userID string, out io.Writer, color bool) *chatSession {
	return &chatSession{
		manager:  m,
		products: cat.Products,
		userCtx:  cat.UserContext(),
		userID:   userID,
		out:      out,
		styles:   newChatStyles(color),
	}
}

func (cs *chatSession) start(ctx context.Context) error {
	conv, err := cs.manager.StartConversation(ctx, cs.userID)
	if err != nil {
		return err
	}
	cs.convID = conv.ID
	fmt.Fprintln(cs.out, cs.styles.meta.Render("conversation "+conv.ID))
	cs.render(api.NewSendResponse(ptr(cs.manager.Welcome())))
	return nil
}

func (cs *chatSession) readlineLoop(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".shop-recommender_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return cs.scanLoop(ctx, os.Stdin)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := cs.handle(ctx, line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (cs *chatSession) scanLoop(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		done, err := cs.handle(ctx, sc.Text())
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return sc.Err()
}

// handle processes one input line and reports whether the user asked to leave.
func (cs *chatSession) handle(ctx context.Context, line string) (bool, error) {
	input := strings.TrimSpace(line)
	switch input {
	case "":
		return false, nil
	case "exit", "quit", "/exit", "/quit":
		return true, nil
	case "/new":
		return false, cs.start(ctx)
	case "/context":
		kw, _, err := cs.manager.AccumulatedKeywords(ctx, cs.convID)
		if err != nil {
			return false, err
		}
		writeKeywords(cs.out, kw)
		fmt.Fprintf(cs.out, "query:      %s\n", keywords.BuildSearchQuery(kw))
		return false, nil
	case "/history":
		msgs, err := cs.manager.History(ctx, cs.convID, 0)
		if err != nil {
			return false, err
		}
		for _, e := range api.NewHistoryEntries(msgs) {
			fmt.Fprintf(cs.out, "%s %s\n", cs.styles.meta.Render(string(e.SenderType)+":"), e.Content)
		}
		return false, nil
	}

	resp, err := cs.manager.ProcessMessage(ctx, cs.convID, input, cs.products, cs.userCtx)
	if err != nil {
		return false, err
	}
	cs.render(api.NewSendResponse(resp))
	return false, nil
}

func (cs *chatSession) render(r api.SendResponse) {
	fmt.Fprintf(cs.out, "%s %s\n", cs.styles.assistant.Render("assistant>"), r.Message)
	for i, rec := range r.Recommendations {
		fmt.Fprintf(cs.out, "  %d. %s  %s  (%d)\n", i+1, cs.styles.title.Render(rec.Title), formatPrice(rec.Price), rec.Score)
		if len(rec.MatchReasons) > 0 {
			fmt.Fprintf(cs.out, "     %s\n", cs.styles.reason.Render(strings.Join(rec.MatchReasons, " · ")))
		}
	}
	if len(r.QuickReplies) > 0 {
		replies := make([]string, len(r.QuickReplies))
		for i, q := range r.QuickReplies {
			replies[i] = cs.styles.reply.Render("[" + q + "]")
		}
		fmt.Fprintln(cs.out, "  "+strings.Join(replies, " "))
	}
}

func ptr[T any](v T) *T { return &v }
