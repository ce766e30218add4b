package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/richtext"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
)

// chatReply is the JSON shape of an assistant answer.
type chatReply struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	HTML      string    `json:"html,omitempty"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:     "chat [message...]",
		Aliases: []string{"ask"},
		Short:   "Ask the planning assistant",
		Long: `Send a message to the planning assistant and print its reply.

The message is read from the arguments, or from stdin when it is piped.
Without either in an interactive terminal, a conversation starts; an
empty line ends it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" && !isTerminal(os.Stdin) {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read message: %w", err)
				}
				message = strings.TrimSpace(string(data))
			}
			if message != "" {
				reply, err := askAssistant(cmd.Context(), app, message)
				if err != nil {
					return err
				}
				return writeReply(app, reply, html)
			}

			if !app.IsInteractive() {
				return output.ErrUsageHint("Message required", "Usage: planner chat <message>")
			}
			return runConversation(cmd.Context(), app, cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Include the reply as HTML")
	return cmd
}

// askAssistant sends message and waits for the reply. A failed call still
// yields a reply: the localized apology.
func askAssistant(ctx context.Context, app *appctx.App, message string) (models.ChatReply, error) {
	var reply models.ChatReply
	send := func() error {
		c, err := app.Dispatch(ctx, state.SendBotMessage{Message: models.ChatMessage{
			Message:   message,
			Sender:    models.SenderUser,
			Timestamp: time.Now(),
		}}, state.KindSendBotMessageDone)
		if err != nil {
			return err
		}
		reply = c.Action.(state.SendBotMessageDone).Reply
		return nil
	}

	if app.IsInteractive() {
		return reply, tui.Spin("Thinking...", send)
	}
	return reply, send()
}

func writeReply(app *appctx.App, reply models.ChatReply, html bool) error {
	if app.IsInteractive() {
		_, err := fmt.Fprintln(app.Output.Writer(), renderReply(reply.Message))
		return err
	}

	data := chatReply{
		ID:        reply.ID,
		Message:   reply.Message,
		Sender:    string(reply.Sender),
		Timestamp: reply.Timestamp,
	}
	if html {
		data.HTML = richtext.ToHTML(reply.Message)
	}
	return app.OK(data, output.WithSummary("Assistant replied"))
}

func renderReply(message string) string {
	if !richtext.IsMarkdown(message) {
		return message
	}
	return richtext.RenderOrPlain(message, richtext.DefaultWidth)
}

// runConversation reads one message per line until EOF or an empty line.
func runConversation(ctx context.Context, app *appctx.App, in io.Reader) error {
	out := app.Output.Writer()
	styles := tui.NewStyles()

	fmt.Fprintln(out, styles.BotBubble.Render(state.Greeting))
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, styles.Muted.Render("> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			return nil
		}

		reply, err := askAssistant(ctx, app, message)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styles.BotBubble.Render(renderReply(reply.Message)))
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
