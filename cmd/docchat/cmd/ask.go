package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/docchat/internal/app"
	"github.com/entrepeneur4lyf/docchat/internal/conversation"
	"github.com/entrepeneur4lyf/docchat/internal/markdown"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
	"github.com/spf13/cobra"
)

var rawAnswer bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the current document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		return withApp(cmd.Context(), func(a *app.App) error {
			coord := a.Coordinator
			if !coord.State().HasSession() {
				return errors.New("no document uploaded yet, run: docchat upload <file>")
			}

			answer, err := coord.Send(cmd.Context(), question)
			if err != nil {
				if errors.Is(err, conversation.ErrEmptyQuery) {
					return errors.New("the question is empty")
				}
				if msg := coord.State().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if rawAnswer {
				fmt.Fprintln(out, answer.Content)
				return nil
			}

			renderer, err := markdown.NewRenderer(markdown.Config{
				Width: 80,
				Style: themes.Get(a.Config.TUI.Theme).MarkdownStyle(),
			})
			if err != nil {
				fmt.Fprintln(out, answer.Content)
				return nil
			}
			fmt.Fprintln(out, renderer.RenderOrPlain(answer.Content))
			return nil
		})
	},
}

func init() {
	askCmd.Flags().BoolVar(&rawAnswer, "raw", false, "Print the answer without markdown rendering")
}
