package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"yt-seo-studio/assistant"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the SEO assistant",
	Long:  `Interactive conversation with the chat model. /reset clears the history, /exit quits.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		return chatLoop(cmd.Context(), assistant.New(backend, cfg, log), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func chatLoop(ctx context.Context, a *assistant.Assistant, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "/exit", "/quit":
			return nil
		case "/reset":
			a.Reset()
			fmt.Fprintln(out, "History cleared.")
		default:
			reply, err := a.Send(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				break
			}
			fmt.Fprintln(out, reply)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
