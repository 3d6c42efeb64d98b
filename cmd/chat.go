package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/kayz/dobby/internal/logger"
)

var sessionName string

func init() {
	rootCmd.Flags().StringVar(&sessionName, "session", "default", "Conversation to resume")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	sess, err := a.openSession(cfg, sessionName)
	if err != nil {
		return err
	}
	defer sess.Close()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logger.Warn("[Chat] Markdown rendering disabled: %v", err)
		renderer = nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Dobby is ready. Type /exit to quit, /context to show the active context.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit", "exit", "quit":
			fmt.Fprintln(out, "See you later!")
			return nil
		case "/context":
			if c := sess.agent.ActiveContext(); c != "" {
				fmt.Fprintln(out, c)
			} else {
				fmt.Fprintln(out, "(no active context)")
			}
			continue
		}

		reply := sess.agent.Respond(ctx, line)
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprintf(out, "\n[%s · %.1fs]\n", reply.Tool, reply.Duration.Seconds())
		text := reply.Text
		if renderer != nil {
			if rendered, err := renderer.Render(text); err == nil {
				text = rendered
			}
		}
		fmt.Fprintln(out, text)
	}
	return scanner.Err()
}
