package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"pathvest-web/internal/config"
	"pathvest-web/internal/services"
	"pathvest-web/internal/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("✗ Configuration invalid: %v", err)
	}

	upstream := flag.String("url", cfg.UpstreamURL, "Chat service endpoint")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Failed turns are printed inline; the widget's own log line would
	// interleave with the prompt.
	log.SetOutput(io.Discard)

	w := widget.New(services.NewChatbotService(*upstream, cfg.UpstreamTimeout))
	fmt.Println("Ask PathVest AI Anything (Ctrl-D to quit)")

	if err := run(ctx, w, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "chat-cli: %v\n", err)
		os.Exit(1)
	}
}

// run feeds each input line to the widget and prints the outcome of the turn.
func run(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		before := len(w.Messages())
		err := w.Submit(ctx, scanner.Text())
		switch {
		case errors.Is(err, widget.ErrEmptyMessage):
			continue
		case err != nil:
			fmt.Fprintf(out, "! %s\n", w.Err())
			continue
		}

		msgs := w.Messages()
		for _, m := range msgs[before:] {
			if m.Role != widget.RoleBot {
				continue
			}
			printReply(out, m.Content)
		}
	}
}

func printReply(out io.Writer, content string) {
	for _, line := range widget.FormatLines(content) {
		switch line.Kind {
		case widget.LineBullet:
			fmt.Fprintf(out, "    %s\n", line.Text)
		case widget.LineCode:
			fmt.Fprintf(out, "  | %s\n", line.Text)
		default:
			fmt.Fprintf(out, "  %s\n", line.Text)
		}
	}
}
