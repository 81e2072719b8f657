package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"pathvest-web/internal/models"
	"pathvest-web/internal/widget"
)

type scriptedReplier struct {
	replies map[string]string
}

func (s scriptedReplier) Reply(ctx context.Context, userInput string, history []models.ChatMessage) (string, error) {
	reply, ok := s.replies[userInput]
	if !ok {
		return "", errors.New("API error: 500")
	}
	return reply, nil
}

func TestRun(t *testing.T) {
	w := widget.New(scriptedReplier{replies: map[string]string{
		"Hello": "Hi there\n- Save\n```",
	}})

	in := strings.NewReader("Hello\n   \nTest\n")
	var out bytes.Buffer

	if err := run(context.Background(), w, in, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"  Hi there\n", "    - Save\n", "  | \n", "! API error: 500\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}

	if n := len(w.Messages()); n != 3 {
		t.Fatalf("expected 3 messages (blank line ignored), got %d", n)
	}
}

func TestRun_LeavesLoggerAlone(t *testing.T) {
	var logs bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(prev) })

	w := widget.New(scriptedReplier{})
	var out bytes.Buffer
	if err := run(context.Background(), w, strings.NewReader("Test\n"), &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if log.Writer() != &logs {
		t.Fatalf("expected run to keep the caller's log output")
	}
	if !strings.Contains(logs.String(), "API error: 500") {
		t.Fatalf("expected failed turn to reach the caller's logger, got %q", logs.String())
	}
}
