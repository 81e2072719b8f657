package widget

import "testing"

func TestFormatLines(t *testing.T) {
	content := "Here is a plan:\n• Save monthly\n  - Diversify\n```go\nfmt.Println(1)\n```\nDone"

	want := []Line{
		{Kind: LineText, Text: "Here is a plan:"},
		{Kind: LineBullet, Text: "• Save monthly"},
		{Kind: LineBullet, Text: "  - Diversify"},
		{Kind: LineCode, Text: "go"},
		{Kind: LineText, Text: "fmt.Println(1)"},
		{Kind: LineCode, Text: ""},
		{Kind: LineText, Text: "Done"},
	}

	got := FormatLines(content)
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLineKindString(t *testing.T) {
	tests := map[LineKind]string{
		LineText:   "text",
		LineBullet: "bullet",
		LineCode:   "code",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}
