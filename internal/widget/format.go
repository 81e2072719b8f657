package widget

import "strings"

type LineKind int

const (
	LineText LineKind = iota
	LineBullet
	LineCode
)

func (k LineKind) String() string {
	switch k {
	case LineBullet:
		return "bullet"
	case LineCode:
		return "code"
	default:
		return "text"
	}
}

type Line struct {
	Kind LineKind
	Text string
}

const codeFence = "```"

// FormatLines splits a bot reply into display lines. Bullets keep their
// marker; code lines lose every fence.
func FormatLines(content string) []Line {
	raw := strings.Split(content, "\n")
	lines := make([]Line, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-"):
			lines = append(lines, Line{Kind: LineBullet, Text: line})
		case strings.HasPrefix(trimmed, codeFence):
			lines = append(lines, Line{Kind: LineCode, Text: strings.ReplaceAll(line, codeFence, "")})
		default:
			lines = append(lines, Line{Kind: LineText, Text: line})
		}
	}
	return lines
}
