// Package web renders the marketing page and its chat widget.
package web

import (
	"embed"
	"html/template"
	"io"

	"pathvest-web/internal/widget"
)

//go:embed templates/*.html
var templateFS embed.FS

var Placeholders = []string{
	"What's the best way to start investing?",
	"How do I diversify my investment portfolio?",
	"Can you explain the difference between stocks and bonds?",
	"What are the tax implications of selling investments?",
	"How can I plan for retirement using PathVest?",
}

type MessageView struct {
	ID      string
	IsUser  bool
	Content string
	Lines   []widget.Line
}

type PageData struct {
	Title       string
	Messages    []MessageView
	Typing      bool
	Error       string
	Placeholder string
}

// NewPageData turns a widget snapshot into template data. Bot replies are
// pre-split into formatted lines; user messages stay verbatim.
func NewPageData(s widget.State) PageData {
	views := make([]MessageView, 0, len(s.Messages))
	for _, m := range s.Messages {
		v := MessageView{ID: m.ID, IsUser: m.Role == widget.RoleUser, Content: m.Content}
		if !v.IsUser {
			v.Lines = widget.FormatLines(m.Content)
		}
		views = append(views, v)
	}

	return PageData{
		Title:       "Ask PathVest AI Anything",
		Messages:    views,
		Typing:      s.Typing,
		Error:       s.Error,
		Placeholder: Placeholders[0],
	}
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", data)
}
