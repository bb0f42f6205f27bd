package tui

import (
	"context"
	"strings"

	"postprep-cli/internal/api"
	"postprep-cli/internal/app"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	uploadTabPDF = iota
	uploadTabText
)

type uploadResultMsg struct {
	article app.Article
	err     error
}

// uploadModel is the home view: send a PDF path or raw text off for
// analysis and show the projection that comes back.
type uploadModel struct {
	theme     Theme
	client    *api.Client
	tab       int
	path      textinput.Model
	text      textarea.Model
	focused   bool
	uploading bool
	errMsg    string
	result    *app.Article
}

func newUploadModel(theme Theme, client *api.Client) uploadModel {
	path := textinput.New()
	path.Placeholder = "/path/to/document.pdf"
	path.CharLimit = 512

	text := textarea.New()
	text.Placeholder = "Paste your raw text content here..."
	text.CharLimit = 0
	text.SetHeight(8)
	text.ShowLineNumbers = false

	return uploadModel{theme: theme, client: client, path: path, text: text}
}

func (m uploadModel) editing() bool { return m.focused }

func (m uploadModel) blur() uploadModel {
	m.focused = false
	m.path.Blur()
	m.text.Blur()
	return m
}

func (m uploadModel) focus() (uploadModel, tea.Cmd) {
	m.focused = true
	if m.tab == uploadTabPDF {
		return m, m.path.Focus()
	}
	return m, m.text.Focus()
}

func (m uploadModel) Update(msg tea.Msg) (uploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.uploading {
			return m, nil
		}
		s := msg.String()
		if !m.focused {
			switch s {
			case "tab":
				m.tab = (m.tab + 1) % 2
				m.errMsg = ""
				return m, nil
			case "i", "enter":
				return m.focus()
			}
			return m, nil
		}
		switch s {
		case "esc":
			return m.blur(), nil
		case "enter":
			if m.tab == uploadTabPDF {
				return m.submit()
			}
		case "ctrl+s":
			return m.submit()
		}
	case uploadResultMsg:
		m.uploading = false
		if msg.err != nil {
			m.errMsg = messageFromError(msg.err, "Upload failed")
			return m, nil
		}
		m.errMsg = ""
		a := msg.article
		m.result = &a
		m.path.SetValue("")
		m.text.SetValue("")
		return m.blur(), nil
	}

	var cmd tea.Cmd
	if m.focused {
		if m.tab == uploadTabPDF {
			m.path, cmd = m.path.Update(msg)
		} else {
			m.text, cmd = m.text.Update(msg)
		}
	}
	return m, cmd
}

// submit blocks empty input client-side; no request leaves the process.
func (m uploadModel) submit() (uploadModel, tea.Cmd) {
	client := m.client
	if m.tab == uploadTabPDF {
		path := strings.TrimSpace(m.path.Value())
		if path == "" {
			m.errMsg = "Select a PDF first"
			return m, nil
		}
		m.uploading = true
		m.errMsg = ""
		return m, func() tea.Msg {
			article, err := client.UploadPDF(context.Background(), path)
			return uploadResultMsg{article: article, err: err}
		}
	}

	text := strings.TrimSpace(m.text.Value())
	if text == "" {
		m.errMsg = "Paste some text first"
		return m, nil
	}
	m.uploading = true
	m.errMsg = ""
	return m, func() tea.Msg {
		article, err := client.UploadText(context.Background(), text)
		return uploadResultMsg{article: article, err: err}
	}
}

func (m uploadModel) View(width int, spin string) string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.PaneTitle.Render("Process New Document"))
	b.WriteString("\n\n")

	pdfTab := "  Upload PDF  "
	textTab := "  Paste Text  "
	if m.tab == uploadTabPDF {
		b.WriteString(t.Label.Render(pdfTab) + t.Muted.Render(textTab))
	} else {
		b.WriteString(t.Muted.Render(pdfTab) + t.Label.Render(textTab))
	}
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(t.ErrorText.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	box := t.InputBox
	if m.focused {
		box = t.InputBoxF
	}
	if m.tab == uploadTabPDF {
		b.WriteString(box.Width(min(width-6, 70)).Render(m.path.View()))
		b.WriteString("\n")
		b.WriteString(t.Muted.Render("Supported: PDF (max 10MB)"))
	} else {
		m.text.SetWidth(min(width-8, 70))
		b.WriteString(box.Render(m.text.View()))
	}
	b.WriteString("\n\n")

	switch {
	case m.uploading:
		b.WriteString(t.Spinner.Render(spin) + t.Muted.Render(" processing..."))
	case m.focused && m.tab == uploadTabPDF:
		b.WriteString(t.Muted.Render("enter start analysis | esc done editing"))
	case m.focused:
		b.WriteString(t.Muted.Render("ctrl+s analyze text | esc done editing"))
	default:
		b.WriteString(t.Muted.Render("tab switch input | i edit"))
	}

	out := b.String()
	if m.result != nil {
		out += "\n\n" + renderAnalysisCard(t, *m.result, width)
	}
	return out
}

// renderAnalysisCard shows an article projection with its structured
// analysis output, shared by the upload and articles views.
func renderAnalysisCard(t Theme, a app.Article, width int) string {
	var b strings.Builder
	b.WriteString(t.PaneTitle.Render("Analysis Result"))
	b.WriteString("  ")
	b.WriteString(t.statusStyle(string(a.Status)).Render(string(a.Status)))
	b.WriteString("\n\n")

	if a.Output == nil {
		b.WriteString(t.Muted.Render("Processing initiated... Check \"My Articles\" shortly for full results."))
		return t.Pane.Width(min(width-2, 76)).Render(b.String())
	}

	b.WriteString(t.Label.Render("TITLE"))
	b.WriteString("\n")
	title := a.Output.Title
	if title == "" {
		title = "No Title Extracted"
	}
	b.WriteString(t.Value.Render(title))
	b.WriteString("\n\n")

	if a.Output.Summary != "" {
		b.WriteString(t.Label.Render("SUMMARY"))
		b.WriteString("\n")
		b.WriteString(t.Value.Render(a.Output.Summary))
		b.WriteString("\n\n")
	}

	if len(a.Output.Keywords) > 0 {
		b.WriteString(t.Label.Render("KEYWORDS"))
		b.WriteString("\n")
		tags := make([]string, 0, len(a.Output.Keywords))
		for _, k := range a.Output.Keywords {
			tags = append(tags, t.Keyword.Render("#"+k))
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n\n")
	}

	if a.Output.SEOTitle != "" {
		b.WriteString(t.Label.Render("SEO TITLE"))
		b.WriteString("\n")
		b.WriteString(t.Value.Render(a.Output.SEOTitle))
		b.WriteString("\n\n")
	}

	if len(a.Output.Categories) > 0 {
		b.WriteString(t.Label.Render("CATEGORIES"))
		b.WriteString("\n")
		cats := make([]string, 0, len(a.Output.Categories))
		for _, c := range a.Output.Categories {
			cats = append(cats, t.Category.Render(c))
		}
		b.WriteString(strings.Join(cats, ", "))
		b.WriteString("\n")
	}

	return t.Pane.Width(min(width-2, 76)).Render(strings.TrimRight(b.String(), "\n"))
}
