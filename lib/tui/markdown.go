// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// The parser configuration never changes, and goldmark keeps
// per-parse state in the reader, so one instance serves every call.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func parser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// wrapBreakpoints are the characters besides whitespace where long
// lines may break.
const wrapBreakpoints = " ,.;-+|"

// RenderMarkdown renders markdown as styled terminal text wrapped to
// width columns. Soft line breaks become spaces so hard-wrapped source
// reflows. Fenced code blocks with a language are highlighted.
func RenderMarkdown(input string, theme Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	source := []byte(SafeText(input))
	document := parser().Parser().Parse(text.NewReader(source))

	// Force ANSI256: this output always goes to a terminal view, and
	// auto-detection yields uncolored output when stderr is not a TTY.
	renderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)

	writer := &markdownWriter{source: source, theme: theme, renderer: renderer}
	return strings.TrimRight(writer.container(document, width, false), "\n")
}

type markdownWriter struct {
	source   []byte
	theme    Theme
	renderer *lipgloss.Renderer
}

func (writer *markdownWriter) style() lipgloss.Style {
	return writer.renderer.NewStyle()
}

// container renders the block children of node. Tight containers
// separate blocks with a single newline.
func (writer *markdownWriter) container(node ast.Node, width int, tight bool) string {
	var blocks []string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if rendered := writer.block(child, width); rendered != "" {
			blocks = append(blocks, rendered)
		}
	}
	separator := "\n\n"
	if tight {
		separator = "\n"
	}
	return strings.Join(blocks, separator)
}

func (writer *markdownWriter) block(node ast.Node, width int) string {
	switch node := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return ansi.Wrap(writer.inlines(node, inlineStyle{}), width, wrapBreakpoints)

	case *ast.Heading:
		content := ansi.Strip(writer.inlines(node, inlineStyle{}))
		style := writer.style().Bold(true).Foreground(writer.theme.NormalText)
		if node.Level <= 2 {
			style = style.Foreground(writer.theme.HeaderForeground)
		}
		return ansi.Wrap(style.Render(content), width, wrapBreakpoints)

	case *ast.FencedCodeBlock:
		return writer.code(writer.lines(node), string(node.Language(writer.source)))

	case *ast.CodeBlock:
		return writer.code(writer.lines(node), "")

	case *ast.Blockquote:
		bar := writer.style().Foreground(writer.theme.BorderColor).Render("│ ")
		return prefixLines(writer.container(node, width-2, false), bar, bar)

	case *ast.List:
		return writer.list(node, width)

	case *ast.ThematicBreak:
		rule := strings.Repeat("─", min(width, 40))
		return writer.style().Foreground(writer.theme.BorderColor).Render(rule)

	case *ast.HTMLBlock:
		return ansi.Wrap(strings.TrimSpace(PlainText(writer.lines(node))), width, wrapBreakpoints)

	default:
		if node.Kind() == extast.KindTable {
			return writer.table(node)
		}
		return writer.container(node, width, false)
	}
}

func (writer *markdownWriter) list(list *ast.List, width int) string {
	number := list.Start
	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		bullet := "• "
		if list.IsOrdered() {
			bullet = fmt.Sprintf("%d. ", number)
			number++
		}
		bulletWidth := ansi.StringWidth(bullet)
		body := writer.container(item, width-bulletWidth, list.IsTight)
		styled := writer.style().Foreground(writer.theme.FaintText).Render(bullet)
		items = append(items, prefixLines(body, styled, strings.Repeat(" ", bulletWidth)))
	}
	separator := "\n"
	if !list.IsTight {
		separator = "\n\n"
	}
	return strings.Join(items, separator)
}

// table renders a GFM table as aligned plain columns.
func (writer *markdownWriter) table(node ast.Node) string {
	var rows [][]string
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, ansi.Strip(writer.inlines(cell, inlineStyle{})))
		}
		rows = append(rows, cells)
	}
	widths := map[int]int{}
	for _, cells := range rows {
		for index, cell := range cells {
			widths[index] = max(widths[index], ansi.StringWidth(cell))
		}
	}
	var lines []string
	for rowIndex, cells := range rows {
		padded := make([]string, len(cells))
		for index, cell := range cells {
			padded[index] = cell + strings.Repeat(" ", widths[index]-ansi.StringWidth(cell))
		}
		line := strings.Join(padded, "  ")
		if rowIndex == 0 {
			line = writer.style().Bold(true).Foreground(writer.theme.HeaderForeground).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (writer *markdownWriter) lines(node ast.Node) string {
	var builder strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		builder.Write(segment.Value(writer.source))
	}
	return strings.TrimRight(builder.String(), "\n")
}

// code highlights with chroma when the language is known; anything
// else renders faint.
func (writer *markdownWriter) code(code, language string) string {
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			return strings.TrimRight(buffer.String(), "\n")
		}
	}
	faint := writer.style().Foreground(writer.theme.FaintText)
	lines := strings.Split(code, "\n")
	for index, line := range lines {
		lines[index] = faint.Render(line)
	}
	return strings.Join(lines, "\n")
}

type inlineStyle struct {
	bold, italic, strikethrough bool
}

func (writer *markdownWriter) render(content string, state inlineStyle) string {
	style := writer.style().Foreground(writer.theme.NormalText).
		Bold(state.bold).
		Italic(state.italic).
		Strikethrough(state.strikethrough)
	return style.Render(content)
}

// inlines renders the inline children of node.
func (writer *markdownWriter) inlines(node ast.Node, state inlineStyle) string {
	var builder strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		builder.WriteString(writer.inline(child, state))
	}
	return builder.String()
}

func (writer *markdownWriter) inline(node ast.Node, state inlineStyle) string {
	switch node := node.(type) {
	case *ast.Text:
		content := writer.render(string(node.Segment.Value(writer.source)), state)
		switch {
		case node.HardLineBreak():
			content += "\n"
		case node.SoftLineBreak():
			content += " "
		}
		return content

	case *ast.String:
		return writer.render(string(node.Value), state)

	case *ast.Emphasis:
		if node.Level >= 2 {
			state.bold = true
		} else {
			state.italic = true
		}
		return writer.inlines(node, state)

	case *ast.CodeSpan:
		content := ansi.Strip(writer.inlines(node, inlineStyle{}))
		return writer.style().Foreground(writer.theme.MatchForeground).Render(content)

	case *ast.Link:
		label := writer.inlines(node, state)
		destination := string(node.Destination)
		if destination == "" || ansi.Strip(label) == destination {
			return writer.style().Foreground(writer.theme.LinkForeground).Underline(true).Render(ansi.Strip(label))
		}
		return label + writer.style().Foreground(writer.theme.FaintText).Render(" ("+destination+")")

	case *ast.AutoLink:
		return writer.style().Foreground(writer.theme.LinkForeground).Underline(true).Render(string(node.URL(writer.source)))

	case *ast.Image:
		return writer.style().Foreground(writer.theme.FaintText).Render("[image: " + ansi.Strip(writer.inlines(node, state)) + "]")

	case *ast.RawHTML:
		return ""

	default:
		if node.Kind() == extast.KindStrikethrough {
			state.strikethrough = true
		}
		if node.Kind() == extast.KindTaskCheckBox {
			if node.(*extast.TaskCheckBox).IsChecked {
				return writer.style().Foreground(writer.theme.SuccessText).Render("[x]") + " "
			}
			return writer.render("[ ] ", state)
		}
		return writer.inlines(node, state)
	}
}

// prefixLines prefixes the first line of content with first and every
// later line with rest.
func prefixLines(content, first, rest string) string {
	lines := strings.Split(content, "\n")
	for index, line := range lines {
		if index == 0 {
			lines[index] = first + line
		} else {
			lines[index] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
