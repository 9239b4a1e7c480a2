// Package format turns HTML email bodies into readable plain text.
package format

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTML2Text extracts the visible text of an HTML document. Script and style
// content is dropped, block elements and line breaks become newlines, and
// runs of blank lines are collapsed. On a parse failure the raw input is
// returned unchanged.
func HTML2Text(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	var buf bytes.Buffer
	walkText(doc, &buf)

	return collapseBlankLines(buf.String())
}

func walkText(n *html.Node, buf *bytes.Buffer) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "title":
			return
		case "br":
			buf.WriteByte('\n')
		case "li":
			buf.WriteString("\n- ")
		}
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if buf.Len() > 0 && !endsWithSpace(buf) {
				buf.WriteByte(' ')
			}
			buf.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, buf)
	}

	if n.Type == html.ElementNode && isBlockElement(n.Data) {
		buf.WriteByte('\n')
	}
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "tr", "table", "ul", "ol", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "pre", "section", "article":
		return true
	}
	return false
}

func endsWithSpace(buf *bytes.Buffer) bool {
	b := buf.Bytes()
	last := b[len(b)-1]
	return last == ' ' || last == '\n'
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
