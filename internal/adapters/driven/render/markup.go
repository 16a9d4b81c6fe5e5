package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

// Sentinels that stand in for highlight markers until whitespace is folded.
const (
	markOpen  = "\x00"
	markClose = "\x01"
)

// blockElements end a line of text. Every other element is inline and
// leaves nothing behind.
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// Markup converts LMS text to terminal text. Segments wrapped in the
// highlight tag are styled; every other tag is dropped and entities decoded.
func Markup(s, tag string, highlight lipgloss.Style) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	writeText(&b, doc.Find("body").Contents(), strings.ToLower(tag))
	text := strings.Join(strings.Fields(b.String()), " ")

	var out strings.Builder
	for {
		start := strings.Index(text, markOpen)
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], markClose)
		if end < 0 {
			break
		}
		end += start
		out.WriteString(text[:start])
		if marked := text[start+len(markOpen) : end]; marked != "" {
			out.WriteString(highlight.Render(marked))
		}
		text = text[end+len(markClose):]
	}
	out.WriteString(text)

	result := strings.ReplaceAll(out.String(), markOpen, "")
	return strings.TrimSpace(strings.ReplaceAll(result, markClose, ""))
}

// writeText appends the text of nodes to b. Highlight elements are wrapped
// in the marker sentinels and block elements are surrounded by spaces.
func writeText(b *strings.Builder, nodes *goquery.Selection, tag string) {
	nodes.Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
		case html.ElementNode:
			switch {
			case tag != "" && node.Data == tag:
				b.WriteString(markOpen)
				writeText(b, sel.Contents(), tag)
				b.WriteString(markClose)
			case blockElements[node.Data]:
				b.WriteString(" ")
				writeText(b, sel.Contents(), tag)
				b.WriteString(" ")
			default:
				writeText(b, sel.Contents(), tag)
			}
		}
	})
}

// Plain strips every tag from s, highlight markers included.
func Plain(s string) string {
	return Markup(s, "", lipgloss.NewStyle())
}
