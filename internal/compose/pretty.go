package compose

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Elements rendered inline within a run of text.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "big": true,
	"br": true, "cite": true, "code": true, "data": true, "dfn": true, "em": true,
	"font": true, "i": true, "img": true, "kbd": true, "label": true, "mark": true,
	"q": true, "s": true, "samp": true, "small": true, "span": true, "strike": true,
	"strong": true, "sub": true, "sup": true, "time": true, "tt": true, "u": true,
	"var": true, "wbr": true,
}

// Elements whose content is emitted untouched.
var rawElements = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

// Inline elements whose text keeps its whitespace.
var literalElements = map[string]bool{
	"code": true, "kbd": true, "samp": true, "tt": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Pretty writes doc with one block element per line, children indented by
// indent per level. Runs of text and inline elements share a line with
// whitespace collapsed; whitespace-only text is dropped.
func Pretty(w io.Writer, doc *html.Node, indent string) error {
	p := &printer{w: w, indent: indent}
	p.children(doc, 0)
	return p.err
}

type printer struct {
	w      io.Writer
	indent string
	err    error
}

func (p *printer) children(n *html.Node, depth int) {
	var run []*html.Node
	flush := func() {
		if len(run) > 0 {
			p.inline(run, depth)
			run = run[:0]
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if isInline(ch) {
			run = append(run, ch)
			continue
		}
		flush()
		p.node(ch, depth)
	}
	flush()
}

func (p *printer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.ElementNode:
		p.element(n, depth)
	case html.TextNode:
		p.inline([]*html.Node{n}, depth)
	default:
		// Doctype and comments.
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			p.fail(err)
			return
		}
		p.line(depth, buf.String())
	}
}

func (p *printer) element(n *html.Node, depth int) {
	if rawElements[n.Data] {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			p.fail(err)
			return
		}
		p.line(depth, buf.String())
		return
	}
	if voidElements[n.Data] {
		p.line(depth, openTag(n, true))
		return
	}
	if n.FirstChild == nil {
		p.line(depth, openTag(n, false)+"</"+n.Data+">")
		return
	}
	if allInline(n) {
		var b strings.Builder
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			writeInline(&b, ch, literalElements[n.Data])
		}
		p.line(depth, openTag(n, false)+strings.TrimSpace(b.String())+"</"+n.Data+">")
		return
	}
	p.line(depth, openTag(n, false))
	p.children(n, depth+1)
	p.line(depth, "</"+n.Data+">")
}

func (p *printer) inline(run []*html.Node, depth int) {
	var b strings.Builder
	for _, n := range run {
		writeInline(&b, n, false)
	}
	if text := strings.TrimSpace(b.String()); text != "" {
		p.line(depth, text)
	}
}

// writeInline renders an inline subtree. Whitespace collapsing applies to
// text data only, never to attribute values, and is skipped below literal
// elements.
func writeInline(b *strings.Builder, n *html.Node, literal bool) {
	switch n.Type {
	case html.TextNode:
		data := n.Data
		if !literal {
			data = whitespaceRun.ReplaceAllString(data, " ")
		}
		b.WriteString(html.EscapeString(data))
	case html.ElementNode:
		if voidElements[n.Data] {
			b.WriteString(openTag(n, true))
			return
		}
		b.WriteString(openTag(n, false))
		literal = literal || literalElements[n.Data]
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			writeInline(b, ch, literal)
		}
		b.WriteString("</" + n.Data + ">")
	}
}

func (p *printer) line(depth int, s string) {
	if p.err != nil {
		return
	}
	_, err := io.WriteString(p.w, strings.Repeat(p.indent, depth)+s+"\n")
	p.fail(err)
}

func (p *printer) fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineElements[n.Data] && allInline(n)
	default:
		return false
	}
}

func allInline(n *html.Node) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if !isInline(ch) {
			return false
		}
	}
	return true
}

func openTag(n *html.Node, void bool) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteString(" ")
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteString(":")
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	if void {
		b.WriteString("/>")
	} else {
		b.WriteString(">")
	}
	return b.String()
}
