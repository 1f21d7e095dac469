package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func prettyString(t *testing.T, src string) string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, Pretty(&b, doc, "  "))
	return b.String()
}

func TestPretty_MixedContent(t *testing.T) {
	got := prettyString(t, "<div>Intro <span>x</span><p>Para</p>tail</div>")
	want := `<html>
  <head></head>
  <body>
    <div>
      Intro <span>x</span>
      <p>Para</p>
      tail
    </div>
  </body>
</html>
`
	assert.Equal(t, want, got)
}

func TestPretty_CollapsesInlineWhitespace(t *testing.T) {
	got := prettyString(t, "<p>Hello <b>bold</b>\n      world</p>")
	assert.Contains(t, got, "    <p>Hello <b>bold</b> world</p>\n")
}

func TestPretty_KeepsPreformattedContent(t *testing.T) {
	got := prettyString(t, "<pre>  a\n  b</pre>")
	assert.Contains(t, got, "    <pre>  a\n  b</pre>\n")
}

func TestPretty_VoidElementsAndComments(t *testing.T) {
	got := prettyString(t, `<!-- header --><hr class="rule"><p>x</p>`)
	assert.Contains(t, got, "<!-- header -->\n")
	assert.Contains(t, got, `    <hr class="rule"/>`+"\n")
}

func TestPretty_EscapesAttributes(t *testing.T) {
	got := prettyString(t, `<a href="/x?a=1&amp;b=2">link</a>`)
	assert.Contains(t, got, `<a href="/x?a=1&amp;b=2">link</a>`)
}

func TestPretty_AttributesKeepWhitespace(t *testing.T) {
	got := prettyString(t, "<p>See <a title=\"a   b\" style=\"color: red;\n  font-weight: bold\" href=\"/x\">this\n   link</a></p>")

	doc, err := html.Parse(strings.NewReader(got))
	require.NoError(t, err)
	var link *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			link = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	require.NotNil(t, link)

	attrs := map[string]string{}
	for _, a := range link.Attr {
		attrs[a.Key] = a.Val
	}
	assert.Equal(t, "a   b", attrs["title"])
	assert.Equal(t, "color: red;\n  font-weight: bold", attrs["style"])
	assert.Equal(t, "this link", link.FirstChild.Data)
}

func TestPretty_InlineCodeKeepsWhitespace(t *testing.T) {
	got := prettyString(t, "<p>Run <code>a    b</code>\n   now</p>")
	assert.Contains(t, got, "    <p>Run <code>a    b</code> now</p>\n")
}
