package pipeline

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// xmlDecl matches a leading XML declaration, which the HTML parser
	// would otherwise turn into a bogus comment.
	xmlDecl = regexp.MustCompile(`^\s*<\?xml[^>]*\?>\s*`)

	// selfClosing matches an XML self-closed tag.
	selfClosing = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9:._-]*)(\s[^<>]*?)?\s*/>`)
)

// voidElements may legitimately self-close in HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// expandSelfClosing rewrites <tag/> as <tag></tag> for non-void elements.
// The HTML parser ignores the slash, so <a id="x"/> would otherwise swallow
// the rest of its parent.
func expandSelfClosing(src []byte) []byte {
	return selfClosing.ReplaceAllFunc(src, func(m []byte) []byte {
		sub := selfClosing.FindSubmatch(m)
		tag := string(sub[1])
		if voidElements[strings.ToLower(tag)] {
			return m
		}
		var b bytes.Buffer
		b.WriteByte('<')
		b.Write(sub[1])
		b.Write(sub[2])
		b.WriteString("></")
		b.Write(sub[1])
		b.WriteByte('>')
		return b.Bytes()
	})
}

// parsePage parses an XHTML page. The XML declaration, if any, is returned
// separately so renderPage can restore it.
func parsePage(src []byte) (doc *goquery.Document, decl string, err error) {
	if loc := xmlDecl.FindIndex(src); loc != nil {
		decl = strings.TrimSpace(string(src[loc[0]:loc[1]]))
		src = src[loc[1]:]
	}

	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(expandSelfClosing(src)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, decl, nil
}

// renderPage serializes doc. Void elements are written self-closed, which
// keeps the output well-formed for XHTML consumers.
func renderPage(doc *goquery.Document, decl string) ([]byte, error) {
	var buf bytes.Buffer
	if decl != "" {
		buf.WriteString(decl)
		buf.WriteByte('\n')
	}
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
	}
	return buf.Bytes(), nil
}

// renderNode serializes a single node.
func renderNode(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// element builds a detached element. attrs are key/value pairs.
func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// textElement builds a detached element holding text.
func textElement(tag, text string, attrs ...string) *html.Node {
	n := element(tag, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// adoptChildren moves the element children of from to the end of to. Text
// nodes between them stay in place.
func adoptChildren(from, to *html.Node) int {
	moved := 0
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			from.RemoveChild(c)
			to.AppendChild(c)
			moved++
		}
		c = next
	}
	return moved
}
