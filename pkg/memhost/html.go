package memhost

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IDAttr is the attribute AnnotatedHTML uses to carry node ids.
const IDAttr = "data-rid"

// HTML returns the outer markup of n.
func HTML(n *Node) string {
	var b strings.Builder
	writeNode(&b, n, false)
	return b.String()
}

// InnerHTML returns the markup of n's children.
func InnerHTML(n *Node) string {
	var b strings.Builder
	for _, c := range n.children {
		writeNode(&b, c, false)
	}
	return b.String()
}

// AnnotatedHTML is InnerHTML with every element carrying its node id in a
// data-rid attribute, so a client can address nodes back through NodeByID.
func AnnotatedHTML(n *Node) string {
	var b strings.Builder
	for _, c := range n.children {
		writeNode(&b, c, true)
	}
	return b.String()
}

// WriteHTML streams the outer markup of n to w.
func WriteHTML(w io.Writer, n *Node) error {
	_, err := io.WriteString(w, HTML(n))
	return err
}

func writeNode(b *strings.Builder, n *Node, ids bool) {
	if n.typ == TextNode {
		b.WriteString(escapeHTML(n.text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	if ids {
		b.WriteString(" " + IDAttr + `="`)
		b.WriteString(strconv.Itoa(n.id))
		b.WriteByte('"')
	}
	for _, name := range n.attrNames {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(n.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.tag] {
		return
	}
	for _, c := range n.children {
		writeNode(b, c, ids)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
// Whitespace control characters are escaped too so values survive a round
// trip through a parser unchanged.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// ParseHTML parses markup as body content and appends the resulting nodes to
// parent. Comments and doctype nodes are skipped.
func (d *Document) ParseHTML(parent *Node, r io.Reader) error {
	if parent == nil || parent.doc != d {
		return fmt.Errorf("memhost: parse into foreign node")
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return fmt.Errorf("memhost: parse html: %w", err)
	}
	for _, hn := range nodes {
		if err := d.importNode(parent, hn); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) importNode(parent *Node, hn *html.Node) error {
	switch hn.Type {
	case html.TextNode:
		n, _ := d.CreateText(hn.Data)
		return d.insert(parent, len(parent.children), n.(*Node))
	case html.ElementNode:
		v, err := d.CreateElement(hn.Data)
		if err != nil {
			return err
		}
		el := v.(*Node)
		for _, a := range hn.Attr {
			if err := d.SetAttribute(el, a.Key, a.Val); err != nil {
				return err
			}
		}
		if err := d.insert(parent, len(parent.children), el); err != nil {
			return err
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if err := d.importNode(el, c); err != nil {
				return err
			}
		}
	}
	return nil
}
