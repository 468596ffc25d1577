package univerconv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeType distinguishes element nodes from text nodes in a parsed markup tree.
type NodeType int

const (
	ElementNode NodeType = iota + 1
	TextNode
)

// Node is a minimal DOM node shared by all markup backends.
type Node struct {
	Type     NodeType
	Tag      string // element name; lower-case for HTML input
	Attrs    map[string]string
	Text     string // text nodes only
	Children []*Node
}

// Attr returns the value of the named attribute or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.walkText(&sb)
	return sb.String()
}

func (n *Node) walkText(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == TextNode {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.walkText(sb)
	}
}

// Find returns the first descendant element with the given tag (depth-first), or nil.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if c.Tag == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element with the given tag in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if c.Tag == tag {
			out = append(out, c)
		}
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

// MarkupParser parses a markup fragment into a traversable tree.
// The returned root is a synthetic element whose children are the fragment's top-level nodes.
type MarkupParser interface {
	Parse(src string) (*Node, error)
}

// HTMLParser parses fragments with the golang.org/x/net/html tokenizer and tree builder.
type HTMLParser struct{}

// NewHTMLParser returns the HTML5 parser backend.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse parses src as an HTML fragment in a <body> context.
func (p *HTMLParser) Parse(src string) (*Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	root := &Node{Type: ElementNode, Tag: "#root"}
	for _, n := range nodes {
		if c := convertHTMLNode(n); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root, nil
}

func convertHTMLNode(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return &Node{Type: TextNode, Text: n.Data}
	case html.ElementNode:
		out := &Node{Type: ElementNode, Tag: strings.ToLower(n.Data)}
		if len(n.Attr) > 0 {
			out.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				out.Attrs[strings.ToLower(a.Key)] = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := convertHTMLNode(c); child != nil {
				out.Children = append(out.Children, child)
			}
		}
		return out
	}
	return nil
}

// XMLParser parses markup with encoding/xml. With Strict unset it accepts
// HTML-ish input (unclosed void tags, HTML entities), which makes it usable
// where an HTML5 tree builder is not wanted.
type XMLParser struct {
	Strict bool
}

// NewXMLParser returns a lenient XML parser backend.
func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

// Parse parses src wrapped in a synthetic root element.
func (p *XMLParser) Parse(src string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader("<root>" + src + "</root>"))
	dec.Strict = p.Strict
	if !p.Strict {
		dec.AutoClose = xml.HTMLAutoClose
		dec.Entity = xml.HTMLEntity
	}

	root := &Node{Type: ElementNode, Tag: "#root"}
	stack := []*Node{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml fragment: %w", err)
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Type: ElementNode, Tag: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top.Children = append(top.Children, &Node{Type: TextNode, Text: string(t)})
		}
	}
	if len(stack) != 1 && p.Strict {
		return nil, fmt.Errorf("parse xml fragment: unclosed element %q", stack[len(stack)-1].Tag)
	}

	// Unwrap the synthetic <root>.
	if len(root.Children) == 1 && root.Children[0].Tag == "root" {
		root.Children[0].Tag = "#root"
		return root.Children[0], nil
	}
	return root, nil
}
