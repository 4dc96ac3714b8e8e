// Package markdown converts markdown text into a styled text flow.
// It keeps to the inline constructs a flow can express: headings,
// paragraphs, emphasis, code spans and flat list items.
package markdown

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pivotpdftools/pivot-pdf/layout"
)

// StyleSet maps markdown constructs onto text styles.
type StyleSet struct {
	Body   layout.TextStyle
	Bold   layout.TextStyle
	Italic layout.TextStyle
	Code   layout.TextStyle
	H1     layout.TextStyle
	H2     layout.TextStyle
	H3     layout.TextStyle
}

// Convert parses source and returns a flow ready for fitting. Block
// elements are separated by blank lines inside the flow; heading
// levels beyond three use the H3 style.
func Convert(source string, styles StyleSet) (*layout.TextFlow, error) {
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	flow := layout.NewTextFlow()
	c := &converter{flow: flow, styles: styles, src: src}
	if err := c.walkBlocks(doc); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return flow, nil
}

type converter struct {
	flow    *layout.TextFlow
	styles  StyleSet
	src     []byte
	started bool
}

func (c *converter) walkBlocks(node ast.Node) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			c.blockBreak()
			c.renderInlines(n, c.headingStyle(n.Level))
		case *ast.Paragraph:
			c.blockBreak()
			c.renderInlines(n, c.styles.Body)
		case *ast.List:
			if err := c.walkBlocks(n); err != nil {
				return err
			}
		case *ast.ListItem:
			c.blockBreak()
			c.flow.AddText("- ", c.styles.Body)
			if err := c.walkListItem(n); err != nil {
				return err
			}
		case *ast.TextBlock:
			c.renderInlines(n, c.styles.Body)
		default:
			if n.Type() == ast.TypeBlock {
				if err := c.walkBlocks(n); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkListItem renders an item's blocks inline, without the blank
// lines blocks normally get.
func (c *converter) walkListItem(item *ast.ListItem) error {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Paragraph:
			c.renderInlines(n, c.styles.Body)
		case *ast.TextBlock:
			c.renderInlines(n, c.styles.Body)
		case *ast.List:
			if err := c.walkBlocks(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *converter) headingStyle(level int) layout.TextStyle {
	switch level {
	case 1:
		return c.styles.H1
	case 2:
		return c.styles.H2
	default:
		return c.styles.H3
	}
}

// blockBreak separates blocks with a blank line; the first block
// starts the flow directly.
func (c *converter) blockBreak() {
	if c.started {
		c.flow.AddText("\n\n", c.styles.Body)
	}
	c.started = true
}

// renderInlines walks the inline children of a block, switching style
// for emphasis and code spans.
func (c *converter) renderInlines(block ast.Node, base layout.TextStyle) {
	for child := block.FirstChild(); child != nil; child = child.NextSibling() {
		c.renderInline(child, base)
	}
}

func (c *converter) renderInline(node ast.Node, style layout.TextStyle) {
	switch n := node.(type) {
	case *ast.Text:
		c.flow.AddText(string(n.Segment.Value(c.src)), style)
		if n.SoftLineBreak() || n.HardLineBreak() {
			c.flow.AddText(" ", style)
		}
	case *ast.Emphasis:
		inner := c.styles.Italic
		if n.Level >= 2 {
			inner = c.styles.Bold
		}
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			c.renderInline(child, inner)
		}
	case *ast.CodeSpan:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				c.flow.AddText(string(t.Segment.Value(c.src)), c.styles.Code)
			}
		}
	default:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			c.renderInline(child, style)
		}
	}
}
