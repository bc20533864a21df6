package export

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// BlockKind classifies a piece of slide text
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockItem
	BlockCode
	BlockQuote
)

// Block is one drawable run of slide text
type Block struct {
	Kind BlockKind
	Text string
}

// SlideContent is a rendered slide reduced to plain text blocks
type SlideContent struct {
	Title  string
	Blocks []Block
}

// ExtractContent walks rendered slide HTML. The first top-level heading
// becomes the title; later headings stay in the body.
func ExtractContent(fragment string) (SlideContent, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return SlideContent{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var content SlideContent
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				text := inlineText(n)
				if content.Title == "" && len(content.Blocks) == 0 {
					content.Title = text
				} else if text != "" {
					content.Blocks = append(content.Blocks, Block{Kind: BlockHeading, Text: text})
				}
				return
			case "p":
				if text := inlineText(n); text != "" {
					content.Blocks = append(content.Blocks, Block{Kind: BlockParagraph, Text: text})
				}
				return
			case "li":
				if text := inlineText(n); text != "" {
					content.Blocks = append(content.Blocks, Block{Kind: BlockItem, Text: text})
				}
				return
			case "pre":
				if text := strings.TrimRight(rawText(n), "\n"); text != "" {
					content.Blocks = append(content.Blocks, Block{Kind: BlockCode, Text: text})
				}
				return
			case "blockquote":
				if text := inlineText(n); text != "" {
					content.Blocks = append(content.Blocks, Block{Kind: BlockQuote, Text: text})
				}
				return
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return content, nil
}

// inlineText joins the text below n with single spaces
func inlineText(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

// rawText concatenates text nodes below n unchanged
func rawText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(rawText(child))
	}
	return b.String()
}
