package extractor

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor extracts the plain text of a markdown document by
// walking the goldmark AST, dropping formatting but keeping block structure
// as line breaks. Markdown has no page concept, so output is a single page.
type MarkdownExtractor struct {
	parser goldmark.Markdown
}

// NewMarkdownExtractor creates a markdown extractor with table support.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract parses the markdown content and returns its plain text as page 1.
func (e *MarkdownExtractor) Extract(data []byte) ([]Page, error) {
	if len(data) == 0 {
		return nil, nil
	}

	reader := text.NewReader(data)
	doc := e.parser.Parser().Parse(reader)

	var builder strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				builder.WriteByte('\n')
			}
		case *ast.String:
			builder.Write(node.Value)
		case *ast.CodeBlock:
			writeCodeLines(&builder, node, data)
		case *ast.FencedCodeBlock:
			writeCodeLines(&builder, node, data)
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			ensureNewline(&builder)
		default:
			// Table rows from the table extension are only identifiable by
			// kind name; render each row on its own line.
			kindName := n.Kind().String()
			if kindName == "TableRow" || kindName == "TableHeader" {
				ensureNewline(&builder)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown AST: %w", err)
	}

	extracted := strings.TrimSpace(builder.String())
	if extracted == "" {
		return nil, nil
	}
	return []Page{{Number: 1, Text: extracted}}, nil
}

func writeCodeLines(builder *strings.Builder, node ast.Node, data []byte) {
	ensureNewline(builder)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(data))
	}
}

func ensureNewline(builder *strings.Builder) {
	s := builder.String()
	if len(s) > 0 && !strings.HasSuffix(s, "\n") {
		builder.WriteByte('\n')
	}
}
