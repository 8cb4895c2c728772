package anchor

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are the block-level elements scanned for anchors.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "li": true,
}

// Element is one block-level text element in document order.
type Element struct {
	Index int
	Tag   string
	Text  string
}

// Span is a handle to a tagged sub-span of an element's text. Spans own
// their visual marker; they never own the candidate they were created for.
type Span struct {
	Element int
	Offset  int
	Length  int
	Key     string
}

// Document is the ordered block-element view of an article plus the
// registry of tagged spans. It is rebuilt wholesale on re-scan.
type Document struct {
	Elements []Element
	spans    []Span
}

// ParseDocument extracts block-level elements from HTML in document order.
func ParseDocument(htmlContent string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
			if blockTags[n.Data] {
				text := nodeText(n)
				if strings.TrimSpace(text) != "" {
					doc.Elements = append(doc.Elements, Element{
						Index: len(doc.Elements),
						Tag:   n.Data,
						Text:  text,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

// NewDocumentFromText builds a document treating each non-empty line as a
// paragraph, for plain-text input.
func NewDocumentFromText(text string) *Document {
	doc := &Document{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Elements = append(doc.Elements, Element{
			Index: len(doc.Elements),
			Tag:   "p",
			Text:  line,
		})
	}
	return doc
}

// Text joins all element texts; the extractor scans this.
func (d *Document) Text() string {
	parts := make([]string, len(d.Elements))
	for i, el := range d.Elements {
		parts[i] = el.Text
	}
	return strings.Join(parts, "\n")
}

// Tag registers a tagged sub-span of an element and returns it.
func (d *Document) Tag(element, offset, length int, key string) Span {
	s := Span{Element: element, Offset: offset, Length: length, Key: key}
	d.spans = append(d.spans, s)
	return s
}

// Spans returns all registered spans.
func (d *Document) Spans() []Span {
	return d.spans
}

// Annotated renders the document as plain text with «...» around every
// tagged span.
func (d *Document) Annotated() string {
	byElement := make(map[int][]Span)
	for _, s := range d.spans {
		byElement[s.Element] = append(byElement[s.Element], s)
	}

	var b strings.Builder
	for _, el := range d.Elements {
		spans := byElement[el.Index]
		sort.Slice(spans, func(i, j int) bool { return spans[i].Offset < spans[j].Offset })

		pos := 0
		for _, s := range spans {
			if s.Offset < pos || s.Offset+s.Length > len(el.Text) {
				continue
			}
			b.WriteString(el.Text[pos:s.Offset])
			b.WriteString("«")
			b.WriteString(el.Text[s.Offset : s.Offset+s.Length])
			b.WriteString("»")
			pos = s.Offset + s.Length
		}
		b.WriteString(el.Text[pos:])
		b.WriteString("\n")
	}
	return b.String()
}

// nodeText gathers the visible text of a node, joining text nodes with
// single spaces collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
