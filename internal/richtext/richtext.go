// Package richtext converts between the editable description document and the
// flat string the protocol server stores.
//
// The conversion is lossy: each paragraph becomes exactly one line, and leaf
// boundaries and marks inside a paragraph are dropped on the way out.
package richtext

import "strings"

// Leaf is a run of plain text inside a paragraph.
type Leaf struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Paragraph is a block-level node owning an ordered run of leaves.
type Paragraph struct {
	Children []Leaf
}

// Document is an ordered sequence of paragraphs.
type Document struct {
	Paragraphs []Paragraph
}

// Empty returns the minimum valid document: one paragraph with one empty leaf.
func Empty() Document {
	return Document{Paragraphs: []Paragraph{{Children: []Leaf{{Text: ""}}}}}
}

// Serialize flattens a document to its persisted form.
func Serialize(doc Document) string {
	lines := make([]string, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// Deserialize rebuilds a document with one leaf per line.
func Deserialize(text string) Document {
	lines := strings.Split(text, "\n")
	doc := Document{Paragraphs: make([]Paragraph, 0, len(lines))}
	for _, line := range lines {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Children: []Leaf{{Text: line}}})
	}
	return doc
}

// Normalize collapses every paragraph into a single unmarked leaf.
func Normalize(doc Document) Document {
	if len(doc.Paragraphs) == 0 {
		return Empty()
	}
	out := Document{Paragraphs: make([]Paragraph, 0, len(doc.Paragraphs))}
	for _, p := range doc.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, Paragraph{Children: []Leaf{{Text: p.Text()}}})
	}
	return out
}

// Text concatenates the paragraph's leaves without a separator.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, leaf := range p.Children {
		b.WriteString(leaf.Text)
	}
	return b.String()
}

// Text is the serialized form of the document.
func (d Document) Text() string {
	return Serialize(d)
}

// ParagraphCount returns the number of block-level nodes.
func (d Document) ParagraphCount() int {
	return len(d.Paragraphs)
}

// Equal reports structural equality, leaf by leaf.
func (d Document) Equal(other Document) bool {
	if len(d.Paragraphs) != len(other.Paragraphs) {
		return false
	}
	for i, p := range d.Paragraphs {
		q := other.Paragraphs[i]
		if len(p.Children) != len(q.Children) {
			return false
		}
		for j := range p.Children {
			if p.Children[j] != q.Children[j] {
				return false
			}
		}
	}
	return true
}
