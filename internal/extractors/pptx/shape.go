package pptx

import (
	"encoding/xml"
	"strings"
)

// Shape is one element of a slide's shape tree.
// Only some shapes carry text; pictures, tables, connectors and groups do not.
type Shape interface {
	// Kind is the shape's element name, such as "sp" or "pic".
	Kind() string

	// Text returns the shape's text and whether the shape has a text body.
	Text() (string, bool)
}

// TextShape is an autoshape or placeholder with a text frame.
type TextShape struct {
	Paragraphs []string
}

// Kind returns "sp".
func (s TextShape) Kind() string { return "sp" }

// Text joins the shape's paragraphs with newlines.
func (s TextShape) Text() (string, bool) {
	return strings.Join(s.Paragraphs, "\n"), true
}

// OtherShape is any shape without extractable text.
type OtherShape struct {
	kind string
}

// Kind returns the element name.
func (s OtherShape) Kind() string { return s.kind }

// Text always reports no text.
func (s OtherShape) Text() (string, bool) { return "", false }

// shapeElements are the direct children of spTree that count as shapes.
var shapeElements = map[string]bool{
	"sp":           true,
	"pic":          true,
	"graphicFrame": true,
	"grpSp":        true,
	"cxnSp":        true,
	"contentPart":  true,
}

type slideXML struct {
	Tree shapeTree `xml:"cSld>spTree"`
}

// shapeTree decodes spTree children in document order.
type shapeTree struct {
	Shapes []Shape
}

func (t *shapeTree) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case el.Name.Local == "sp":
				var sp spXML
				if err := d.DecodeElement(&sp, &el); err != nil {
					return err
				}
				if shape, ok := sp.shape(); ok {
					t.Shapes = append(t.Shapes, shape)
				} else {
					t.Shapes = append(t.Shapes, OtherShape{kind: "sp"})
				}
			case shapeElements[el.Name.Local]:
				if err := d.Skip(); err != nil {
					return err
				}
				t.Shapes = append(t.Shapes, OtherShape{kind: el.Name.Local})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type spXML struct {
	TxBody *struct {
		Paragraphs []drawingParagraph `xml:"p"`
	} `xml:"txBody"`
}

type drawingParagraph struct {
	Items []drawingItem `xml:",any"`
}

// drawingItem is a run ("r"), field ("fld") or line break ("br").
type drawingItem struct {
	XMLName xml.Name
	Text    string `xml:"t"`
}

func (sp spXML) shape() (Shape, bool) {
	if sp.TxBody == nil {
		return nil, false
	}

	paragraphs := make([]string, 0, len(sp.TxBody.Paragraphs))
	for _, p := range sp.TxBody.Paragraphs {
		var b strings.Builder
		for _, item := range p.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				b.WriteString(item.Text)
			case "br":
				b.WriteString("\n")
			}
		}
		paragraphs = append(paragraphs, b.String())
	}
	return TextShape{Paragraphs: paragraphs}, true
}

// parseSlide returns the shapes of one slide in document order.
func parseSlide(data []byte) ([]Shape, error) {
	var s slideXML
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Tree.Shapes, nil
}

// slideText joins the text of every text-bearing shape with newlines.
func slideText(shapes []Shape) string {
	var parts []string
	for _, shape := range shapes {
		if text, ok := shape.Text(); ok && strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
