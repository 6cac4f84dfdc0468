package transforms

import (
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/beevik/etree"
)

// editorSpaces are namespace prefixes written by vector editors that
// browsers ignore
var editorSpaces = map[string]bool{
	"sodipodi": true,
	"inkscape": true,
	"sketch":   true,
}

// preserveSpace lists elements whose whitespace is rendered
var preserveSpace = map[string]bool{
	"text":  true,
	"tspan": true,
	"style": true,
	"title": true,
	"desc":  true,
}

func parseSVG(content []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransform, "invalid SVG image")
	}
	if root := doc.Root(); root == nil || root.Tag != "svg" {
		return nil, errors.New(errors.ErrTransform, "SVG document has no <svg> root element")
	}
	return doc, nil
}

// minifySVG drops comments, editor metadata and formatting whitespace
func minifySVG(doc *etree.Document) ([]byte, error) {
	stripSVG(&doc.Element)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransform, "failed to write SVG image")
	}
	return out, nil
}

func stripSVG(el *etree.Element) {
	attrs := el.Attr[:0]
	for _, a := range el.Attr {
		if editorSpaces[a.Space] || (a.Space == "xmlns" && editorSpaces[a.Key]) {
			continue
		}
		attrs = append(attrs, a)
	}
	el.Attr = attrs

	children := append([]etree.Token(nil), el.Child...)
	for _, tok := range children {
		switch t := tok.(type) {
		case *etree.Comment:
			el.RemoveChild(t)
		case *etree.CharData:
			if t.IsWhitespace() && !preserveSpace[el.Tag] {
				el.RemoveChild(t)
			}
		case *etree.Element:
			if t.Tag == "metadata" || editorSpaces[t.Space] {
				el.RemoveChild(t)
				continue
			}
			stripSVG(t)
		}
	}
}
