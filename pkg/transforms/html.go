package transforms

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type htmlOptions struct {
	Attributes *bool `mapstructure:"attributes"`
}

type htmlStep struct {
	attributes bool
}

// refAttrs lists the element attributes that load a local resource
var refAttrs = map[atom.Atom][]string{
	atom.Img:    {"src"},
	atom.Source: {"src"},
	atom.Video:  {"poster"},
	atom.Audio:  {"src"},
	atom.Link:   {"href"},
}

const refMarker = "__webrig_ref_%d__"

func newHTMLStep(options map[string]interface{}) (Step, error) {
	var opts htmlOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return &htmlStep{attributes: opts.Attributes == nil || *opts.Attributes}, nil
}

func (s *htmlStep) Name() string { return "html-loader" }

func (s *htmlStep) Transform(_ context.Context, _ *Env, in Asset) (Asset, error) {
	if in.Kind == KindScript {
		return Asset{}, errors.Newf(errors.ErrTransform, "html-loader expects markup input, got %s", in.Kind)
	}

	nodes, err := parseMarkup(in.Content)
	if err != nil {
		return Asset{}, errors.Wrap(err, errors.ErrTransform, "failed to parse HTML")
	}

	var refs []string
	if s.attributes {
		for _, n := range nodes {
			markRefs(n, &refs)
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return Asset{}, errors.Wrap(err, errors.ErrTransform, "failed to render HTML")
		}
	}

	out := in
	out.Content = exportsValue(concat(splitMarkers(buf.String(), refs)))
	out.Kind = KindScript
	return out, nil
}

// parseMarkup parses whole documents as such and anything else as a body
// fragment
func parseMarkup(content []byte) ([]*html.Node, error) {
	head := strings.ToLower(strings.TrimSpace(string(content[:min(len(content), 64)])))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		return []*html.Node{doc}, nil
	}
	return html.ParseFragment(bytes.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
}

// markRefs replaces local resource attributes with numbered markers
func markRefs(n *html.Node, refs *[]string) {
	if n.Type == html.ElementNode {
		if names, ok := refAttrs[n.DataAtom]; ok && (n.DataAtom != atom.Link || isIconLink(n)) {
			for i, attr := range n.Attr {
				if !slices.Contains(names, attr.Key) || !isLocalRef(attr.Val) {
					continue
				}
				n.Attr[i].Val = fmt.Sprintf(refMarker, len(*refs))
				*refs = append(*refs, asRequest(attr.Val))
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markRefs(c, refs)
	}
}

func isIconLink(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "rel" {
			for _, rel := range strings.Fields(strings.ToLower(attr.Val)) {
				if rel == "icon" {
					return true
				}
			}
		}
	}
	return false
}

func splitMarkers(rendered string, refs []string) []piece {
	var pieces []piece
	rest := rendered
	for i, req := range refs {
		marker := fmt.Sprintf(refMarker, i)
		idx := strings.Index(rest, marker)
		if idx < 0 {
			continue
		}
		pieces = append(pieces, piece{text: rest[:idx]}, piece{request: req})
		rest = rest[idx+len(marker):]
	}
	return append(pieces, piece{text: rest})
}
