package plugins

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type htmlOptions struct {
	Template string      `mapstructure:"template"`
	Filename string      `mapstructure:"filename"`
	Inject   interface{} `mapstructure:"inject"`
	Title    string      `mapstructure:"title"`
}

type inject int

const (
	injectBody inject = iota
	injectHead
	injectNone
)

const defaultHTMLFilename = "index.html"

// titleTag is the title placeholder used by webpack-style templates
const titleTag = "<%= htmlWebpackPlugin.options.title %>"

var defaultPage = htmltemplate.Must(htmltemplate.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.}}</title>
</head>
<body>
</body>
</html>
`))

// HTMLPlugin writes an HTML page loading the main bundle
type HTMLPlugin struct {
	template []byte
	filename string
	inject   inject
	title    string
}

func newHTML(options map[string]interface{}, env Env) (Plugin, error) {
	var opts htmlOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	p := &HTMLPlugin{filename: opts.Filename, title: opts.Title}
	if p.filename == "" {
		p.filename = defaultHTMLFilename
	}

	mode, err := parseInject(opts.Inject)
	if err != nil {
		return nil, err
	}
	p.inject = mode

	if opts.Template != "" {
		path := opts.Template
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.Context, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTemplateNotFound, "html template %s not found", opts.Template).
				WithDetail("template", path)
		}
		p.template = content
	}
	return p, nil
}

func parseInject(v interface{}) (inject, error) {
	switch x := v.(type) {
	case nil:
		return injectBody, nil
	case bool:
		if x {
			return injectBody, nil
		}
		return injectNone, nil
	case string:
		switch strings.ToLower(x) {
		case "", "true", "body":
			return injectBody, nil
		case "head":
			return injectHead, nil
		case "false":
			return injectNone, nil
		}
	}
	return injectNone, errors.Newf(errors.ErrConfigInvalid, "invalid inject value %v", v).
		WithDetail("inject", v)
}

func (p *HTMLPlugin) Name() string { return "html" }

func (p *HTMLPlugin) EmitAssets(_ context.Context, c *Compilation) error {
	page, err := p.page()
	if err != nil {
		return err
	}
	if p.inject != injectNone {
		page, err = injectScript(page, c.PublicPath+c.MainFile, p.inject)
		if err != nil {
			return err
		}
	}
	logger := logging.GetLogger("plugins.html")
	logger.Debug().
		Str("file", p.filename).
		Str("script", c.MainFile).
		Msg("Writing HTML page")
	return c.Emit(p.filename, page)
}

func (p *HTMLPlugin) page() ([]byte, error) {
	if p.template == nil {
		var buf bytes.Buffer
		title := p.title
		if title == "" {
			title = "webrig"
		}
		if err := defaultPage.Execute(&buf, title); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render default page")
		}
		return buf.Bytes(), nil
	}
	page := p.template
	if bytes.Contains(page, []byte(titleTag)) {
		page = bytes.ReplaceAll(page, []byte(titleTag), []byte(htmltemplate.HTMLEscapeString(p.title)))
	}
	return page, nil
}

// injectScript appends a script element loading src to the head or body
func injectScript(page []byte, src string, where inject) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransform, "failed to parse html template")
	}

	target := atom.Body
	if where == injectHead {
		target = atom.Head
	}
	parent := findElement(doc, target)
	if parent == nil {
		return nil, errors.Newf(errors.ErrTransform, "html template has no <%s> element", target)
	}

	parent.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr:     []html.Attribute{{Key: "src", Val: src}},
	})

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render html page")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
