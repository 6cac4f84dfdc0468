package transforms

import (
	"context"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
)

type styleStep struct{}

func newStyleStep(map[string]interface{}) (Step, error) {
	return styleStep{}, nil
}

func (styleStep) Name() string { return "style-loader" }

// Transform wraps the stylesheet module so that evaluating it appends a
// <style> element to the document head
func (styleStep) Transform(_ context.Context, env *Env, in Asset) (Asset, error) {
	if in.Kind != KindScript {
		return Asset{}, errors.New(errors.ErrTransform,
			"style-loader expects script input; put css-loader after it in the chain")
	}

	var b strings.Builder
	// exports must alias module.exports so `exports.x = ...` is kept
	b.WriteString("var __webrig_css__ = (function (module) {\n")
	b.WriteString("(function (module, exports) {\n")
	b.Write(in.Content)
	b.WriteString("\n})(module, module.exports);\n")
	b.WriteString("return module.exports;\n})({ exports: {} });\n")
	b.WriteString("if (typeof document !== \"undefined\") {\n")
	b.WriteString("  var __webrig_style__ = document.createElement(\"style\");\n")
	b.WriteString("  __webrig_style__.setAttribute(\"data-source\", " + jsString(env.Rel(in.Path)) + ");\n")
	b.WriteString("  __webrig_style__.appendChild(document.createTextNode(String(__webrig_css__)));\n")
	b.WriteString("  document.head.appendChild(__webrig_style__);\n")
	b.WriteString("}\n")
	b.WriteString("module.exports = {};\n")

	out := in
	out.Content = []byte(b.String())
	return out, nil
}
