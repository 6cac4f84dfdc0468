package bundle

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/arthur-debert/webrig/pkg/errors"
)

// RegisterGlobal is the global async chunks call to add their modules
const RegisterGlobal = "__webrig_register__"

//go:embed runtime.js.tmpl
var runtimeSource string

var runtimeTemplate = template.Must(template.New("runtime").Funcs(template.FuncMap{
	"json": func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"comment": func(s string) string {
		return strings.ReplaceAll(s, "*/", "* /")
	},
}).Parse(runtimeSource))

type renderModule struct {
	ID     int
	Rel    string
	Source string
}

type mainData struct {
	ChunkFiles map[int]string
	PublicPath string
	Global     string
	Entry      int
	Modules    []renderModule
}

type chunkData struct {
	Global  string
	Modules []renderModule
}

func render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := runtimeTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to render %s chunk", name)
	}
	return buf.Bytes(), nil
}
