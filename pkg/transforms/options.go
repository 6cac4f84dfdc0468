package transforms

import (
	"encoding/json"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
)

// decodeOptions fills out from a loader options map. Unknown keys are
// ignored so options can be shared with a fallback loader.
func decodeOptions(options map[string]interface{}, out interface{}) error {
	if len(options) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create options decoder")
	}
	if err := dec.Decode(options); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "invalid loader options")
	}
	return nil
}

// jsString renders s as a JavaScript string literal. Markup characters stay
// literal so emitted html keeps its tags.
func jsString(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// exportsValue renders a CommonJS module exporting a JavaScript expression
func exportsValue(expr string) []byte {
	return []byte("module.exports = " + expr + ";\n")
}

// piece is either literal text or a module request
type piece struct {
	text    string
	request string
}

// concat renders pieces as a string concatenation where requests become
// require() calls
func concat(pieces []piece) string {
	if len(pieces) == 0 {
		return `""`
	}
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p.request != "" {
			parts = append(parts, "require("+jsString(p.request)+")")
			continue
		}
		if p.text != "" {
			parts = append(parts, jsString(p.text))
		}
	}
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, " + ")
}

// isLocalRef reports whether a URL in CSS or HTML points at a project file
func isLocalRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return false
	}
	if strings.Contains(ref, "{{") || strings.Contains(ref, "<%") {
		return false
	}
	if i := strings.IndexByte(ref, ':'); i > 0 {
		// scheme such as data:, http:, mailto:
		if !strings.ContainsAny(ref[:i], "/?#") {
			return false
		}
	}
	return true
}

// asRequest turns a local reference into a relative module request
func asRequest(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		return ref
	}
	if strings.HasPrefix(ref, "~") {
		return strings.TrimPrefix(ref, "~")
	}
	return "./" + ref
}
