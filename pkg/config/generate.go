package config

import (
	"bytes"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a serialisation format for configuration files
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "toml", "yaml" or "yml"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown config format %q", s)
	}
}

// Starter returns the configuration written by `webrig init`: a TypeScript
// entry with CSS, HTML, font, image, JSON and video rules, an HTML page and
// React loaded from globals.
func Starter() *Config {
	return &Config{
		Entry:   "./src/index.tsx",
		Devtool: "source-map",
		Output: Output{
			Path:          "dist",
			Filename:      "bundle.js",
			ChunkFilename: "[name].chunk.js",
		},
		Rules: []Rule{
			{Test: `\.tsx$`, Exclude: `/node_modules/`, Use: UseList{{Loader: "awesome-typescript-loader"}}},
			{Test: `\.css$`, Exclude: `/node_modules/`, Use: UseList{{Loader: "style-loader"}, {Loader: "css-loader"}}},
			{Test: `\.html$`, Use: UseList{{Loader: "html-loader"}}},
			{Test: `\.(eot|svg|ttf|woff|woff2)$`, Use: UseList{{Loader: "file-loader"}}},
			{Test: `\.(png|jpg|jpeg|gif|eot|ttf|woff|woff2|svg|svgz)(\?.+)?$`, Use: UseList{
				{Loader: "file-loader"},
				{Loader: "image-webpack", Options: map[string]interface{}{
					"progressive":       true,
					"optimizationLevel": 7,
					"interlaced":        false,
					"pngquant":          map[string]interface{}{"quality": "65-90", "speed": 4},
				}},
			}},
			{Test: `\.json$`, Use: UseList{{Loader: "json-loader"}}},
			{Test: `\.(mp4|webm)$`, Use: UseList{{Loader: "url-loader", Options: map[string]interface{}{"limit": 10000}}}},
		},
		Plugins: []Plugin{
			{Name: "hot-module-replacement"},
			{Name: "no-emit-on-errors"},
			{Name: "html", Options: map[string]interface{}{
				"inject":   true,
				"filename": "index.html",
				"template": "index.html",
			}},
		},
		Resolve: Resolve{
			Extensions: []string{".webpack.js", ".web.js", ".js", ".ts", ".tsx", ".css"},
		},
		Externals: map[string]string{
			"react":     "React",
			"react-dom": "ReactDOM",
		},
	}
}

// Marshal serialises a configuration in the given format
func Marshal(cfg *Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode TOML")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown config format %q", format)
	}
	return buf.Bytes(), nil
}
