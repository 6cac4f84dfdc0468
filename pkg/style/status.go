package style

import (
	"path"
	"strings"

	"github.com/arthur-debert/webrig/pkg/build"
	"github.com/charmbracelet/lipgloss"
)

// Kind classifies an emitted file for display
type Kind string

const (
	KindEntry      Kind = "entry"
	KindChunk      Kind = "chunk"
	KindPage       Kind = "page"
	KindCompressed Kind = "gzip"
	KindManifest   Kind = "manifest"
	KindAsset      Kind = "asset"
)

// Classify returns the kind of the emitted file name within result
func Classify(name string, result *build.Result) Kind {
	for i, c := range result.Chunks {
		if c.File != name {
			continue
		}
		if i == 0 {
			return KindEntry
		}
		return KindChunk
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		return KindCompressed
	case ".html", ".htm":
		return KindPage
	}
	if path.Base(name) == "hot-update.json" {
		return KindManifest
	}
	return KindAsset
}

// KindStyle returns the style used for files of kind k
func KindStyle(k Kind) lipgloss.Style {
	switch k {
	case KindEntry:
		return lipgloss.NewStyle().Foreground(ChunkColor).Bold(true)
	case KindChunk:
		return lipgloss.NewStyle().Foreground(ChunkColor)
	case KindPage:
		return lipgloss.NewStyle().Foreground(PageColor)
	case KindCompressed:
		return lipgloss.NewStyle().Foreground(CompressedColor)
	case KindManifest:
		return Muted
	default:
		return lipgloss.NewStyle().Foreground(AssetColor)
	}
}
