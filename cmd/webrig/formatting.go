package webrig

import (
	"strings"
	"text/template"

	"github.com/arthur-debert/webrig/pkg/style"
	"github.com/spf13/cobra"
)

func formatBoldUpper(s string) string {
	return style.Bold(strings.ToUpper(s))
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      style.Bold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}
