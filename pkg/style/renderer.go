package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/webrig/pkg/build"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// RenderBuild renders the file table and summary line of a build
func RenderBuild(result *build.Result) string {
	data := pterm.TableData{{"File", "Kind", "Size"}}
	var total int64
	for _, f := range result.Files {
		kind := Classify(f.Name, result)
		data = append(data, []string{
			KindStyle(kind).Render(f.Name),
			string(kind),
			humanize.Bytes(uint64(f.Size)),
		})
		total += f.Size
	}

	var b strings.Builder
	if len(result.Files) > 0 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err == nil {
			b.WriteString(table)
			b.WriteString("\n")
		}
	}

	summary := fmt.Sprintf("Built %s in %s: %d modules, %d chunks, %d files (%s)",
		result.Hash,
		result.Duration.Round(time.Millisecond),
		result.Modules,
		len(result.Chunks),
		len(result.Files),
		humanize.Bytes(uint64(total)))
	b.WriteString(Success.Render(SuccessIndicator + " " + summary))
	if result.CacheHits > 0 {
		b.WriteString(Muted.Render(fmt.Sprintf(" %d cached", result.CacheHits)))
	}
	return b.String()
}

// RenderError renders err with its code and details
func RenderError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(Error.Render(ErrorIndicator + " " + err.Error()))

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(Indent(Muted.Render(k+": ")+fmt.Sprint(details[k]), 1))
	}
	return b.String()
}

// RenderRules renders a rule table in declaration order
func RenderRules(list []config.Rule) string {
	data := pterm.TableData{{"#", "Test", "Exclude", "Loaders"}}
	for i, r := range list {
		steps, err := r.Steps()
		loaders := make([]string, 0, len(steps))
		if err != nil {
			loaders = append(loaders, Error.Render(err.Error()))
		}
		for _, s := range steps {
			loaders = append(loaders, s.Loader)
		}
		data = append(data, []string{
			strconv.Itoa(i),
			Code.Render(r.Test),
			r.Exclude,
			strings.Join(loaders, " ! "),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err.Error()
	}
	return table
}

// RenderMatch renders the dispatch outcome of one path
func RenderMatch(path string, m rules.Match, ok bool) string {
	if !ok {
		return fmt.Sprintf("%s %s", Path.Render(path), Warning.Render("no rule"))
	}
	loaders := make([]string, 0, len(m.Steps))
	for _, s := range m.Steps {
		loaders = append(loaders, s.Loader)
	}
	return fmt.Sprintf("%s %s %s",
		Path.Render(path),
		Muted.Render(fmt.Sprintf("rules[%d]", m.Index)),
		strings.Join(loaders, " ! "))
}
