package plugin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats accepted by Render.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Render writes r in the given format. color enables ANSI colors in
// table output.
func Render(w io.Writer, r *Report, format string, color bool) error {
	switch format {
	case "", OutputTable:
		return RenderTable(w, r, color)
	case OutputJSON:
		return RenderJSON(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderTable writes the issues as a table followed by a summary line.
func RenderTable(w io.Writer, r *Report, color bool) error {
	paint := func(c text.Colors, s string) string {
		if !color {
			return s
		}
		return c.Sprint(s)
	}

	if len(r.Issues) == 0 {
		_, err := fmt.Fprintf(w, "%s %s: %d plugin(s), no issues\n",
			paint(text.Colors{text.FgGreen}, "✓"), r.Root, len(r.Plugins))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	if color {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.AppendHeader(table.Row{"SEVERITY", "RULE", "PATH", "MESSAGE"})

	for _, issue := range r.Issues {
		sev := string(issue.Severity)
		if issue.Severity == SeverityError {
			sev = paint(text.Colors{text.FgRed, text.Bold}, sev)
		} else {
			sev = paint(text.Colors{text.FgYellow}, sev)
		}
		t.AppendRow(table.Row{sev, issue.Rule, issue.Path, issue.Message})
	}
	t.Render()

	_, err := fmt.Fprintf(w, "%s: %d plugin(s), %d error(s), %d warning(s)\n",
		r.Root, len(r.Plugins), r.Count(SeverityError), r.Count(SeverityWarning))
	return err
}
