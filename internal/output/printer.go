// Package output renders reports and record listings for the CLI, either
// as styled terminal text or as JSON for scripting.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shipward/internal/release"
	"shipward/internal/store"
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
)

// Printer writes command output. In JSON mode every method emits a single
// JSON document instead of styled text.
type Printer struct {
	w    io.Writer
	json bool
}

// NewPrinter creates a [Printer] writing to stdout.
func NewPrinter(jsonOut bool) *Printer {
	return NewPrinterWithWriter(os.Stdout, jsonOut)
}

// NewPrinterWithWriter creates a [Printer] writing to w. Tests use this to
// capture output.
func NewPrinterWithWriter(w io.Writer, jsonOut bool) *Printer {
	return &Printer{w: w, json: jsonOut}
}

// Report renders a plan or run report.
func (p *Printer) Report(r *release.Report) error {
	if p.json {
		return p.encode(r)
	}

	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("Component:"), valueStyle.Render(r.ComponentID))
	if r.RunID != "" {
		fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("Run:"), dimStyle.Render(r.RunID))
	}
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("Status:"), pipelineStatusText(r.Result.Status))

	if len(r.Layers) > 0 {
		fmt.Fprintf(p.w, "%s\n", labelStyle.Render("Execution order:"))
		for i, layer := range r.Layers {
			fmt.Fprintf(p.w, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%d.", i+1)), valueStyle.Render(strings.Join(layer, ", ")))
		}
	}

	if len(r.Result.Steps) > 0 {
		fmt.Fprintln(p.w)
		for _, step := range r.Result.Steps {
			p.printStep(step)
		}
	}

	p.printWarnings(r.Result.Warnings)
	p.printSummary(r.Result.Summary)
	return nil
}

func (p *Printer) printStep(s release.StepResult) {
	fmt.Fprintf(p.w, "  %s %s %s\n", statusGlyph(s.Status), valueStyle.Render(s.ID), dimStyle.Render("("+s.Type+")"))
	for _, hint := range s.Hints {
		fmt.Fprintf(p.w, "      %s\n", dimStyle.Render(hint))
	}
	for _, missing := range s.Missing {
		fmt.Fprintf(p.w, "      %s\n", warnStyle.Render(missing))
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(p.w, "      %s\n", failStyle.Render(warning))
	}
}

func (p *Printer) printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(p.w, "%s %s\n", warnStyle.Render("warning:"), w)
	}
}

func (p *Printer) printSummary(s release.Summary) {
	if s.TotalSteps == 0 {
		return
	}
	parts := []string{fmt.Sprintf("%d steps", s.TotalSteps)}
	if s.Succeeded > 0 {
		parts = append(parts, successStyle.Render(fmt.Sprintf("%d succeeded", s.Succeeded)))
	}
	if s.Failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	if s.Skipped > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	if s.Missing > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d missing", s.Missing)))
	}
	fmt.Fprintf(p.w, "\n%s %s\n", labelStyle.Render("Summary:"), strings.Join(parts, ", "))
	for _, next := range s.NextActions {
		fmt.Fprintf(p.w, "%s %s\n", accentStyle.Render("next:"), next)
	}
}

// Projects renders the project listing.
func (p *Printer) Projects(projects []store.Project) error {
	if p.json {
		return p.encode(projects)
	}
	if len(projects) == 0 {
		fmt.Fprintln(p.w, dimStyle.Render("no projects"))
		return nil
	}
	fmt.Fprintln(p.w, headerStyle.Render("Projects"))
	for _, project := range projects {
		fmt.Fprintf(p.w, "  %s", accentStyle.Render(project.ID))
		if project.Name != "" {
			fmt.Fprintf(p.w, "  %s", valueStyle.Render(project.Name))
		}
		if project.Description != "" {
			fmt.Fprintf(p.w, "  %s", dimStyle.Render(project.Description))
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Servers renders the server listing.
func (p *Printer) Servers(servers []store.Server) error {
	if p.json {
		return p.encode(servers)
	}
	if len(servers) == 0 {
		fmt.Fprintln(p.w, dimStyle.Render("no servers"))
		return nil
	}
	fmt.Fprintln(p.w, headerStyle.Render("Servers"))
	for _, srv := range servers {
		addr := srv.Host
		if srv.Port != 0 {
			addr = fmt.Sprintf("%s:%d", srv.Host, srv.Port)
		}
		fmt.Fprintf(p.w, "  %s  %s", accentStyle.Render(srv.ID), valueStyle.Render(addr))
		if len(srv.Roles) > 0 {
			fmt.Fprintf(p.w, "  %s", dimStyle.Render(strings.Join(srv.Roles, ",")))
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Components renders the component listing.
func (p *Printer) Components(components []store.Component) error {
	if p.json {
		return p.encode(components)
	}
	if len(components) == 0 {
		fmt.Fprintln(p.w, dimStyle.Render("no components"))
		return nil
	}
	fmt.Fprintln(p.w, headerStyle.Render("Components"))
	for _, c := range components {
		fmt.Fprintf(p.w, "  %s  %s", accentStyle.Render(c.ID), valueStyle.Render(c.Path))
		if c.Project != "" {
			fmt.Fprintf(p.w, "  %s", dimStyle.Render("project="+c.Project))
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

// Success prints a one-line confirmation.
func (p *Printer) Success(format string, args ...any) {
	if p.json {
		_ = p.encode(map[string]any{"ok": true, "message": fmt.Sprintf(format, args...)})
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", successStyle.Render("ok:"), fmt.Sprintf(format, args...))
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusGlyph(s release.Status) string {
	switch s {
	case release.StatusSuccess:
		return successStyle.Render("✓")
	case release.StatusFailed:
		return failStyle.Render("✗")
	case release.StatusSkipped:
		return dimStyle.Render("-")
	case release.StatusMissing:
		return warnStyle.Render("?")
	case release.StatusRunning:
		return accentStyle.Render("…")
	default:
		return dimStyle.Render("·")
	}
}

func pipelineStatusText(s release.PipelineStatus) string {
	switch s {
	case release.PipelineSuccess:
		return successStyle.Render(string(s))
	case release.PipelinePartial:
		return warnStyle.Render(string(s))
	case release.PipelineFailed:
		return failStyle.Render(string(s))
	case release.PipelineMissing:
		return warnStyle.Render(string(s))
	default:
		return dimStyle.Render(string(s))
	}
}
