package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/breeze-rmm/amd-driver-manager/internal/driverversion"
	"github.com/breeze-rmm/amd-driver-manager/internal/platform"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Report is everything a run shows about the installed driver.
type Report struct {
	RunID       string                       `json:"runId" yaml:"runId"`
	Host        platform.HostInfo            `json:"host" yaml:"host"`
	DisplayText string                       `json:"displayText" yaml:"displayText"`
	Lines       []string                     `json:"lines" yaml:"lines"`
	Candidate   string                       `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Source      string                       `json:"source,omitempty" yaml:"source,omitempty"`
	Records     []driverversion.DriverRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Attempts    []driverversion.Attempt      `json:"attempts" yaml:"attempts"`
}

// NewReport builds a Report from a resolution.
func NewReport(runID string, host platform.HostInfo, res driverversion.Resolution) Report {
	return Report{
		RunID:       runID,
		Host:        host,
		DisplayText: res.DisplayText,
		Lines:       res.Lines,
		Candidate:   res.Candidate,
		Source:      res.Source,
		Records:     res.Records,
		Attempts:    res.Attempts,
	}
}

// Render writes the report in the given format.
func Render(w io.Writer, r Report, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, renderText(r))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(r Report) string {
	var b strings.Builder

	b.WriteString(headlineStyle.Render(r.DisplayText))
	b.WriteString("\n")
	for _, line := range r.Lines {
		b.WriteString("  " + line + "\n")
	}

	if len(r.Attempts) > 0 {
		b.WriteString("\n")
		for _, a := range r.Attempts {
			style, ok := outcomeStyles[string(a.Outcome)]
			if !ok {
				style = mutedStyle
			}
			line := fmt.Sprintf("  %-12s %s", a.Source, style.Render(string(a.Outcome)))
			if a.Outcome != driverversion.OutcomeSkipped {
				line += mutedStyle.Render(fmt.Sprintf(" (%dms)", a.Duration.Milliseconds()))
			}
			if a.Error != "" {
				line += " " + mutedStyle.Render(a.Error)
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}

// RenderStatus writes the host summary used by the status command.
func RenderStatus(w io.Writer, s Status, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		rows := [][2]string{
			{"Host", s.Host.Hostname},
			{"OS", strings.TrimSpace(s.Host.OS + " " + s.Host.OSVersion)},
			{"Build", s.Host.OSBuild},
			{"Arch", s.Host.Architecture},
			{"Safe mode", yesNo(s.Host.SafeMode)},
			{"Elevated", yesNo(s.Elevated)},
			{"Config", s.ConfigFile},
			{"Data dir", s.DataDir},
			{"Audit", s.AuditStatus},
		}
		for _, row := range rows {
			if row[1] == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(fmt.Sprintf("%-10s", row[0])), row[1]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Status is the output of the status command.
type Status struct {
	Host        platform.HostInfo `json:"host" yaml:"host"`
	Elevated    bool              `json:"elevated" yaml:"elevated"`
	ConfigFile  string            `json:"configFile,omitempty" yaml:"configFile,omitempty"`
	DataDir     string            `json:"dataDir" yaml:"dataDir"`
	AuditStatus string            `json:"audit,omitempty" yaml:"audit,omitempty"`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
