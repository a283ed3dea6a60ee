package cmd

import (
	"fmt"
	"io"

	"github.com/lepinkainen/kindlecovers/internal/resolver"
	"gopkg.in/yaml.v3"
)

// Report is the YAML form of a resolution.
type Report struct {
	Stage    string          `yaml:"stage,omitempty"`
	ASINs    []string        `yaml:"asins"`
	URLs     []string        `yaml:"urls"`
	Attempts []AttemptReport `yaml:"attempts"`
	Error    string          `yaml:"error,omitempty"`
}

// AttemptReport describes one pipeline stage in a Report.
type AttemptReport struct {
	Strategy   string   `yaml:"strategy"`
	Candidates []string `yaml:"candidates,omitempty"`
	Skipped    bool     `yaml:"skipped,omitempty"`
	Error      string   `yaml:"error,omitempty"`
}

func newReport(urls []string, result resolver.Result) Report {
	report := Report{
		Stage:    result.Stage,
		ASINs:    result.ASINs.Sorted(),
		URLs:     urls,
		Attempts: make([]AttemptReport, 0, len(result.Attempts)),
	}
	if report.URLs == nil {
		report.URLs = []string{}
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}

	for _, a := range result.Attempts {
		ar := AttemptReport{
			Strategy:   a.Strategy,
			Candidates: a.Candidates,
			Skipped:    a.Skipped,
		}
		if a.Err != nil {
			ar.Error = a.Err.Error()
		}
		report.Attempts = append(report.Attempts, ar)
	}

	return report
}

// writeReport prints the URLs one per line, or the full report as YAML.
func writeReport(w io.Writer, format string, urls []string, result resolver.Result) error {
	switch format {
	case "", "text":
		for _, u := range urls {
			if _, err := fmt.Fprintln(w, u); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newReport(urls, result)); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
