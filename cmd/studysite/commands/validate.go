package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/studysite/internal/linkcheck"
	"git.home.luguber.info/inful/studysite/internal/site"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Format        string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet         bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	IncludeDrafts bool   `name:"include-drafts" help:"Validate drafts as well"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}
	report, err := site.NewBuilder(s, site.Options{IncludeDrafts: v.IncludeDrafts}).Validate(g.context())
	report.Sort()

	out := root.stdout()
	if v.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return encErr
		}
		return err
	}

	for _, issue := range report.Issues {
		if v.Quiet && issue.Severity != linkcheck.SeverityError {
			continue
		}
		_, _ = fmt.Fprintf(out, "%-7s %s: %s\n", issue.Severity, issue.Source, issue.Message)
	}
	_, _ = fmt.Fprintf(out, "%d checked, %d errors, %d warnings\n",
		report.Checked, report.ErrorCount(), report.WarningCount())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "No broken links found")
	return nil
}
