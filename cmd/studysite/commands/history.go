package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" default:"20" help:"Number of builds to show (0 for all)"`
	ID    string `arg:"" optional:"" help:"Show the stored report of one build"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}
	if !s.History.Enabled {
		return errors.ConfigError("build history is disabled (set history.enabled)").Build()
	}
	store, err := history.Open(s.Resolve(s.History.Path))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := root.stdout()
	if c.ID != "" {
		b, err := store.Get(g.context(), c.ID)
		if err != nil {
			return err
		}
		var pretty json.RawMessage = b.ReportJSON
		data, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	builds, err := store.List(g.context(), c.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tOUTCOME\tPAGES\tERRORS\tWARNINGS\tCOMMIT")
	for _, b := range builds {
		commit := b.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			b.ID, b.StartedAt.Local().Format(time.DateTime), b.Duration.Round(time.Millisecond),
			b.Outcome, b.Pages, b.Errors, b.Warnings, commit)
	}
	return tw.Flush()
}
