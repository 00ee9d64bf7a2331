package commands

import (
	"fmt"

	"git.home.luguber.info/inful/studysite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output        string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
	IncludeDrafts bool   `name:"include-drafts" help:"Render documents and posts marked as drafts"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}
	store, err := openHistory(s)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	builder := site.NewBuilder(s, site.Options{OutputDir: b.Output, IncludeDrafts: b.IncludeDrafts})
	if store != nil {
		builder.WithHistory(store)
	}

	out := root.stdout()
	_, _ = fmt.Fprintf(out, "Building %s into %s\n", s.Title, builder.OutputDir())
	report, err := builder.Build(g.context())
	_, _ = fmt.Fprintln(out, report.Summary())
	for _, w := range report.Warnings {
		_, _ = fmt.Fprintf(out, "warning: %v\n", w)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Build completed successfully")
	return nil
}
