package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/studysite/internal/foundation/errors"
	"git.home.luguber.info/inful/studysite/internal/linkverify"
)

// VerifyLinksCmd implements the 'verify-links' command.
type VerifyLinksCmd struct {
	Output      string `short:"o" help:"Built site to check (defaults to output.directory)" type:"path"`
	Concurrency int    `help:"Concurrent HTTP checks (overrides link_verification.concurrency)"`
	Format      string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (c *VerifyLinksCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}
	if c.Concurrency > 0 {
		s.LinkVerification.Concurrency = c.Concurrency
	}
	dir := c.Output
	if dir == "" {
		dir = s.Resolve(s.Output.Directory)
	}
	if st, statErr := os.Stat(filepath.Join(dir, "index.html")); statErr != nil || st.IsDir() {
		return errors.ValidationError("no built site found; run 'studysite build' first").
			WithContext("output_dir", dir).Build()
	}

	v, err := newVerifier(g, s)
	if err != nil {
		return err
	}
	defer func() { _ = v.Close() }()

	res, err := v.Verify(g.context(), dir)
	if err != nil {
		return err
	}

	out := root.stdout()
	if c.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		for _, b := range res.Broken {
			_, _ = fmt.Fprintf(out, "BROKEN  %s (%s)\n", b.URL, b.Error)
			for _, src := range b.Sources {
				_, _ = fmt.Fprintf(out, "        referenced from %s\n", src)
			}
		}
		_, _ = fmt.Fprintf(out, "%d checked, %d cached, %d broken\n", res.Checked, res.Cached, len(res.Broken))
	}
	if len(res.Broken) > 0 {
		return brokenExternal(res)
	}
	return nil
}

func brokenExternal(res *linkverify.Result) error {
	return errors.LinksError(fmt.Sprintf("%d broken external links", len(res.Broken))).
		WithContext("first", res.Broken[0].URL).Build()
}
