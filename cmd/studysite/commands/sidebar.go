package commands

import (
	"git.home.luguber.info/inful/studysite/internal/site"
)

// SidebarCmd implements the 'sidebar' command.
type SidebarCmd struct{}

func (c *SidebarCmd) Run(g *Global, root *CLI) error {
	s, err := root.loadSite()
	if err != nil {
		return err
	}
	docs, sidebars, err := site.NewBuilder(s, site.Options{}).Navigation(g.context())
	if err != nil {
		return err
	}
	return sidebars.Fprint(root.stdout(), func(id string) string {
		if d, ok := docs.Get(id); ok {
			return d.Label()
		}
		return ""
	})
}
